// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package build

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// WriteReport writes the build summary as a YAML document to path.
func WriteReport(path string, summary Summary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}
