// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package check inspects a configuration and bibliography for problems
// without writing any output: unresolvable citation keys, duplicate
// bibliography keys, and publications missing the fields hugo-academic
// pages usually want.
package check

import (
	"fmt"

	"github.com/jpmattern/pubbuild/internal/bibtex"
	"github.com/jpmattern/pubbuild/internal/resolve"
	"github.com/jpmattern/pubbuild/pkg/types"
)

// Report separates blocking problems from advisory ones. Errors would
// make a build fail; warnings would not.
type Report struct {
	Errors   []string
	Warnings []string
}

// OK reports whether the configuration would build cleanly.
func (r Report) OK() bool {
	return len(r.Errors) == 0
}

// Run resolves every configured publication and collects problems.
func Run(cfg *types.Config, bib *bibtex.File) Report {
	var report Report

	for _, key := range bib.Duplicates {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("duplicate citation key %q in %s: last occurrence wins", key, bib.Path))
	}

	resolver := resolve.New(cfg, bib)
	for _, name := range cfg.PublicationOrder {
		pub, err := resolver.Resolve(name)
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
			continue
		}
		for _, f := range []struct {
			name    string
			present bool
		}{
			{"title", pub.Title != ""},
			{"authors", len(pub.Authors) > 0},
			{"abstract", pub.Abstract != ""},
			{"publication", pub.Publication != ""},
			{"doi", pub.DOI != ""},
		} {
			if !f.present {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("publication %q (%s): no %s", name, pub.BibtexKey, f.name))
			}
		}
	}
	return report
}
