// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibtex

import (
	"fmt"
	"strings"
)

// Format serializes an entry in minimal bibTeX syntax, keeping only the
// fields named in the allowlist, in allowlist order. Fields the entry
// does not have are skipped. Parsing the result back yields the same
// field values.
func Format(e *Entry, allowlist []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", e.Type, e.Key)
	for _, name := range allowlist {
		if value, ok := e.Fields[name]; ok {
			fmt.Fprintf(&b, "  %s = {%s},\n", name, value)
		}
	}
	b.WriteString("}\n")
	return b.String()
}
