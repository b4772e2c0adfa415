// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render serializes resolved publications into index.md content:
// a front-matter block framed by the configured header/footer partials,
// followed by the abstract as body text.
package render

import (
	"fmt"
	"strings"

	"github.com/jpmattern/pubbuild/pkg/types"
)

// IndexMD renders the index.md content for a publication. Field order is
// fixed, so identical inputs produce byte-identical output.
func IndexMD(pub *types.Publication, cfg *types.Config) string {
	var b strings.Builder
	writePartial(&b, cfg.Partials.Header)
	writeFields(&b, pub, cfg.FrontMatterFormat)
	writePartial(&b, cfg.Partials.Footer)
	if pub.Abstract != "" {
		b.WriteString("\n")
		b.WriteString(pub.Abstract)
		b.WriteString("\n")
	}
	return b.String()
}

// writePartial emits a partial, guaranteeing it ends on its own line.
func writePartial(b *strings.Builder, partial string) {
	b.WriteString(partial)
	if partial != "" && !strings.HasSuffix(partial, "\n") {
		b.WriteString("\n")
	}
}

func writeFields(b *strings.Builder, pub *types.Publication, format types.FrontMatterFormat) {
	w := fieldWriter{b: b, format: format}

	w.scalar("title", pub.Title)
	w.scalar("date", pub.Date)
	w.list("authors", pub.Authors)
	w.list("publication_types", typeStrings(pub.PublicationTypes))
	w.scalar("publication", pub.Publication)
	w.scalar("publication_short", pub.PublicationShort)
	w.scalar("abstract", pub.Abstract)
	w.scalar("abstract_short", pub.AbstractShort)
	w.boolean("featured", pub.Featured)
	w.boolean("selected", pub.Selected)
	w.boolean("math", pub.Math)
	w.list("projects", pub.Projects)
	w.list("tags", pub.Tags)
	for _, u := range pub.URLs {
		w.scalar(u.Key, u.Value)
	}
	w.scalar("doi", pub.DOI)
	for _, e := range pub.Extras {
		w.raw(e.Key, renderValue(e.Value))
	}
}

type fieldWriter struct {
	b      *strings.Builder
	format types.FrontMatterFormat
}

// raw emits one key/value line in the selected syntax.
func (w fieldWriter) raw(key, value string) {
	if w.format == types.FormatYAML {
		fmt.Fprintf(w.b, "%s: %s\n", key, value)
		return
	}
	fmt.Fprintf(w.b, "%s = %s\n", key, value)
}

// scalar emits a quoted string field, skipping empty values.
func (w fieldWriter) scalar(key, value string) {
	if value == "" {
		return
	}
	w.raw(key, quote(value))
}

// list emits a bracketed list of quoted strings. A nil slice means the
// field is absent; an empty non-nil slice renders as [].
func (w fieldWriter) list(key string, values []string) {
	if values == nil {
		return
	}
	w.raw(key, quoteList(values))
}

// boolean emits an unquoted true/false, skipping absent values.
func (w fieldWriter) boolean(key string, value *bool) {
	if value == nil {
		return
	}
	w.raw(key, boolString(*value))
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// quote wraps a scalar in double quotes, escaping backslashes and quotes.
// Line breaks become spaces: no quoted scalar may span lines.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return `"` + s + `"`
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quote(v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// typeStrings renders publication type codes the way hugo-academic
// expects them: quoted numbers.
func typeStrings(codes []int) []string {
	if codes == nil {
		return nil
	}
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = fmt.Sprintf("%d", c)
	}
	return out
}

// renderValue formats an extra (passthrough) value: booleans and numbers
// stay bare, lists render element-wise, everything else is quoted.
func renderValue(v any) string {
	switch t := v.(type) {
	case bool:
		return boolString(t)
	case int, int64, float64:
		return fmt.Sprint(t)
	case []string:
		return quoteList(t)
	case []any:
		items := make([]string, len(t))
		for i, e := range t {
			items[i] = renderValue(e)
		}
		return "[" + strings.Join(items, ", ") + "]"
	default:
		return quote(fmt.Sprint(v))
	}
}
