// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve merges configuration overrides, bibliography records,
// and global defaults into publication records ready for rendering.
//
// Field precedence, highest to lowest: explicit per-publication override,
// raw bibliography value, global default, derived value. Fields with no
// value at any level are left absent.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jpmattern/pubbuild/internal/bibtex"
	"github.com/jpmattern/pubbuild/pkg/types"
)

// KeyNotFoundError reports a publication whose citation key has no
// matching bibliography entry.
type KeyNotFoundError struct {
	Publication string
	Key         string
	BibFile     string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("publication %q: citation key %q not found in %s",
		e.Publication, e.Key, e.BibFile)
}

// Resolver resolves publications against a parsed bibliography. The
// configuration and bibliography are read-only; a Resolver is safe to
// reuse across publications.
type Resolver struct {
	cfg *types.Config
	bib *bibtex.File
}

// New returns a Resolver over the given configuration and bibliography.
func New(cfg *types.Config, bib *bibtex.File) *Resolver {
	return &Resolver{cfg: cfg, bib: bib}
}

// Entry returns the bibliography entry a publication resolves against.
func (r *Resolver) Entry(name string) (*bibtex.Entry, error) {
	pc, ok := r.cfg.Publications[name]
	if !ok {
		return nil, fmt.Errorf("unknown publication %q", name)
	}
	entry, ok := r.bib.Lookup(pc.Key())
	if !ok {
		return nil, &KeyNotFoundError{Publication: name, Key: pc.Key(), BibFile: r.bib.Path}
	}
	return entry, nil
}

// Resolve produces the merged record for one publication.
func (r *Resolver) Resolve(name string) (*types.Publication, error) {
	pc, ok := r.cfg.Publications[name]
	if !ok {
		return nil, fmt.Errorf("unknown publication %q", name)
	}
	entry, err := r.Entry(name)
	if err != nil {
		return nil, err
	}

	pub := &types.Publication{
		Name:      name,
		BibtexKey: pc.Key(),
		EntryType: entry.Type,
	}

	pub.Title = r.stringField(pc, entry, "title", "title")
	pub.Abstract = r.stringField(pc, entry, "abstract", "abstract")
	pub.AbstractShort = r.stringField(pc, entry, "abstract_short", "")
	pub.PublicationShort = r.stringField(pc, entry, "publication_short", "")
	pub.DOI = r.stringField(pc, entry, "doi", "doi")
	pub.Image = r.stringField(pc, entry, "image", "")

	pub.Date = r.dateField(pc, entry)
	pub.Authors = r.authorsField(pc, entry)
	pub.PublicationTypes = r.typesField(pc, entry)
	pub.Publication = r.publicationField(pc, entry)

	pub.Featured = r.boolField(pc, "featured")
	pub.Selected = r.boolField(pc, "selected")
	pub.Math = r.boolField(pc, "math")

	// Projects and tags always render, as (possibly empty) lists.
	pub.Projects = r.listField(pc, "projects")
	pub.Tags = r.listField(pc, "tags")

	pub.URLs = r.urlFields(pc, pub.DOI)
	pub.Extras = extraFields(pc)

	return pub, nil
}

// lookup applies the override > bibliography > default precedence for a
// single field. bibName is the bibliography field to consult, empty when
// the field has no bibliography counterpart.
func (r *Resolver) lookup(pc types.PublicationConfig, entry *bibtex.Entry, name, bibName string) (any, valueSource) {
	if v, ok := pc.Overrides[name]; ok {
		return v, fromOverride
	}
	if bibName != "" {
		if v, ok := entry.Fields[bibName]; ok {
			return v, fromBib
		}
	}
	if v, ok := r.cfg.Defaults[name]; ok {
		return v, fromDefault
	}
	return nil, fromNowhere
}

type valueSource int

const (
	fromNowhere valueSource = iota
	fromOverride
	fromBib
	fromDefault
)

// stringField resolves a scalar string field. Bibliography values get
// bibTeX cleanup (brace-group markers stripped); configured values are
// taken verbatim.
func (r *Resolver) stringField(pc types.PublicationConfig, entry *bibtex.Entry, name, bibName string) string {
	v, src := r.lookup(pc, entry, name, bibName)
	if src == fromNowhere {
		return ""
	}
	s := scalarString(v)
	if src == fromBib {
		s = cleanBibValue(s)
	}
	return s
}

// dateField resolves the date, deriving it from the entry's
// year/month/day fields when nothing was configured. Missing month and
// day default to 1; with no year at all the field stays absent.
func (r *Resolver) dateField(pc types.PublicationConfig, entry *bibtex.Entry) string {
	if v, src := r.lookup(pc, entry, "date", "date"); src != fromNowhere {
		return scalarString(v)
	}
	return deriveDate(entry.Fields["year"], entry.Fields["month"], entry.Fields["day"])
}

// authorsField resolves the author list. Bibliography author strings
// split on the bibTeX "and" separator; "Last, First" segments are
// normalized to "First Last".
func (r *Resolver) authorsField(pc types.PublicationConfig, entry *bibtex.Entry) []string {
	if v, ok := pc.Overrides["authors"]; ok {
		return stringList(v)
	}
	if raw, ok := entry.Fields["author"]; ok {
		return SplitAuthors(raw)
	}
	if v, ok := r.cfg.Defaults["authors"]; ok {
		return stringList(v)
	}
	return nil
}

// typesField resolves publication_types. With nothing configured, the
// entry type is mapped through the configuration's type mapping;
// unmapped entry types yield the uncategorized code 0.
func (r *Resolver) typesField(pc types.PublicationConfig, entry *bibtex.Entry) []int {
	if v, src := r.lookup(pc, entry, "publication_types", ""); src != fromNowhere {
		return intList(v)
	}
	if code, ok := r.cfg.TypeMapping[entry.Type]; ok {
		return []int{code}
	}
	return []int{0}
}

// publicationField resolves the venue line, deriving "in *<journal>*"
// from the journal field when nothing else is available.
func (r *Resolver) publicationField(pc types.PublicationConfig, entry *bibtex.Entry) string {
	if v, src := r.lookup(pc, entry, "publication", "publication"); src != fromNowhere {
		s := scalarString(v)
		if src == fromBib {
			s = cleanBibValue(s)
		}
		return s
	}
	if journal, ok := entry.Fields["journal"]; ok {
		return fmt.Sprintf("in *%s*", cleanBibValue(journal))
	}
	return ""
}

func (r *Resolver) boolField(pc types.PublicationConfig, name string) *bool {
	if v, ok := pc.Overrides[name]; ok {
		if b, ok := boolValue(v); ok {
			return types.Bool(b)
		}
	}
	if v, ok := r.cfg.Defaults[name]; ok {
		if b, ok := boolValue(v); ok {
			return types.Bool(b)
		}
	}
	return nil
}

func (r *Resolver) listField(pc types.PublicationConfig, name string) []string {
	if v, ok := pc.Overrides[name]; ok {
		if l := stringList(v); l != nil {
			return l
		}
	}
	if v, ok := r.cfg.Defaults[name]; ok {
		if l := stringList(v); l != nil {
			return l
		}
	}
	return []string{}
}

// urlFields collects url_* fields from defaults and overrides (overrides
// win), derives url_pdf from the DOI when enabled and absent, and
// returns them sorted by key.
func (r *Resolver) urlFields(pc types.PublicationConfig, doi string) []types.URLField {
	urls := make(map[string]string)
	for k, v := range r.cfg.Defaults {
		if strings.HasPrefix(k, "url_") {
			urls[k] = scalarString(v)
		}
	}
	for k, v := range pc.Overrides {
		if strings.HasPrefix(k, "url_") {
			urls[k] = scalarString(v)
		}
	}
	if _, ok := urls["url_pdf"]; !ok && r.cfg.URLPDFUseDOI && doi != "" {
		urls["url_pdf"] = "https://doi.org/" + doi
	}

	keys := make([]string, 0, len(urls))
	for k := range urls {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]types.URLField, len(keys))
	for i, k := range keys {
		fields[i] = types.URLField{Key: k, Value: urls[k]}
	}
	return fields
}

// knownOverrides are the override keys with dedicated handling; anything
// else lands in the extras bucket.
var knownOverrides = map[string]bool{
	"title": true, "date": true, "authors": true,
	"publication_types": true, "publication": true, "publication_short": true,
	"abstract": true, "abstract_short": true,
	"featured": true, "selected": true, "math": true,
	"projects": true, "tags": true,
	"doi": true, "image": true,
}

// extraFields collects unrecognized override keys, sorted by key for
// deterministic output.
func extraFields(pc types.PublicationConfig) []types.ExtraField {
	var extras []types.ExtraField
	for k, v := range pc.Overrides {
		if knownOverrides[k] || strings.HasPrefix(k, "url_") {
			continue
		}
		extras = append(extras, types.ExtraField{Key: k, Value: v})
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i].Key < extras[j].Key })
	return extras
}
