// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// URLField is one url_* front-matter field.
type URLField struct {
	Key   string
	Value string
}

// ExtraField is an override key the tool has no dedicated handling for.
// It is passed through to the front matter verbatim, which keeps the
// configuration forward compatible with new hugo-academic keys.
type ExtraField struct {
	Key   string
	Value any
}

// Publication is the fully resolved record for one output directory.
// Every field holds its single definitive value after merging overrides,
// bibliography data, defaults, and derived values. Zero values (empty
// string, nil slice, nil pointer) mean the field is absent and is
// omitted from the rendered front matter.
type Publication struct {
	// Name is the output directory name.
	Name string

	// BibtexKey is the citation key the record was resolved from.
	BibtexKey string

	// EntryType is the bibTeX entry type (e.g. "article"), lowercased.
	EntryType string

	Title            string
	Date             string
	Authors          []string
	PublicationTypes []int
	Publication      string
	PublicationShort string
	Abstract         string
	AbstractShort    string

	Featured *bool
	Selected *bool
	Math     *bool

	// Projects and Tags render as (possibly empty) lists whenever
	// non-nil; nil omits the field.
	Projects []string
	Tags     []string

	// URLs holds url_* fields sorted by key.
	URLs []URLField

	DOI string

	// Image is the source path of the featured image to copy, if any.
	Image string

	// Extras are unrecognized override keys, sorted by key.
	Extras []ExtraField
}

// Bool returns a pointer to b, for populating the tri-state flags.
func Bool(b bool) *bool {
	return &b
}
