// Package types defines the configuration and publication records shared
// across the build pipeline.
package types

// FrontMatterFormat selects the key/value syntax used inside the
// header/footer frame of index.md.
type FrontMatterFormat string

const (
	FormatTOML FrontMatterFormat = "toml"
	FormatYAML FrontMatterFormat = "yaml"
)

// Partials holds the text framing the front-matter block in index.md.
type Partials struct {
	Header string `json:"header" toml:"header"`
	Footer string `json:"footer" toml:"footer"`
}

// PublicationConfig is one publication's entry in the configuration:
// the output directory name, an optional explicit citation key, and the
// per-field override values.
type PublicationConfig struct {
	// Name is the output directory name. It doubles as the citation key
	// when BibtexKey is empty.
	Name string

	// BibtexKey is the explicit citation key, if one was configured.
	BibtexKey string

	// Overrides maps front-matter field names to override values
	// (scalar or list, depending on the field).
	Overrides map[string]any
}

// Key returns the citation key the publication resolves against.
func (p PublicationConfig) Key() string {
	if p.BibtexKey != "" {
		return p.BibtexKey
	}
	return p.Name
}

// Config is the build configuration, loaded once at startup and treated
// as immutable for the rest of the run.
type Config struct {
	// Path is the configuration file the values were loaded from,
	// used in error messages.
	Path string

	// BibtexFile is the path to the bibliography.
	BibtexFile string

	// BuildDir is the root of the output tree.
	BuildDir string

	// Defaults holds fallback field values applied when neither an
	// override nor a bibliography value exists.
	Defaults map[string]any

	// Publications holds the per-publication configuration, keyed by name.
	Publications map[string]PublicationConfig

	// PublicationOrder lists publication names in processing order:
	// declaration order for TOML configurations, lexicographic for JSON.
	PublicationOrder []string

	// TypeMapping maps bibTeX entry types to publication type codes (0-6).
	TypeMapping map[string]int

	// CiteEntries is the ordered list of field names retained in cite.bib.
	CiteEntries []string

	// URLPDFUseDOI enables deriving url_pdf from the DOI when no
	// explicit url_pdf value exists.
	URLPDFUseDOI bool

	// Partials frame the front-matter block.
	Partials Partials

	// FrontMatterFormat selects toml (default) or yaml front-matter lines.
	FrontMatterFormat FrontMatterFormat
}
