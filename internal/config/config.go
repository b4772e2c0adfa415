// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads and validates the build configuration file.
// Configurations are TOML or JSON; format selection is by extension,
// with a try-TOML-then-JSON fallback for anything else.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/jpmattern/pubbuild/pkg/types"
)

// defaultPartial frames the front-matter block when no partials are
// configured (hugo's TOML front-matter delimiter).
const defaultPartial = "+++\n"

// Error reports a configuration problem: an unreadable or unparsable
// file, or a missing required key.
type Error struct {
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config %s: %s: %v", e.Path, e.Msg, e.Err)
	}
	return fmt.Sprintf("config %s: %s", e.Path, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// fileConfig mirrors the on-disk shape of the configuration file.
type fileConfig struct {
	BibtexFile        string                    `toml:"bibtexfile" json:"bibtexfile"`
	BuildDir          string                    `toml:"builddir" json:"builddir"`
	Defaults          map[string]any            `toml:"defaults" json:"defaults"`
	Publications      map[string]map[string]any `toml:"publications" json:"publications"`
	TypeMapping       map[string]int            `toml:"publicationtype_mapping" json:"publicationtype_mapping"`
	CiteEntries       []string                  `toml:"citebibtexentries" json:"citebibtexentries"`
	URLPDFUseDOI      bool                      `toml:"url_pdf_usedoi" json:"url_pdf_usedoi"`
	Partials          types.Partials            `toml:"partials" json:"partials"`
	FrontMatterFormat string                    `toml:"frontmatter_format" json:"frontmatter_format"`
}

// Load reads, parses, and validates the configuration file at path.
//
// Publications declared as [publications.<name>] TOML tables are
// processed in declaration order. Publications declared any other way
// (inline tables, dotted keys, JSON) fall back to lexicographic order.
func Load(path string) (*types.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Msg: "cannot read file", Err: err}
	}

	var fc fileConfig
	var fromTOML bool
	switch {
	case strings.HasSuffix(path, ".json"):
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, &Error{Path: path, Msg: "cannot parse JSON", Err: err}
		}
	case strings.HasSuffix(path, ".toml"):
		if err := toml.Unmarshal(data, &fc); err != nil {
			return nil, &Error{Path: path, Msg: "cannot parse TOML", Err: err}
		}
		fromTOML = true
	default:
		// Unknown extension: try TOML first, then JSON.
		tomlErr := toml.Unmarshal(data, &fc)
		if tomlErr == nil {
			fromTOML = true
			break
		}
		if jsonErr := json.Unmarshal(data, &fc); jsonErr != nil {
			return nil, &Error{
				Path: path,
				Msg:  fmt.Sprintf("cannot parse as TOML (%v) or JSON", tomlErr),
				Err:  jsonErr,
			}
		}
	}

	cfg, err := fc.toConfig(path, data, fromTOML)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// toConfig validates the raw file contents and produces the immutable
// runtime configuration.
func (fc fileConfig) toConfig(path string, raw []byte, fromTOML bool) (*types.Config, error) {
	if fc.BibtexFile == "" {
		return nil, &Error{Path: path, Msg: `missing required key "bibtexfile"`}
	}
	if fc.BuildDir == "" {
		return nil, &Error{Path: path, Msg: `missing required key "builddir"`}
	}
	if fc.Publications == nil {
		return nil, &Error{Path: path, Msg: `missing required key "publications"`}
	}

	format := types.FrontMatterFormat(fc.FrontMatterFormat)
	switch format {
	case "":
		format = types.FormatTOML
	case types.FormatTOML, types.FormatYAML:
	default:
		return nil, &Error{Path: path, Msg: fmt.Sprintf("unknown frontmatter_format %q: use toml or yaml", fc.FrontMatterFormat)}
	}

	cfg := &types.Config{
		Path:              path,
		BibtexFile:        fc.BibtexFile,
		BuildDir:          fc.BuildDir,
		Defaults:          fc.Defaults,
		Publications:      make(map[string]types.PublicationConfig, len(fc.Publications)),
		TypeMapping:       fc.TypeMapping,
		CiteEntries:       fc.CiteEntries,
		URLPDFUseDOI:      fc.URLPDFUseDOI,
		Partials:          fc.Partials,
		FrontMatterFormat: format,
	}
	if cfg.Defaults == nil {
		cfg.Defaults = map[string]any{}
	}
	if cfg.TypeMapping == nil {
		cfg.TypeMapping = map[string]int{}
	}
	if cfg.Partials.Header == "" {
		cfg.Partials.Header = defaultPartial
	}
	if cfg.Partials.Footer == "" {
		cfg.Partials.Footer = defaultPartial
	}

	for name, overrides := range fc.Publications {
		pub := types.PublicationConfig{
			Name:      name,
			Overrides: make(map[string]any, len(overrides)),
		}
		for k, v := range overrides {
			if k == "bibtexkey" {
				key, ok := v.(string)
				if !ok {
					return nil, &Error{Path: path, Msg: fmt.Sprintf("publication %q: bibtexkey must be a string", name)}
				}
				pub.BibtexKey = key
				continue
			}
			pub.Overrides[k] = v
		}
		cfg.Publications[name] = pub
	}

	cfg.PublicationOrder = publicationOrder(raw, fromTOML, cfg.Publications)
	return cfg, nil
}

// pubTableRe matches TOML table headers under [publications.*], capturing
// the publication name whether bare, double-quoted, or single-quoted.
var pubTableRe = regexp.MustCompile(`(?m)^\s*\[publications\.(?:"((?:[^"\\]|\\.)*)"|'([^']*)'|([A-Za-z0-9_-]+))\s*\]`)

// publicationOrder determines the processing order: declaration order for
// TOML configurations (recovered from the raw text, since decoded maps are
// unordered), lexicographic order for JSON and for any names the text scan
// misses.
func publicationOrder(raw []byte, fromTOML bool, pubs map[string]types.PublicationConfig) []string {
	order := make([]string, 0, len(pubs))
	seen := make(map[string]bool, len(pubs))

	if fromTOML {
		for _, m := range pubTableRe.FindAllStringSubmatch(string(raw), -1) {
			name := m[1]
			if name == "" {
				name = m[2]
			}
			if name == "" {
				name = m[3]
			}
			if _, ok := pubs[name]; ok && !seen[name] {
				order = append(order, name)
				seen[name] = true
			}
		}
	}

	rest := make([]string, 0, len(pubs))
	for name := range pubs {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}
