// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package build materializes resolved publications into the output tree:
// one directory per publication holding index.md, cite.bib, and the
// optional featured image.
package build

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jpmattern/pubbuild/internal/bibtex"
	"github.com/jpmattern/pubbuild/internal/render"
	"github.com/jpmattern/pubbuild/internal/resolve"
	"github.com/jpmattern/pubbuild/pkg/types"
)

// Result holds the outcome for one publication.
type Result struct {
	Name      string `yaml:"name"`
	Key       string `yaml:"citation_key"`
	EntryType string `yaml:"entry_type,omitempty"`
	Dir       string `yaml:"dir,omitempty"`
	Status    string `yaml:"status"`
	Error     string `yaml:"error,omitempty"`
}

// Summary holds the outcome of a whole build run.
type Summary struct {
	Built        int      `yaml:"built"`
	Failed       int      `yaml:"failed"`
	Publications []Result `yaml:"publications"`
}

// Total returns the total number of publications processed.
func (s Summary) Total() int {
	return s.Built + s.Failed
}

// HasFailures reports whether any publication failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Builder runs the build batch. The configuration and bibliography are
// read-only; each publication is fully resolved, rendered, and written
// before the next one starts.
type Builder struct {
	cfg      *types.Config
	resolver *resolve.Resolver

	// KeepGoing makes per-publication failures non-fatal: they are
	// reported and counted, and the batch continues.
	KeepGoing bool
}

// New returns a Builder over the given configuration and bibliography.
func New(cfg *types.Config, bib *bibtex.File) *Builder {
	return &Builder{
		cfg:       cfg,
		resolver:  resolve.New(cfg, bib),
		KeepGoing: true,
	}
}

// Run processes every configured publication in order, printing per-
// publication status to w and returning a summary. Without KeepGoing the
// first failure aborts the batch.
func (b *Builder) Run(w io.Writer) (Summary, error) {
	var summary Summary
	for _, name := range b.cfg.PublicationOrder {
		result := b.buildOne(name)
		summary.Publications = append(summary.Publications, result)
		if result.Error != "" {
			summary.Failed++
			fmt.Fprintf(w, "failed: %s (%s)\n", name, result.Error)
			if !b.KeepGoing {
				return summary, fmt.Errorf("publication %q: %s", name, result.Error)
			}
			continue
		}
		summary.Built++
		fmt.Fprintf(w, "built:  %s -> %s\n", name, result.Dir)
	}
	fmt.Fprintf(w, "\nBuild summary: %d built, %d failed (total: %d)\n",
		summary.Built, summary.Failed, summary.Total())
	return summary, nil
}

// buildOne resolves, renders, and writes a single publication. No
// directory is created for a publication that fails to resolve.
func (b *Builder) buildOne(name string) Result {
	result := Result{
		Name:   name,
		Key:    b.cfg.Publications[name].Key(),
		Status: "failed",
	}

	pub, err := b.resolver.Resolve(name)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	entry, err := b.resolver.Entry(name)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.EntryType = pub.EntryType

	dir := filepath.Join(b.cfg.BuildDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		result.Error = fmt.Sprintf("creating %s: %v", dir, err)
		return result
	}
	result.Dir = dir

	indexPath := filepath.Join(dir, "index.md")
	if err := os.WriteFile(indexPath, []byte(render.IndexMD(pub, b.cfg)), 0o644); err != nil {
		result.Error = fmt.Sprintf("writing %s: %v", indexPath, err)
		return result
	}

	citePath := filepath.Join(dir, "cite.bib")
	if err := os.WriteFile(citePath, []byte(bibtex.Format(entry, b.cfg.CiteEntries)), 0o644); err != nil {
		result.Error = fmt.Sprintf("writing %s: %v", citePath, err)
		return result
	}

	if pub.Image != "" {
		if err := copyImage(pub.Image, dir); err != nil {
			result.Error = err.Error()
			return result
		}
	}

	result.Status = "built"
	result.Error = ""
	return result
}

// copyImage copies the configured image into the publication directory
// under the fixed name "featured" plus the source extension, lowercased.
func copyImage(src, dir string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening image %s: %w", src, err)
	}
	defer in.Close()

	dst := filepath.Join(dir, "featured"+strings.ToLower(filepath.Ext(src)))
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying image to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dst, err)
	}
	return nil
}
