// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"errors"
	"reflect"
	"testing"

	"github.com/jpmattern/pubbuild/internal/bibtex"
	"github.com/jpmattern/pubbuild/pkg/types"
)

const testBib = `@article{Smith2020,
  author = {Smith, John and Doe, Jane},
  title = {A {Special} Study},
  journal = {Journal of Studies},
  doi = {10.1/xyz},
  year = {2020},
  month = {3},
  abstract = {We study 100{\%} of the things.},
}

@unknownthing{Odd2021,
  title = {Odd One},
  year = {2021},
}
`

// newResolver builds a resolver over testBib and a configuration with
// one publication per test case.
func newResolver(t *testing.T, pub types.PublicationConfig, mutate func(*types.Config)) *Resolver {
	t.Helper()
	bib, err := bibtex.Parse(testBib)
	if err != nil {
		t.Fatalf("parsing test bibliography: %v", err)
	}
	bib.Path = "test.bib"
	cfg := &types.Config{
		BibtexFile:       "test.bib",
		BuildDir:         "build",
		Defaults:         map[string]any{},
		Publications:     map[string]types.PublicationConfig{pub.Name: pub},
		PublicationOrder: []string{pub.Name},
		TypeMapping:      map[string]int{"article": 2},
	}
	if mutate != nil {
		mutate(cfg)
	}
	return New(cfg, bib)
}

func TestResolveFieldPrecedence(t *testing.T) {
	tests := []struct {
		name      string
		pub       types.PublicationConfig
		mutate    func(*types.Config)
		wantTitle string
	}{
		{
			name: "override wins over bib and default",
			pub: types.PublicationConfig{
				Name:      "p",
				BibtexKey: "Smith2020",
				Overrides: map[string]any{"title": "Overridden"},
			},
			mutate:    func(c *types.Config) { c.Defaults["title"] = "Default" },
			wantTitle: "Overridden",
		},
		{
			name: "bib wins over default",
			pub: types.PublicationConfig{
				Name:      "p",
				BibtexKey: "Smith2020",
				Overrides: map[string]any{},
			},
			mutate:    func(c *types.Config) { c.Defaults["title"] = "Default" },
			wantTitle: "A Special Study",
		},
		{
			name: "default fills absent fields",
			pub: types.PublicationConfig{
				Name:      "p",
				BibtexKey: "Odd2021",
				Overrides: map[string]any{},
			},
			mutate:    func(c *types.Config) { c.Defaults["abstract"] = "From defaults" },
			wantTitle: "Odd One",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(t, tt.pub, tt.mutate)
			pub, err := r.Resolve("p")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if pub.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", pub.Title, tt.wantTitle)
			}
		})
	}
}

func TestResolveKeyNotFound(t *testing.T) {
	r := newResolver(t, types.PublicationConfig{Name: "Nope1999", Overrides: map[string]any{}}, nil)
	_, err := r.Resolve("Nope1999")
	var knf *KeyNotFoundError
	if !errors.As(err, &knf) {
		t.Fatalf("error is %T, want *KeyNotFoundError", err)
	}
	if knf.Key != "Nope1999" || knf.Publication != "Nope1999" {
		t.Errorf("KeyNotFoundError = %+v", knf)
	}
}

func TestResolveNameImpliesKey(t *testing.T) {
	r := newResolver(t, types.PublicationConfig{Name: "Smith2020", Overrides: map[string]any{}}, nil)
	pub, err := r.Resolve("Smith2020")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pub.BibtexKey != "Smith2020" {
		t.Errorf("BibtexKey = %q, want Smith2020", pub.BibtexKey)
	}
}

func TestResolveAuthors(t *testing.T) {
	r := newResolver(t, types.PublicationConfig{Name: "p", BibtexKey: "Smith2020", Overrides: map[string]any{}}, nil)
	pub, err := r.Resolve("p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"John Smith", "Jane Doe"}
	if !reflect.DeepEqual(pub.Authors, want) {
		t.Errorf("Authors = %v, want %v", pub.Authors, want)
	}
}

func TestResolveAuthorsOverride(t *testing.T) {
	r := newResolver(t, types.PublicationConfig{
		Name:      "p",
		BibtexKey: "Smith2020",
		Overrides: map[string]any{"authors": []any{"Custom Name"}},
	}, nil)
	pub, err := r.Resolve("p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(pub.Authors, []string{"Custom Name"}) {
		t.Errorf("Authors = %v, want [Custom Name]", pub.Authors)
	}
}

func TestResolveURLPDFFromDOI(t *testing.T) {
	tests := []struct {
		name    string
		useDOI  bool
		pub     types.PublicationConfig
		wantPDF string
	}{
		{
			name:    "derived from doi when enabled",
			useDOI:  true,
			pub:     types.PublicationConfig{Name: "p", BibtexKey: "Smith2020", Overrides: map[string]any{}},
			wantPDF: "https://doi.org/10.1/xyz",
		},
		{
			name:    "never derived when disabled",
			useDOI:  false,
			pub:     types.PublicationConfig{Name: "p", BibtexKey: "Smith2020", Overrides: map[string]any{}},
			wantPDF: "",
		},
		{
			name:   "override wins over derivation",
			useDOI: true,
			pub: types.PublicationConfig{
				Name:      "p",
				BibtexKey: "Smith2020",
				Overrides: map[string]any{"url_pdf": "https://example.com/p.pdf"},
			},
			wantPDF: "https://example.com/p.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(t, tt.pub, func(c *types.Config) { c.URLPDFUseDOI = tt.useDOI })
			pub, err := r.Resolve("p")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := ""
			for _, u := range pub.URLs {
				if u.Key == "url_pdf" {
					got = u.Value
				}
			}
			if got != tt.wantPDF {
				t.Errorf("url_pdf = %q, want %q", got, tt.wantPDF)
			}
		})
	}
}

func TestResolvePublicationTypes(t *testing.T) {
	tests := []struct {
		name string
		pub  types.PublicationConfig
		want []int
	}{
		{
			name: "mapped entry type",
			pub:  types.PublicationConfig{Name: "p", BibtexKey: "Smith2020", Overrides: map[string]any{}},
			want: []int{2},
		},
		{
			name: "unmapped entry type is uncategorized",
			pub:  types.PublicationConfig{Name: "p", BibtexKey: "Odd2021", Overrides: map[string]any{}},
			want: []int{0},
		},
		{
			name: "integer override",
			pub: types.PublicationConfig{
				Name:      "p",
				BibtexKey: "Smith2020",
				Overrides: map[string]any{"publication_types": int64(4)},
			},
			want: []int{4},
		},
		{
			name: "list override",
			pub: types.PublicationConfig{
				Name:      "p",
				BibtexKey: "Smith2020",
				Overrides: map[string]any{"publication_types": []any{int64(1), int64(3)}},
			},
			want: []int{1, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(t, tt.pub, nil)
			pub, err := r.Resolve("p")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(pub.PublicationTypes, tt.want) {
				t.Errorf("PublicationTypes = %v, want %v", pub.PublicationTypes, tt.want)
			}
		})
	}
}

func TestResolveDerivedFields(t *testing.T) {
	r := newResolver(t, types.PublicationConfig{Name: "p", BibtexKey: "Smith2020", Overrides: map[string]any{}}, nil)
	pub, err := r.Resolve("p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pub.Date != "2020-03-01T00:00:00" {
		t.Errorf("Date = %q, want 2020-03-01T00:00:00", pub.Date)
	}
	if pub.Publication != "in *Journal of Studies*" {
		t.Errorf("Publication = %q", pub.Publication)
	}
	if pub.Abstract != "We study 100% of the things." {
		t.Errorf("Abstract = %q", pub.Abstract)
	}
	if pub.DOI != "10.1/xyz" {
		t.Errorf("DOI = %q, want 10.1/xyz", pub.DOI)
	}
}

func TestResolveBoolAndListDefaults(t *testing.T) {
	r := newResolver(t, types.PublicationConfig{
		Name:      "p",
		BibtexKey: "Smith2020",
		Overrides: map[string]any{"featured": true, "tags": []any{"ocean"}},
	}, func(c *types.Config) {
		c.Defaults["featured"] = false
		c.Defaults["math"] = false
	})
	pub, err := r.Resolve("p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pub.Featured == nil || !*pub.Featured {
		t.Error("Featured should be true (override)")
	}
	if pub.Math == nil || *pub.Math {
		t.Error("Math should be false (default)")
	}
	if pub.Selected != nil {
		t.Error("Selected should be absent without override or default")
	}
	if !reflect.DeepEqual(pub.Tags, []string{"ocean"}) {
		t.Errorf("Tags = %v", pub.Tags)
	}
	if pub.Projects == nil || len(pub.Projects) != 0 {
		t.Errorf("Projects = %#v, want empty non-nil list", pub.Projects)
	}
}

func TestResolveExtrasPassThrough(t *testing.T) {
	r := newResolver(t, types.PublicationConfig{
		Name:      "p",
		BibtexKey: "Smith2020",
		Overrides: map[string]any{
			"zcustom":  "last",
			"acustom":  "first",
			"url_code": "https://example.com/code",
		},
	}, nil)
	pub, err := r.Resolve("p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pub.Extras) != 2 {
		t.Fatalf("Extras = %v, want 2 entries", pub.Extras)
	}
	if pub.Extras[0].Key != "acustom" || pub.Extras[1].Key != "zcustom" {
		t.Errorf("Extras not sorted: %v", pub.Extras)
	}

	foundCode := false
	for _, u := range pub.URLs {
		if u.Key == "url_code" {
			foundCode = true
		}
	}
	if !foundCode {
		t.Error("url_code should be collected as a url field, not an extra")
	}
}

func TestSplitAuthors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "last-first reversal",
			raw:  "Mattern, Jann Paul and Edwards, Christopher A.",
			want: []string{"Jann Paul Mattern", "Christopher A. Edwards"},
		},
		{
			name: "plain first-last preserved",
			raw:  "John Smith and Jane Doe",
			want: []string{"John Smith", "Jane Doe"},
		},
		{
			name: "brace groups stripped",
			raw:  "{de la Cruz}, Maria",
			want: []string{"Maria de la Cruz"},
		},
		{
			name: "single author",
			raw:  "Smith, John",
			want: []string{"John Smith"},
		},
		{
			name: "empty string",
			raw:  "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitAuthors(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitAuthors(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDeriveDate(t *testing.T) {
	tests := []struct {
		year, month, day string
		want             string
	}{
		{"2020", "3", "15", "2020-03-15T00:00:00"},
		{"2020", "", "", "2020-01-01T00:00:00"},
		{"2019", "jul", "", "2019-07-01T00:00:00"},
		{"2019", "December", "31", "2019-12-31T00:00:00"},
		{"", "3", "15", ""},
		{"notayear", "", "", ""},
	}

	for _, tt := range tests {
		got := deriveDate(tt.year, tt.month, tt.day)
		if got != tt.want {
			t.Errorf("deriveDate(%q, %q, %q) = %q, want %q", tt.year, tt.month, tt.day, got, tt.want)
		}
	}
}

func TestCleanBibValue(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"A {Special} Study", "A Special Study"},
		{`100{\%} done`, "100% done"},
		{"{The Whole Thing}", "The Whole Thing"},
		{"no braces", "no braces"},
	}

	for _, tt := range tests {
		if got := cleanBibValue(tt.in); got != tt.want {
			t.Errorf("cleanBibValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
