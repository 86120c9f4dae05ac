package router

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("package app\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func playgroundTree(t *testing.T) string {
	return writeTree(t,
		"layout.go",
		"page.go",
		"not_found.go",
		"dashboard/layout.go",
		"dashboard/page.go",
		"dashboard/stats/layout.go",
		"dashboard/stats/page.go",
		"dashboard/stats/page_test.go",
		"dashboard/sidebar.go",
		"navigation-demo/page.go",
		"docs/guides/intro/page.go",
		"settings/layout.go",
		".hidden/page.go",
		"_components/page.go",
	)
}

func TestDiscover(t *testing.T) {
	m, err := Discover(context.Background(), playgroundTree(t))
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	want := map[string]*ResolvedRoute{
		"/": {Path: "/", Segments: []string{}, Page: "page.go", Layouts: []string{"layout.go"}},
		"/dashboard": {Path: "/dashboard", Segments: []string{"dashboard"}, Page: "dashboard/page.go",
			Layouts: []string{"layout.go", "dashboard/layout.go"}},
		"/dashboard/stats": {Path: "/dashboard/stats", Segments: []string{"dashboard", "stats"}, Page: "dashboard/stats/page.go",
			Layouts: []string{"layout.go", "dashboard/layout.go", "dashboard/stats/layout.go"}},
		"/navigation-demo": {Path: "/navigation-demo", Segments: []string{"navigation-demo"}, Page: "navigation-demo/page.go",
			Layouts: []string{"layout.go"}},
		"/docs/guides/intro": {Path: "/docs/guides/intro", Segments: []string{"docs", "guides", "intro"}, Page: "docs/guides/intro/page.go",
			Layouts: []string{"layout.go"}},
	}
	if !reflect.DeepEqual(m.Routes, want) {
		for path, r := range m.Routes {
			t.Logf("%s: %+v", path, r)
		}
		t.Fatalf("Routes mismatch")
	}

	if m.Tree.NotFound != "not_found.go" {
		t.Errorf("root NotFound = %q, want not_found.go", m.Tree.NotFound)
	}
	docs := m.Tree.Children["docs"]
	if docs == nil || docs.Path != "/docs" || docs.Page != "" {
		t.Fatalf("intermediate segment = %+v", docs)
	}
	if docs.Children["guides"].Path != "/docs/guides" {
		t.Errorf("guides path = %q", docs.Children["guides"].Path)
	}
	if _, ok := m.Tree.Children["settings"]; !ok {
		t.Error("layout-only directory should still be a segment")
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	m, err := Discover(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(m.Routes) != 0 || m.Tree.Path != "/" || len(m.Tree.Children) != 0 {
		t.Errorf("Discover() = %+v, want empty manifest", m)
	}
}

func TestDiscoverCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Discover(ctx, t.TempDir()); err == nil {
		t.Error("Discover() should report cancellation")
	}
}

func TestDiscoverAndWriteIdempotent(t *testing.T) {
	root := playgroundTree(t)
	out := filepath.Join(t.TempDir(), "dist", "app-routes-manifest.json")
	ctx := context.Background()

	_, changed, err := DiscoverAndWrite(ctx, root, out)
	if err != nil || !changed {
		t.Fatalf("first DiscoverAndWrite() = %v, %v; want write", changed, err)
	}
	first, _ := os.ReadFile(out)

	_, changed, err = DiscoverAndWrite(ctx, root, out)
	if err != nil || changed {
		t.Fatalf("second DiscoverAndWrite() = %v, %v; want no write", changed, err)
	}
	second, _ := os.ReadFile(out)
	if string(first) != string(second) {
		t.Error("manifest bytes changed between runs")
	}

	if !strings.Contains(string(first), `"routes": {`) || !strings.Contains(string(first), `"tree": {`) {
		t.Errorf("manifest JSON missing top-level keys:\n%s", first)
	}
}

func TestResolve(t *testing.T) {
	m, _ := Discover(context.Background(), playgroundTree(t))
	r := NewResolver(m)

	tests := []struct {
		path     string
		wantOK   bool
		page     string
		layouts  []string
		segments []string
	}{
		{"/", true, "page.go", []string{"layout.go"}, []string{}},
		{"", true, "page.go", []string{"layout.go"}, []string{}},
		{"/dashboard/", true, "dashboard/page.go", []string{"layout.go", "dashboard/layout.go"}, []string{"dashboard"}},
		{"/dashboard/stats", true, "dashboard/stats/page.go",
			[]string{"layout.go", "dashboard/layout.go", "dashboard/stats/layout.go"}, []string{"dashboard", "stats"}},
		{"//dashboard//stats", true, "dashboard/stats/page.go",
			[]string{"layout.go", "dashboard/layout.go", "dashboard/stats/layout.go"}, []string{"dashboard", "stats"}},
		{"/Dashboard", false, "", nil, nil},
		{"/settings", false, "", nil, nil},
		{"/docs", false, "", nil, nil},
		{"/missing/path", false, "", nil, nil},
		{"/dashboard/stats/deeper", false, "", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := r.Resolve(tt.path)
			if ok != tt.wantOK {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Path != tt.path || got.Page != tt.page {
				t.Errorf("Resolve(%q) = %+v", tt.path, got)
			}
			if !reflect.DeepEqual(got.Layouts, tt.layouts) {
				t.Errorf("Layouts = %v, want %v", got.Layouts, tt.layouts)
			}
			if !reflect.DeepEqual(got.Segments, tt.segments) {
				t.Errorf("Segments = %v, want %v", got.Segments, tt.segments)
			}
		})
	}
}

func TestResolveMatchesManifest(t *testing.T) {
	m, _ := Discover(context.Background(), playgroundTree(t))
	r := NewResolver(m)

	for path, want := range m.Routes {
		got, ok := r.Resolve(path)
		if !ok {
			t.Errorf("Resolve(%q) found nothing", path)
			continue
		}
		if !reflect.DeepEqual(got.Layouts, want.Layouts) || got.Page != want.Page {
			t.Errorf("Resolve(%q) = %+v, manifest has %+v", path, got, want)
		}
	}
}

func TestAvailableRoutes(t *testing.T) {
	m, _ := Discover(context.Background(), playgroundTree(t))
	got := NewResolver(m).AvailableRoutes()
	want := []string{"/", "/dashboard", "/dashboard/stats", "/docs/guides/intro", "/navigation-demo"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AvailableRoutes() = %v, want %v", got, want)
	}
}

func TestBoundary(t *testing.T) {
	root := writeTree(t, "layout.go", "page.go", "not-found.go", "error.go",
		"shop/layout.go", "shop/not_found.go", "shop/cart/page.go")
	m, _ := Discover(context.Background(), root)
	r := NewResolver(m)

	b := r.Boundary("/shop/unknown/deep")
	if b.NotFound != "shop/not_found.go" || b.Error != "error.go" {
		t.Errorf("Boundary() = %+v", b)
	}

	b = r.Boundary("/elsewhere")
	if b.NotFound != "not-found.go" || b.Error != "error.go" {
		t.Errorf("Boundary(/elsewhere) = %+v", b)
	}
}

func TestLoadResolver(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cases := map[string]string{
		"missing": "",
		"empty":   "",
		"corrupt": "{\"routes\": [",
		"null":    "null",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".json")
			if name != "missing" {
				os.WriteFile(path, []byte(content), 0o644)
			}
			r := LoadResolver(ctx, path)
			if routes := r.AvailableRoutes(); len(routes) != 0 {
				t.Errorf("AvailableRoutes() = %v, want none", routes)
			}
			if _, ok := r.Resolve("/"); ok {
				t.Error("Resolve(/) should miss")
			}
		})
	}

	out := filepath.Join(dir, "ok.json")
	if _, _, err := DiscoverAndWrite(ctx, playgroundTree(t), out); err != nil {
		t.Fatal(err)
	}
	if _, ok := LoadResolver(ctx, out).Resolve("/dashboard/stats"); !ok {
		t.Error("LoadResolver() should resolve a written manifest")
	}
}

func TestDuplicateSpecialFile(t *testing.T) {
	root := writeTree(t, "page.go", "not-found.go", "not_found.go")
	m, _ := Discover(context.Background(), root)
	if m.Tree.NotFound != "not-found.go" {
		t.Errorf("NotFound = %q, want the first file in walk order", m.Tree.NotFound)
	}
}

func TestNonGoSpecialNamesIgnored(t *testing.T) {
	// page.css sorts before page.go and must not take its slot.
	root := writeTree(t, "page.css", "page.go", "layout.html", "about/page.md")
	m, _ := Discover(context.Background(), root)

	if m.Tree.Page != "page.go" {
		t.Errorf("Page = %q, want page.go", m.Tree.Page)
	}
	if m.Tree.Layout != "" {
		t.Errorf("Layout = %q, want none", m.Tree.Layout)
	}
	if _, ok := m.Routes["/about"]; ok {
		t.Error("about/page.md should not produce a route")
	}
}
