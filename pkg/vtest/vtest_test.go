package vtest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kyori-mfv/mfext/pkg/app"
	"github.com/kyori-mfv/mfext/pkg/client"
	"github.com/kyori-mfv/mfext/pkg/loader"
	"github.com/kyori-mfv/mfext/pkg/vdom"
)

func TestCtxBuilder(t *testing.T) {
	type key struct{}
	b := NewCtx().WithPath("/dashboard?tab=1").WithValue(key{}, "v")
	ctx := b.Build()

	if got := ctx.Value(key{}); got != "v" {
		t.Errorf("value = %v, want v", got)
	}
	store := client.FromContext(ctx)
	if store == nil {
		t.Fatal("store not installed")
	}
	if store != b.Store() {
		t.Error("Store() should return the installed store")
	}
	if got := store.Pathname(); got != "/dashboard" {
		t.Errorf("Pathname() = %q, want /dashboard", got)
	}
}

func TestCtxBuilder_NoStore(t *testing.T) {
	if client.FromContext(NewCtx().Build()) != nil {
		t.Error("expected no store without WithPath")
	}
}

func TestPropsBuilder(t *testing.T) {
	child := vdom.P(vdom.Text("child"))
	props := NewProps("/blog/first-post").WithChildren(child).Build()

	if props.Path != "/blog/first-post" {
		t.Errorf("Path = %q", props.Path)
	}
	if len(props.Segments) != 2 || props.Segments[0] != "blog" || props.Segments[1] != "first-post" {
		t.Errorf("Segments = %v", props.Segments)
	}
	if props.Children != child {
		t.Error("Children not set")
	}
	if got := NewProps("/").Build().Segments; len(got) != 0 {
		t.Errorf("root Segments = %v, want none", got)
	}
}

func TestExpectHelpers(t *testing.T) {
	node := vdom.Div(vdom.Class("card"), vdom.H1(vdom.Text("Hello")))

	ExpectContains(t, node, "Hello")
	ExpectNotContains(t, node, "Goodbye")
	ExpectElement(t, node, "h1")
	ExpectAttribute(t, node, "class", "card")
}

func TestRenderToString(t *testing.T) {
	html := RenderToString(vdom.Span(vdom.Text("x")))
	if html != "<span>x</span>" {
		t.Errorf("RenderToString = %q", html)
	}
}

func TestRenderRoute(t *testing.T) {
	dir := t.TempDir()
	for _, rel := range []string{"layout.go", "page.go", "about/page.go"} {
		p := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("package app\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	reg := loader.NewRegistry()
	reg.Register("layout.go", func(_ context.Context, p app.Props) *vdom.VNode {
		return vdom.Main(vdom.Class("shell"), p.Children)
	})
	reg.Register("about/page.go", func(_ context.Context, p app.Props) *vdom.VNode {
		return vdom.H1(vdom.Textf("About %d", len(p.Segments)))
	})

	html := RenderRoute(t, dir, reg, "/about")
	want := `<main class="shell"><h1>About 1</h1></main>`
	if html != want {
		t.Errorf("RenderRoute = %q, want %q", html, want)
	}

	// The home page is not registered, so the placeholder renders inside the layout.
	html = RenderRoute(t, dir, reg, "/")
	if !strings.Contains(html, "mfext-page-not-found") {
		t.Errorf("expected placeholder, got %q", html)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 3); got != "abc..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("ab", 3); got != "ab" {
		t.Errorf("truncate = %q", got)
	}
}
