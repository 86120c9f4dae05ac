package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kyori-mfv/mfext/pkg/render"
	"github.com/kyori-mfv/mfext/pkg/router"
	"github.com/kyori-mfv/mfext/pkg/vdom"
)

func layout(name string) Component {
	return func(ctx context.Context, props Props) *vdom.VNode {
		return vdom.Div(vdom.Class(name), props.Children)
	}
}

func page(ctx context.Context, props Props) *vdom.VNode {
	return vdom.P(vdom.Textf("page %s %d", props.Path, len(props.Segments)))
}

func renderHTML(t *testing.T, node *vdom.VNode) string {
	t.Helper()
	out, err := render.NewRenderer(render.RendererConfig{}).RenderToString(context.Background(), node)
	if err != nil {
		t.Fatalf("RenderToString() error = %v", err)
	}
	return out
}

var dashboard = &router.ResolvedRoute{
	Path:     "/dashboard",
	Segments: []string{"dashboard"},
	Page:     "dashboard/page.go",
	Layouts:  []string{"layout.go", "dashboard/layout.go"},
}

func TestCompose(t *testing.T) {
	tests := []struct {
		name       string
		route      *router.ResolvedRoute
		components ComponentSet
		want       string
	}{
		{
			name:  "nested layouts",
			route: dashboard,
			components: ComponentSet{
				"layout.go":           layout("root"),
				"dashboard/layout.go": layout("dash"),
				"dashboard/page.go":   page,
			},
			want: `<div class="root"><div class="dash"><p>page /dashboard 1</p></div></div>`,
		},
		{
			name:       "no layouts",
			route:      &router.ResolvedRoute{Path: "/", Segments: []string{}, Page: "page.go"},
			components: ComponentSet{"page.go": page},
			want:       `<p>page / 0</p>`,
		},
		{
			name:  "missing layout skipped",
			route: dashboard,
			components: ComponentSet{
				"dashboard/layout.go": layout("dash"),
				"dashboard/page.go":   page,
			},
			want: `<div class="dash"><p>page /dashboard 1</p></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := Compose(context.Background(), tt.route, tt.components)
			if err != nil {
				t.Fatalf("Compose() error = %v", err)
			}
			if got := renderHTML(t, node); got != tt.want {
				t.Errorf("Compose() rendered\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestComposeMissingPage(t *testing.T) {
	node, err := Compose(context.Background(), dashboard, ComponentSet{"layout.go": layout("root")})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	got := renderHTML(t, node)
	if !strings.HasPrefix(got, `<div class="root"><div class="mfext-page-not-found"`) {
		t.Errorf("Compose() = %s", got)
	}
	if !strings.Contains(got, "dashboard/page.go") {
		t.Errorf("placeholder should name the page: %s", got)
	}
}

func TestComposeStrict(t *testing.T) {
	components := ComponentSet{"dashboard/page.go": page, "layout.go": layout("root")}
	_, err := Compose(context.Background(), dashboard, components, Strict())
	if !errors.Is(err, ErrMissingLayout) {
		t.Fatalf("Compose(Strict) error = %v, want ErrMissingLayout", err)
	}
	if !strings.Contains(err.Error(), "dashboard/layout.go") {
		t.Errorf("error should name the layout: %v", err)
	}
}

func TestComposeIsLazy(t *testing.T) {
	called := false
	components := ComponentSet{"page.go": func(ctx context.Context, props Props) *vdom.VNode {
		called = true
		return nil
	}}
	node, err := Compose(context.Background(), &router.ResolvedRoute{Path: "/", Page: "page.go"}, components)
	if err != nil {
		t.Fatal(err)
	}
	if called {
		t.Error("Compose should not render components")
	}
	if node.Kind != vdom.KindComponent || node.Tag != "page.go" {
		t.Errorf("node = %v %q, want component page.go", node.Kind, node.Tag)
	}
}
