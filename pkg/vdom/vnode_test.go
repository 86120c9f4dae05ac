package vdom

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestVKindString(t *testing.T) {
	tests := []struct {
		kind VKind
		want string
	}{
		{KindElement, "Element"},
		{KindText, "Text"},
		{KindFragment, "Fragment"},
		{KindComponent, "Component"},
		{KindRaw, "Raw"},
		{KindClient, "Client"},
		{VKind(255), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("VKind.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreateElement(t *testing.T) {
	t.Run("attributes and children", func(t *testing.T) {
		node := Div(
			Class("card"),
			H1(Text("Title")),
			ID("main"),
			"plain",
			nil,
		)
		if node.Props["class"] != "card" || node.Props["id"] != "main" {
			t.Errorf("Props = %v", node.Props)
		}
		if len(node.Children) != 2 {
			t.Fatalf("Children len = %d, want 2", len(node.Children))
		}
		if node.Children[1].Kind != KindText || node.Children[1].Text != "plain" {
			t.Errorf("string child = %+v, want text node", node.Children[1])
		}
	})

	t.Run("key is not an attribute", func(t *testing.T) {
		node := Li(Key(7))
		if node.Key != "7" {
			t.Errorf("Key = %q, want 7", node.Key)
		}
		if _, ok := node.Props["key"]; ok {
			t.Error("key should not be stored in Props")
		}
	})

	t.Run("slices skip nil", func(t *testing.T) {
		node := Ul([]*VNode{Li("a"), nil, Li("b")}, []Attr{Class("x"), {}})
		if len(node.Children) != 2 {
			t.Errorf("Children len = %d, want 2", len(node.Children))
		}
		if len(node.Props) != 1 {
			t.Errorf("Props = %v, want only class", node.Props)
		}
	})

	t.Run("component child", func(t *testing.T) {
		node := Div(ComponentFunc(func(context.Context) *VNode { return Span("hi") }))
		if node.Children[0].Kind != KindComponent {
			t.Errorf("child kind = %v, want Component", node.Children[0].Kind)
		}
	})
}

func TestClient(t *testing.T) {
	node := Client("dashboard/counter_client.go", Props{"start": 3}, Span("0"))
	if node.Kind != KindClient {
		t.Fatalf("Kind = %v, want Client", node.Kind)
	}
	if node.Ref != "dashboard/counter_client.go" {
		t.Errorf("Ref = %q", node.Ref)
	}
	if len(node.Children) != 1 || node.Children[0].Tag != "span" {
		t.Errorf("fallback children = %+v", node.Children)
	}
}

func TestAttrString(t *testing.T) {
	tests := []struct {
		in      any
		want    string
		present bool
	}{
		{"x", "x", true},
		{"", "", true},
		{true, "", true},
		{false, "", false},
		{nil, "", false},
		{42, "42", true},
		{int64(-3), "-3", true},
		{1.5, "1.5", true},
		{uint8(9), "9", true},
	}

	for _, tt := range tests {
		got, ok := AttrString(tt.in)
		if got != tt.want || ok != tt.present {
			t.Errorf("AttrString(%#v) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.present)
		}
	}
}

func TestExpand(t *testing.T) {
	inner := Comp("Inner", ComponentFunc(func(ctx context.Context) *VNode {
		return P("inner")
	}))
	empty := Comp("Empty", ComponentFunc(func(context.Context) *VNode { return nil }))
	root := Div(Comp("Outer", ComponentFunc(func(ctx context.Context) *VNode {
		return Section(inner, empty)
	})))

	out, err := Expand(context.Background(), root)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	if root.Children[0].Kind != KindComponent {
		t.Error("Expand must not modify its input")
	}
	section := out.Children[0]
	if section.Tag != "section" {
		t.Fatalf("expanded child = %+v, want section", section)
	}
	if len(section.Children) != 1 || section.Children[0].Tag != "p" {
		t.Errorf("section children = %+v, want one <p>", section.Children)
	}
}

func TestExpandPanic(t *testing.T) {
	boom := errors.New("boom")
	root := Div(Comp("Broken", ComponentFunc(func(context.Context) *VNode {
		panic(boom)
	})))

	_, err := Expand(context.Background(), root)
	var re *RenderError
	if !errors.As(err, &re) {
		t.Fatalf("Expand() error = %v, want RenderError", err)
	}
	if re.Component != "Broken" {
		t.Errorf("Component = %q, want Broken", re.Component)
	}
	if !errors.Is(err, boom) {
		t.Error("RenderError should unwrap to the panic value")
	}
}

func TestExpandDepthLimit(t *testing.T) {
	var loop ComponentFunc
	loop = func(context.Context) *VNode { return Comp("Loop", loop) }

	_, err := Expand(context.Background(), Comp("Loop", loop))
	if err == nil || !strings.Contains(err.Error(), "maximum depth") {
		t.Errorf("Expand() error = %v, want depth error", err)
	}
}

func TestExpandCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Expand(ctx, Div()); !errors.Is(err, context.Canceled) {
		t.Errorf("Expand() error = %v, want context.Canceled", err)
	}
}
