package client

import (
	"context"
	"html"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyori-mfv/mfext/pkg/protocol"
	"github.com/kyori-mfv/mfext/pkg/vdom"
)

type fakeElement struct {
	html     string
	handlers map[string]func()
}

func (e *fakeElement) SetHTML(h string) { e.html = h }

func (e *fakeElement) On(event string, fn func()) func() {
	if e.handlers == nil {
		e.handlers = map[string]func(){}
	}
	e.handlers[event] = fn
	return func() { delete(e.handlers, event) }
}

func (e *fakeElement) fire(event string) {
	if fn := e.handlers[event]; fn != nil {
		fn()
	}
}

var clientTag = regexp.MustCompile(`<mfext-client data-ref="([^"]*)" data-props="([^"]*)">`)

// fakeSurface finds client references in the markup it was given, the way
// querySelectorAll does in the browser.
type fakeSurface struct {
	html     string
	elements []*fakeElement
}

func (s *fakeSurface) SetHTML(h string) {
	s.html = h
	s.elements = nil
}

func (s *fakeSurface) Islands() []Island {
	var out []Island
	for _, m := range clientTag.FindAllStringSubmatch(s.html, -1) {
		el := &fakeElement{}
		s.elements = append(s.elements, el)
		out = append(out, Island{
			Ref:      html.UnescapeString(m[1]),
			RawProps: html.UnescapeString(m[2]),
			El:       el,
		})
	}
	return out
}

func counterMount(mounted *[]map[string]any, released *int) MountFunc {
	return func(ctx context.Context, el Element, props map[string]any) func() {
		*mounted = append(*mounted, props)
		count := int(props["start"].(float64))
		draw := func() { _ = Draw(el, vdom.Button(vdom.Textf("%d", count))) }
		draw()
		remove := el.On("click", func() {
			count++
			draw()
		})
		return func() {
			*released++
			remove()
		}
	}
}

func counterPayload(start int) *protocol.Payload {
	return &protocol.Payload{
		Modules: []protocol.ClientModule{{ID: "counter", Chunks: []string{"/static/client.wasm"}, Name: "Counter"}},
		Tree: vdom.Main(
			vdom.H1("Home"),
			vdom.Client("counter", vdom.Props{"start": start}, vdom.Button("fallback")),
		),
	}
}

func TestHydratingRootMountsClientReferences(t *testing.T) {
	var mounted []map[string]any
	var released int
	components := NewComponents()
	components.Register("counter", counterMount(&mounted, &released))
	surface := &fakeSurface{}
	root := NewHydratingRoot(surface, components)

	require.NoError(t, root.Render(context.Background(), counterPayload(2)))

	require.Len(t, mounted, 1)
	assert.Equal(t, map[string]any{"start": float64(2)}, mounted[0])
	assert.Contains(t, surface.html, "fallback")
	require.Len(t, surface.elements, 1)
	el := surface.elements[0]
	assert.Equal(t, "<button>2</button>", el.html)

	el.fire("click")
	el.fire("click")
	assert.Equal(t, "<button>4</button>", el.html)
}

func TestHydratingRootReleasesPreviousPage(t *testing.T) {
	var mounted []map[string]any
	var released int
	components := NewComponents()
	components.Register("counter", counterMount(&mounted, &released))
	surface := &fakeSurface{}
	root := NewHydratingRoot(surface, components)
	ctx := context.Background()

	require.NoError(t, root.Render(ctx, counterPayload(0)))
	first := surface.elements[0]
	require.NoError(t, root.Render(ctx, counterPayload(5)))

	assert.Equal(t, 1, released)
	assert.Empty(t, first.handlers)
	assert.Len(t, mounted, 2)
	assert.Equal(t, "<button>5</button>", surface.elements[0].html)
}

func TestHydratingRootLeavesUnregisteredReferencesStatic(t *testing.T) {
	surface := &fakeSurface{}
	root := NewHydratingRoot(surface, nil)

	require.NoError(t, root.Render(context.Background(), counterPayload(1)))

	require.Len(t, surface.elements, 1)
	assert.Empty(t, surface.elements[0].html)
	assert.Contains(t, surface.html, "<button>fallback</button>")
}

func TestHydrateSkipsUndecodableProps(t *testing.T) {
	calls := 0
	components := NewComponents()
	components.Register("counter", func(context.Context, Element, map[string]any) func() {
		calls++
		return nil
	})

	n := components.Hydrate(context.Background(), nil, []Island{
		{Ref: "counter", RawProps: "{not json", El: &fakeElement{}},
		{Ref: "counter", RawProps: "", El: &fakeElement{}},
		{Ref: "chart", RawProps: "{}", El: &fakeElement{}},
	})

	assert.Equal(t, 1, n)
	assert.Equal(t, 1, calls)
}

func TestDecodeProps(t *testing.T) {
	props, err := DecodeProps(`{"start":3,"label":"a"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"start": float64(3), "label": "a"}, props)

	props, err = DecodeProps("")
	require.NoError(t, err)
	assert.Empty(t, props)

	_, err = DecodeProps("[1]")
	assert.Error(t, err)
}
