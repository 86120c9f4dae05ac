package protocol

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kyori-mfv/mfext/pkg/render"
	"github.com/kyori-mfv/mfext/pkg/vdom"
)

func html(t *testing.T, node *vdom.VNode) string {
	t.Helper()
	out, err := render.NewRenderer(render.RendererConfig{}).RenderToString(context.Background(), node)
	if err != nil {
		t.Fatalf("RenderToString() error = %v", err)
	}
	return out
}

func sampleTree() *vdom.VNode {
	page := vdom.ComponentFunc(func(ctx context.Context) *vdom.VNode {
		return vdom.Main(
			vdom.H1("Dashboard"),
			vdom.Client("app/counter_client.go", vdom.Props{"start": 3}, vdom.Span("3")),
		)
	})
	return vdom.Html(
		vdom.Lang("en"),
		vdom.Body(
			vdom.Div(vdom.ID("nav"), vdom.Class("a", "b"), vdom.Hidden(), vdom.Key("k1"), "text & more"),
			vdom.Raw("<hr>"),
			vdom.Comp("page", page),
			vdom.Client("app/counter_client.go", nil),
			vdom.Client("app/clock_client.go", vdom.Props{"tz": "UTC"}),
		),
	)
}

func TestStreamRoundTrip(t *testing.T) {
	ctx := context.Background()
	manifest := ClientManifest{
		"app/counter_client.go": {ID: "counter", Chunks: []string{"client.wasm"}, Name: "Counter"},
	}

	var buf bytes.Buffer
	if err := NewStreamWriter(&buf, manifest).WriteTree(ctx, sampleTree()); err != nil {
		t.Fatalf("WriteTree() error = %v", err)
	}

	payload, err := ReadTree(&buf)
	if err != nil {
		t.Fatalf("ReadTree() error = %v", err)
	}

	expanded, err := vdom.Expand(ctx, sampleTree())
	if err != nil {
		t.Fatal(err)
	}
	if got, want := html(t, payload.Tree), html(t, expanded); got != want {
		t.Errorf("decoded tree renders\n%s\nwant\n%s", got, want)
	}

	if len(payload.Modules) != 2 {
		t.Fatalf("Modules = %+v, want 2 entries", payload.Modules)
	}
	if payload.Modules[0].ID != "counter" || payload.Modules[0].Chunks[0] != "client.wasm" {
		t.Errorf("Modules[0] = %+v", payload.Modules[0])
	}
	if payload.Modules[1].ID != "app/clock_client.go" || len(payload.Modules[1].Chunks) != 0 {
		t.Errorf("unknown ref should resolve to an empty module, got %+v", payload.Modules[1])
	}

	div := payload.Tree.Children[0].Children[0]
	if div.Key != "k1" {
		t.Errorf("Key = %q, want k1", div.Key)
	}
	if div.Props["hidden"] != true {
		t.Errorf("hidden = %v, want true", div.Props["hidden"])
	}
}

func TestStreamDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	ctx := context.Background()
	if err := NewStreamWriter(&a, nil).WriteTree(ctx, sampleTree()); err != nil {
		t.Fatal(err)
	}
	if err := NewStreamWriter(&b, nil).WriteTree(ctx, sampleTree()); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("equal trees should encode to equal bytes")
	}
}

func TestStreamChunking(t *testing.T) {
	var buf bytes.Buffer
	sw := NewStreamWriter(&buf, nil)
	sw.chunk = 16

	items := make([]*vdom.VNode, 50)
	for i := range items {
		items[i] = vdom.Li(vdom.Textf("item %d", i))
	}
	if err := sw.WriteTree(context.Background(), vdom.Ul(items)); err != nil {
		t.Fatal(err)
	}

	frames := 0
	r := bytes.NewReader(buf.Bytes())
	for {
		f, err := ReadFrame(r)
		if err != nil {
			break
		}
		if f.Type == FrameTree {
			frames++
		}
	}
	if frames < 2 {
		t.Fatalf("tree frames = %d, want several", frames)
	}

	payload, err := ReadTree(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadTree() error = %v", err)
	}
	if len(payload.Tree.Children) != 50 {
		t.Errorf("children = %d, want 50", len(payload.Tree.Children))
	}
}

func TestStreamRenderFailureWritesNothing(t *testing.T) {
	boom := vdom.ComponentFunc(func(ctx context.Context) *vdom.VNode {
		panic("boom")
	})

	var buf bytes.Buffer
	err := NewStreamWriter(&buf, nil).WriteTree(context.Background(), vdom.Div(vdom.Comp("Boom", boom)))
	var re *vdom.RenderError
	if !errors.As(err, &re) {
		t.Fatalf("WriteTree() error = %v, want RenderError", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes on failure", buf.Len())
	}
}

func TestReadTreeErrors(t *testing.T) {
	var full bytes.Buffer
	if err := NewStreamWriter(&full, nil).WriteTree(context.Background(), sampleTree()); err != nil {
		t.Fatal(err)
	}
	data := full.Bytes()

	tests := []struct {
		name  string
		input []byte
		want  error
	}{
		{"empty", nil, ErrTruncatedStream},
		{"truncated", data[:len(data)-3], ErrTruncatedStream},
		{"no header", (&Frame{Type: FrameTree, Flags: FlagFinal}).Encode(), ErrInvalidStream},
		{"bad version", (&Frame{Type: FrameHeader, Payload: []byte{9}}).Encode(), ErrStreamVersion},
		{"garbage tree", append((&Frame{Type: FrameHeader, Payload: []byte{StreamVersion}}).Encode(),
			(&Frame{Type: FrameTree, Flags: FlagFinal, Payload: []byte{0x7E}}).Encode()...), ErrInvalidStream},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadTree(bytes.NewReader(tc.input))
			if !errors.Is(err, tc.want) {
				t.Errorf("ReadTree() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestReadTreeServerError(t *testing.T) {
	var buf bytes.Buffer
	WriteFrame(&buf, &Frame{Type: FrameHeader, Payload: []byte{StreamVersion}})
	if err := NewStreamWriter(&buf, nil).WriteError("render aborted"); err != nil {
		t.Fatal(err)
	}

	_, err := ReadTree(&buf)
	var se *ServerError
	if !errors.As(err, &se) || !strings.Contains(se.Message, "render aborted") {
		t.Errorf("ReadTree() error = %v, want ServerError", err)
	}
}

func TestEncodeTreeRejectsComponents(t *testing.T) {
	node := vdom.Div(vdom.Comp("Lazy", vdom.ComponentFunc(func(ctx context.Context) *vdom.VNode { return nil })))
	if err := EncodeTree(NewEncoder(), node); !errors.Is(err, ErrUnexpandedComponent) {
		t.Errorf("EncodeTree() error = %v, want ErrUnexpandedComponent", err)
	}
}

func TestClientRefs(t *testing.T) {
	refs := ClientRefs(vdom.Div(
		vdom.Client("b", nil),
		vdom.Span(vdom.Client("a", nil)),
		vdom.Client("b", nil),
	))
	if strings.Join(refs, ",") != "b,a" {
		t.Errorf("ClientRefs() = %v, want [b a]", refs)
	}
}
