package protocol

import (
	"bytes"
	"context"
	"testing"

	"github.com/kyori-mfv/mfext/pkg/vdom"
)

// FuzzReadTree tests that decoding arbitrary streams doesn't panic.
func FuzzReadTree(f *testing.F) {
	var buf bytes.Buffer
	NewStreamWriter(&buf, nil).WriteTree(context.Background(), vdom.Div(vdom.Class("x"), "hi", vdom.Client("c", vdom.Props{"n": 1})))
	f.Add(buf.Bytes())
	f.Add([]byte{0x00, 0x00, 0x00, 0x01, 0x01})

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = ReadTree(bytes.NewReader(data))
	})
}

// FuzzDecodeFrame tests that decoding arbitrary bytes doesn't panic.
func FuzzDecodeFrame(f *testing.F) {
	f.Add((&Frame{Type: FrameTree, Flags: FlagFinal, Payload: []byte("test")}).Encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = DecodeFrame(data)
	})
}
