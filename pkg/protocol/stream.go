package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/kyori-mfv/mfext/pkg/vdom"
)

// StreamVersion is written in the header frame of every stream.
const StreamVersion byte = 1

// Stream errors.
var (
	ErrInvalidStream   = errors.New("protocol: invalid component stream")
	ErrTruncatedStream = errors.New("protocol: truncated component stream")
	ErrStreamVersion   = errors.New("protocol: unsupported stream version")
)

// ServerError is returned by the reader when the stream carries an error
// frame.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "protocol: server error: " + e.Message
}

type flusher interface {
	Flush()
}

// StreamWriter serializes component trees to a component stream.
//
// A stream is a header frame, one module frame per distinct client reference
// in document order, then the encoded tree split over tree frames. The last
// tree frame carries FlagFinal.
type StreamWriter struct {
	w        io.Writer
	manifest ClientManifest
	chunk    int
}

// NewStreamWriter creates a writer that resolves client references against
// manifest. A nil manifest behaves as an empty one.
func NewStreamWriter(w io.Writer, manifest ClientManifest) *StreamWriter {
	if manifest == nil {
		manifest = ClientManifest{}
	}
	return &StreamWriter{w: w, manifest: manifest, chunk: MaxPayloadSize}
}

// WriteTree expands node and writes it as a complete stream. Expansion and
// encoding happen before the first byte is written, so a render failure
// leaves the writer untouched. If w implements Flush, it is flushed after the
// module frames and after every tree frame.
func (s *StreamWriter) WriteTree(ctx context.Context, node *vdom.VNode) error {
	expanded, err := vdom.Expand(ctx, node)
	if err != nil {
		return err
	}

	enc := NewEncoder()
	if err := EncodeTree(enc, expanded); err != nil {
		return err
	}
	tree := enc.Bytes()

	if err := WriteFrame(s.w, &Frame{Type: FrameHeader, Payload: []byte{StreamVersion}}); err != nil {
		return err
	}
	for _, ref := range ClientRefs(expanded) {
		if err := WriteFrame(s.w, &Frame{Type: FrameModule, Payload: encodeModule(s.manifest.Resolve(ref))}); err != nil {
			return err
		}
	}
	s.flush()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := len(tree)
		if n > s.chunk {
			n = s.chunk
		}
		f := &Frame{Type: FrameTree, Payload: tree[:n]}
		tree = tree[n:]
		if len(tree) == 0 {
			f.Flags = FlagFinal
		}
		if err := WriteFrame(s.w, f); err != nil {
			return err
		}
		s.flush()
		if f.Flags.Has(FlagFinal) {
			return nil
		}
	}
}

// WriteError writes an error frame. Readers stop and report a ServerError.
func (s *StreamWriter) WriteError(message string) error {
	enc := NewEncoder()
	enc.WriteString(message)
	if err := WriteFrame(s.w, &Frame{Type: FrameError, Flags: FlagFinal, Payload: enc.Bytes()}); err != nil {
		return err
	}
	s.flush()
	return nil
}

func (s *StreamWriter) flush() {
	if f, ok := s.w.(flusher); ok {
		f.Flush()
	}
}

// ClientRefs returns the distinct client references of a tree in document
// order.
func ClientRefs(node *vdom.VNode) []string {
	var refs []string
	seen := make(map[string]bool)
	var walk func(n *vdom.VNode)
	walk = func(n *vdom.VNode) {
		if n == nil {
			return
		}
		if n.Kind == vdom.KindClient && !seen[n.Ref] {
			seen[n.Ref] = true
			refs = append(refs, n.Ref)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(node)
	return refs
}

func encodeModule(m ClientModule) []byte {
	enc := NewEncoder()
	enc.WriteString(m.ID)
	enc.WriteString(m.Name)
	enc.WriteUvarint(uint64(len(m.Chunks)))
	for _, c := range m.Chunks {
		enc.WriteString(c)
	}
	return enc.Bytes()
}

func decodeModule(payload []byte) (ClientModule, error) {
	d := NewDecoder(payload)
	var m ClientModule
	var err error
	if m.ID, err = d.ReadString(); err != nil {
		return m, err
	}
	if m.Name, err = d.ReadString(); err != nil {
		return m, err
	}
	count, err := d.ReadCollectionCount()
	if err != nil {
		return m, err
	}
	for i := 0; i < count; i++ {
		c, err := d.ReadString()
		if err != nil {
			return m, err
		}
		m.Chunks = append(m.Chunks, c)
	}
	return m, nil
}

// Payload is a decoded component stream.
type Payload struct {
	Modules []ClientModule
	Tree    *vdom.VNode
}

// StreamReader decodes a component stream.
type StreamReader struct {
	r       io.Reader
	maxSize int
}

// NewStreamReader creates a reader over r. Reassembled trees larger than
// HardMaxAllocation are rejected.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: r, maxSize: HardMaxAllocation}
}

// Read consumes frames until the final tree frame and decodes the tree.
// Input ending before that frame is ErrTruncatedStream.
func (s *StreamReader) Read() (*Payload, error) {
	first, err := ReadFrame(s.r)
	if err != nil {
		return nil, streamErr(err)
	}
	if first.Type != FrameHeader || len(first.Payload) != 1 {
		return nil, fmt.Errorf("%w: missing header", ErrInvalidStream)
	}
	if first.Payload[0] != StreamVersion {
		return nil, fmt.Errorf("%w: %d", ErrStreamVersion, first.Payload[0])
	}

	p := &Payload{}
	var tree []byte
	for {
		f, err := ReadFrame(s.r)
		if err != nil {
			return nil, streamErr(err)
		}

		switch f.Type {
		case FrameModule:
			m, err := decodeModule(f.Payload)
			if err != nil {
				return nil, fmt.Errorf("%w: module frame: %v", ErrInvalidStream, err)
			}
			p.Modules = append(p.Modules, m)
		case FrameTree:
			if len(tree)+len(f.Payload) > s.maxSize {
				return nil, ErrAllocationTooLarge
			}
			tree = append(tree, f.Payload...)
			if !f.Flags.Has(FlagFinal) {
				continue
			}
			d := NewDecoder(tree)
			if p.Tree, err = DecodeTree(d); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidStream, err)
			}
			if !d.EOF() {
				return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidStream, d.Remaining())
			}
			return p, nil
		case FrameError:
			msg, _ := NewDecoder(f.Payload).ReadString()
			return nil, &ServerError{Message: msg}
		default:
			return nil, fmt.Errorf("%w: unexpected %s frame", ErrInvalidStream, f.Type)
		}
	}
}

func streamErr(err error) error {
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return ErrTruncatedStream
	case errors.Is(err, ErrInvalidFrameType):
		return fmt.Errorf("%w: %v", ErrInvalidStream, err)
	default:
		return err
	}
}

// ReadTree decodes a complete stream from r.
func ReadTree(r io.Reader) (*Payload, error) {
	return NewStreamReader(r).Read()
}
