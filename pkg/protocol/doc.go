// Package protocol implements the component stream: the binary format used
// to send an expanded component tree from a server to a client.
//
// # Wire Format
//
// A stream is a sequence of frames, each with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameHeader (0x00): stream version, always first
//   - FrameModule (0x01): a client module the tree references
//   - FrameTree (0x02): a chunk of the encoded tree, FlagFinal on the last
//   - FrameError (0x03): the server aborted the stream
//
// Trees larger than one frame are split across tree frames and reassembled
// by the reader. Strings and byte slices are varint length-prefixed.
//
// # Usage
//
// Writing:
//
//	sw := protocol.NewStreamWriter(w, manifest)
//	if err := sw.WriteTree(ctx, tree); err != nil {
//	    // nothing was written
//	}
//
// Reading:
//
//	payload, err := protocol.ReadTree(resp.Body)
//	if err != nil {
//	    // ErrTruncatedStream, ErrInvalidStream or *ServerError
//	}
//	render(payload.Tree)
//
// The HTTP content type of a stream is ContentType ("text/x-component").
package protocol
