package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/kyori-mfv/mfext/pkg/vdom"
)

// MaxTreeDepth bounds nesting when decoding a tree.
const MaxTreeDepth = vdom.MaxDepth

// Tree errors.
var (
	ErrUnexpandedComponent = errors.New("protocol: tree contains an unexpanded component")
	ErrMaxDepthExceeded    = errors.New("protocol: maximum tree depth exceeded")
	ErrInvalidNodeKind     = errors.New("protocol: invalid node kind")
)

// Attribute value tags.
const (
	attrString byte = 0x00
	attrTrue   byte = 0x01
)

// EncodeTree appends the wire form of an expanded tree.
//
// Node layout:
//
//	Element:  kind, tag, key, attrCount, (name, tag, value)*, childCount, children
//	Text:     kind, text
//	Raw:      kind, html
//	Fragment: kind, childCount, children
//	Client:   kind, ref, key, props JSON, childCount, fallback children
//
// Attributes are written in name order so equal trees encode to equal bytes.
func EncodeTree(e *Encoder, node *vdom.VNode) error {
	return encodeNode(e, node, 0)
}

func encodeNode(e *Encoder, node *vdom.VNode, depth int) error {
	if depth > MaxTreeDepth {
		return ErrMaxDepthExceeded
	}
	if node == nil {
		node = &vdom.VNode{Kind: vdom.KindFragment}
	}

	switch node.Kind {
	case vdom.KindElement:
		e.WriteByte(byte(node.Kind))
		e.WriteString(node.Tag)
		e.WriteString(node.Key)
		encodeAttrs(e, node.Props)
	case vdom.KindText, vdom.KindRaw:
		e.WriteByte(byte(node.Kind))
		e.WriteString(node.Text)
		return nil
	case vdom.KindFragment:
		e.WriteByte(byte(node.Kind))
	case vdom.KindClient:
		props, err := json.Marshal(node.Props)
		if err != nil {
			return fmt.Errorf("protocol: client %s props: %w", node.Ref, err)
		}
		e.WriteByte(byte(node.Kind))
		e.WriteString(node.Ref)
		e.WriteString(node.Key)
		e.WriteLenBytes(props)
	case vdom.KindComponent:
		return fmt.Errorf("%w: %s", ErrUnexpandedComponent, node.Tag)
	default:
		return fmt.Errorf("%w: %d", ErrInvalidNodeKind, node.Kind)
	}

	e.WriteUvarint(uint64(len(node.Children)))
	for _, child := range node.Children {
		if err := encodeNode(e, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func encodeAttrs(e *Encoder, props vdom.Props) {
	type pair struct {
		name  string
		value string
		bare  bool
	}
	attrs := make([]pair, 0, len(props))
	for name, v := range props {
		s, ok := vdom.AttrString(v)
		if !ok {
			continue
		}
		_, isBool := v.(bool)
		attrs = append(attrs, pair{name: name, value: s, bare: isBool})
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].name < attrs[j].name })

	e.WriteUvarint(uint64(len(attrs)))
	for _, a := range attrs {
		e.WriteString(a.name)
		if a.bare {
			e.WriteByte(attrTrue)
			continue
		}
		e.WriteByte(attrString)
		e.WriteString(a.value)
	}
}

// DecodeTree reads one tree written by EncodeTree.
func DecodeTree(d *Decoder) (*vdom.VNode, error) {
	return decodeNode(d, 0)
}

func decodeNode(d *Decoder, depth int) (*vdom.VNode, error) {
	if depth > MaxTreeDepth {
		return nil, ErrMaxDepthExceeded
	}

	kind, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	node := &vdom.VNode{Kind: vdom.VKind(kind)}

	switch node.Kind {
	case vdom.KindElement:
		if node.Tag, err = d.ReadString(); err != nil {
			return nil, err
		}
		if node.Key, err = d.ReadString(); err != nil {
			return nil, err
		}
		if node.Props, err = decodeAttrs(d); err != nil {
			return nil, err
		}
	case vdom.KindText, vdom.KindRaw:
		if node.Text, err = d.ReadString(); err != nil {
			return nil, err
		}
		return node, nil
	case vdom.KindFragment:
	case vdom.KindClient:
		if node.Ref, err = d.ReadString(); err != nil {
			return nil, err
		}
		if node.Key, err = d.ReadString(); err != nil {
			return nil, err
		}
		raw, err := d.ReadLenBytes()
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &node.Props); err != nil {
			return nil, fmt.Errorf("protocol: client %s props: %w", node.Ref, err)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidNodeKind, kind)
	}

	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if count > 0 {
		node.Children = make([]*vdom.VNode, count)
		for i := range node.Children {
			if node.Children[i], err = decodeNode(d, depth+1); err != nil {
				return nil, err
			}
		}
	}
	return node, nil
}

func decodeAttrs(d *Decoder) (vdom.Props, error) {
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	props := make(vdom.Props, count)
	for i := 0; i < count; i++ {
		name, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		tag, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		switch tag {
		case attrTrue:
			props[name] = true
		case attrString:
			if props[name], err = d.ReadString(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("protocol: invalid attribute tag %#x", tag)
		}
	}
	return props, nil
}
