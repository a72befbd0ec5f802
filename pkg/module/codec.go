package module

import (
	"fmt"

	msgpack "github.com/hashicorp/go-msgpack/v2/codec"

	"github.com/rdfkit/inferdf/pkg/classify"
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/vocabulary"
)

var mh = func() *msgpack.MsgpackHandle {
	h := &msgpack.MsgpackHandle{}
	h.WriteExt = true
	return h
}()

func packAny(v any) ([]byte, error) {
	var buf []byte
	enc := msgpack.NewEncoderBytes(&buf, mh)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("module: encoding heap payload: %w", err)
	}
	return buf, nil
}

func unpackAny(data []byte, v any) error {
	dec := msgpack.NewDecoderBytes(data, mh)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("module: decoding heap payload: %w", err)
	}
	return nil
}

// heapLiteral is the msgpack-serializable shape of a vocabulary.Literal,
// the heap payload a literal-table entry points at (value, datatype IRI,
// language tag).
type heapLiteral struct {
	Value    string
	Datatype string
	Lang     string
}

func toHeapLiteral(l vocabulary.Literal) heapLiteral {
	return heapLiteral{Value: l.Value, Datatype: l.Datatype, Lang: l.Lang}
}

func (h heapLiteral) toVocabulary() vocabulary.Literal {
	return vocabulary.Literal{Value: h.Value, Datatype: h.Datatype, Lang: h.Lang}
}

// heapReference is the msgpack-serializable shape of a classify.Reference,
// used inside heapBinding: a singleton id, a previously classified
// (layer, index, member), or a same-group member index.
type heapReference struct {
	Kind        uint8
	Singleton   uint32
	ClassLayer  uint32
	ClassIndex  uint32
	ClassMember uint32
	GroupMember uint32
}

func toHeapReference(r classify.Reference) heapReference {
	switch r.Kind {
	case classify.ReferenceSingleton:
		return heapReference{Kind: 0, Singleton: uint32(r.Singleton)}
	case classify.ReferenceClass:
		return heapReference{
			Kind:        1,
			ClassLayer:  r.ClassValue.Group.Layer,
			ClassIndex:  r.ClassValue.Group.Index,
			ClassMember: r.ClassValue.Member,
		}
	default:
		return heapReference{Kind: 2, GroupMember: r.GroupMember}
	}
}

func (h heapReference) toReference() classify.Reference {
	switch h.Kind {
	case 0:
		return classify.SingletonRef(inferdf.Id(h.Singleton))
	case 1:
		return classify.ClassRef(classify.Class{
			Group:  classify.GroupId{Layer: h.ClassLayer, Index: h.ClassIndex},
			Member: h.ClassMember,
		})
	default:
		return classify.GroupRef(h.GroupMember)
	}
}

// heapBinding is the msgpack-serializable shape of a classify.Binding.
type heapBinding struct {
	Sign bool
	A, B heapReference
}

// heapMember is the msgpack-serializable shape of a classify.Member.
type heapMember struct {
	Properties []heapBinding
}

// heapDescription is the msgpack-serializable shape of a
// classify.Description, the variable-length payload a group-table entry's
// heap offset points at.
type heapDescription struct {
	Members []heapMember
}

func toHeapDescription(d classify.Description) heapDescription {
	hd := heapDescription{Members: make([]heapMember, len(d.Members))}
	for i, m := range d.Members {
		hm := heapMember{Properties: make([]heapBinding, len(m.Properties))}
		for j, b := range m.Properties {
			hm.Properties[j] = heapBinding{Sign: bool(b.Sign), A: toHeapReference(b.A), B: toHeapReference(b.B)}
		}
		hd.Members[i] = hm
	}
	return hd
}

func (h heapDescription) toDescription() classify.Description {
	d := classify.Description{Members: make([]classify.Member, len(h.Members))}
	for i, hm := range h.Members {
		m := classify.Member{Properties: make([]classify.Binding, len(hm.Properties))}
		for j, hb := range hm.Properties {
			m.Properties[j] = classify.Binding{Sign: inferdf.Sign(hb.Sign), A: hb.A.toReference(), B: hb.B.toReference()}
		}
		d.Members[i] = m
	}
	return d
}
