package module

import "encoding/binary"

// Every table entry below is a fixed-size, big-endian record.
// Variable-length payloads (IRI/literal lexical
// forms, id lists, group descriptions) live in the heap section and are
// addressed by a heap offset carried in the entry.

// iriEntry is one row of the IRI table, sorted by lexical IRI at write
// time; HeapOffset points at the msgpack-encoded string.
type iriEntry struct {
	HeapOffset uint64
	Id         uint32
}

const iriEntrySize = 8 + 4

func (e iriEntry) encode(b []byte) {
	binary.BigEndian.PutUint64(b[0:8], e.HeapOffset)
	binary.BigEndian.PutUint32(b[8:12], e.Id)
}

func decodeIriEntry(b []byte) iriEntry {
	return iriEntry{HeapOffset: binary.BigEndian.Uint64(b[0:8]), Id: binary.BigEndian.Uint32(b[8:12])}
}

// literalEntry is one row of the literal table, sorted by (value,
// datatype, lang) at write time (vocabulary.Literal.Less); HeapOffset
// points at a msgpack-encoded heapLiteral.
type literalEntry struct {
	HeapOffset uint64
	Id         uint32
}

const literalEntrySize = 8 + 4

func (e literalEntry) encode(b []byte) {
	binary.BigEndian.PutUint64(b[0:8], e.HeapOffset)
	binary.BigEndian.PutUint32(b[8:12], e.Id)
}

func decodeLiteralEntry(b []byte) literalEntry {
	return literalEntry{HeapOffset: binary.BigEndian.Uint64(b[0:8]), Id: binary.BigEndian.Uint32(b[8:12])}
}

// resourceEntry is one row of the resources table, sorted by id. The three
// heap offsets each point at a msgpack-encoded []uint32 (the resource's
// IRI handles, literal handles, and different-from id set); ClassLayer/
// ClassIndex/ClassMember are only meaningful when HasClass != 0.
type resourceEntry struct {
	Id                       uint32
	IrisHeapOffset           uint64
	LiteralsHeapOffset       uint64
	DifferentFromHeapOffset  uint64
	HasClass                 uint8
	ClassLayer               uint32
	ClassIndex               uint32
	ClassMember              uint32
}

const resourceEntrySize = 4 + 8 + 8 + 8 + 1 + 4 + 4 + 4

func (e resourceEntry) encode(b []byte) {
	binary.BigEndian.PutUint32(b[0:4], e.Id)
	binary.BigEndian.PutUint64(b[4:12], e.IrisHeapOffset)
	binary.BigEndian.PutUint64(b[12:20], e.LiteralsHeapOffset)
	binary.BigEndian.PutUint64(b[20:28], e.DifferentFromHeapOffset)
	b[28] = e.HasClass
	binary.BigEndian.PutUint32(b[29:33], e.ClassLayer)
	binary.BigEndian.PutUint32(b[33:37], e.ClassIndex)
	binary.BigEndian.PutUint32(b[37:41], e.ClassMember)
}

func decodeResourceEntry(b []byte) resourceEntry {
	return resourceEntry{
		Id:                      binary.BigEndian.Uint32(b[0:4]),
		IrisHeapOffset:          binary.BigEndian.Uint64(b[4:12]),
		LiteralsHeapOffset:      binary.BigEndian.Uint64(b[12:20]),
		DifferentFromHeapOffset: binary.BigEndian.Uint64(b[20:28]),
		HasClass:                b[28],
		ClassLayer:              binary.BigEndian.Uint32(b[29:33]),
		ClassIndex:              binary.BigEndian.Uint32(b[33:37]),
		ClassMember:             binary.BigEndian.Uint32(b[37:41]),
	}
}

// graphResourceEntry is one row of a graph's resources table, sorted by
// id: FactsHeapOffset points at a msgpack-encoded []uint32 of this graph's
// fact-table row indices the resource appears in (any position), in
// ascending order. The role a resource plays in any given fact (subject,
// predicate or object) is recovered from the fact row itself once looked
// up, so a single merged list suffices: the public Graph API exposes a
// resource's occurrences only as that merged stream (Graph.ResourceFacts),
// not the three separate per-role index sets a live Graph keeps
// internally.
type graphResourceEntry struct {
	Id              uint32
	FactsHeapOffset uint64
}

const graphResourceEntrySize = 4 + 8

func (e graphResourceEntry) encode(b []byte) {
	binary.BigEndian.PutUint32(b[0:4], e.Id)
	binary.BigEndian.PutUint64(b[4:12], e.FactsHeapOffset)
}

func decodeGraphResourceEntry(b []byte) graphResourceEntry {
	return graphResourceEntry{
		Id:              binary.BigEndian.Uint32(b[0:4]),
		FactsHeapOffset: binary.BigEndian.Uint64(b[4:12]),
	}
}

// graphFactEntry is one row of a graph's facts table, indexed by fact
// index (written in that order, so table position == fact index).
type graphFactEntry struct {
	Sign       uint8
	Subject    uint32
	Predicate  uint32
	Object     uint32
	CauseKind  uint8
	CauseIndex uint32
}

const graphFactEntrySize = 1 + 4 + 4 + 4 + 1 + 4

func (e graphFactEntry) encode(b []byte) {
	b[0] = e.Sign
	binary.BigEndian.PutUint32(b[1:5], e.Subject)
	binary.BigEndian.PutUint32(b[5:9], e.Predicate)
	binary.BigEndian.PutUint32(b[9:13], e.Object)
	b[13] = e.CauseKind
	binary.BigEndian.PutUint32(b[14:18], e.CauseIndex)
}

func decodeGraphFactEntry(b []byte) graphFactEntry {
	return graphFactEntry{
		Sign:       b[0],
		Subject:    binary.BigEndian.Uint32(b[1:5]),
		Predicate:  binary.BigEndian.Uint32(b[5:9]),
		Object:     binary.BigEndian.Uint32(b[9:13]),
		CauseKind:  b[13],
		CauseIndex: binary.BigEndian.Uint32(b[14:18]),
	}
}

// groupEntry is one row of either the groups-by-id table (sorted by
// (Layer, Index)) or the groups-by-description table (sorted by the
// pointed-at description's structural ordering): the two
// tables carry identical rows in different orders, giving O(log n) lookup
// either by GroupId or by structural content.
type groupEntry struct {
	Layer          uint32
	Index          uint32
	DescHeapOffset uint64
}

const groupEntrySize = 4 + 4 + 8

func (e groupEntry) encode(b []byte) {
	binary.BigEndian.PutUint32(b[0:4], e.Layer)
	binary.BigEndian.PutUint32(b[4:8], e.Index)
	binary.BigEndian.PutUint64(b[8:16], e.DescHeapOffset)
}

func decodeGroupEntry(b []byte) groupEntry {
	return groupEntry{
		Layer:          binary.BigEndian.Uint32(b[0:4]),
		Index:          binary.BigEndian.Uint32(b[4:8]),
		DescHeapOffset: binary.BigEndian.Uint64(b[8:16]),
	}
}

// representativeEntry is one row of the representatives table: the first resource id observed to carry a given
// (Layer, Index, Member) class, used to answer "give me any concrete
// resource of this class" without scanning every resource.
type representativeEntry struct {
	Layer      uint32
	Index      uint32
	Member     uint32
	ResourceId uint32
}

const representativeEntrySize = 4 + 4 + 4 + 4

func (e representativeEntry) encode(b []byte) {
	binary.BigEndian.PutUint32(b[0:4], e.Layer)
	binary.BigEndian.PutUint32(b[4:8], e.Index)
	binary.BigEndian.PutUint32(b[8:12], e.Member)
	binary.BigEndian.PutUint32(b[12:16], e.ResourceId)
}

func decodeRepresentativeEntry(b []byte) representativeEntry {
	return representativeEntry{
		Layer:      binary.BigEndian.Uint32(b[0:4]),
		Index:      binary.BigEndian.Uint32(b[4:8]),
		Member:     binary.BigEndian.Uint32(b[8:12]),
		ResourceId: binary.BigEndian.Uint32(b[12:16]),
	}
}
