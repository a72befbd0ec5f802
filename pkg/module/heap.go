package module

import (
	"encoding/binary"
	"fmt"
)

// heapWriter accumulates length-prefixed, msgpack-encoded variable-length
// payloads. Offsets
// returned by put are stable byte offsets from the start of the heap
// section and are what table entries store.
type heapWriter struct {
	buf []byte
}

func (h *heapWriter) put(v any) (uint64, error) {
	b, err := packAny(v)
	if err != nil {
		return 0, err
	}
	offset := uint64(len(h.buf))
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	h.buf = append(h.buf, lenBuf[:]...)
	h.buf = append(h.buf, b...)
	return offset, nil
}

// putIds is a convenience wrapper for the common case of storing a sorted
// id list (a resource's different-from set, a graph resource's occurrence
// lists).
func (h *heapWriter) putIds(ids []uint32) (uint64, error) {
	return h.put(ids)
}

// heapReader resolves heap offsets against an eagerly loaded, in-memory
// heap blob. The heap section holds every variable-length payload the
// whole module needs; for the dataset sizes this engine targets, loading
// it once at Open time is simpler than paging it and leaves the page
// cache's eviction policy to do real work only on the table sections,
// which is where the borrow/eviction behaviour actually matters.
type heapReader struct {
	buf []byte
}

func (h *heapReader) get(offset uint64, v any) error {
	if offset+4 > uint64(len(h.buf)) {
		return fmt.Errorf("module: heap offset %d out of range", offset)
	}
	n := binary.BigEndian.Uint32(h.buf[offset: offset+4])
	start := offset + 4
	end := start + uint64(n)
	if end > uint64(len(h.buf)) {
		return fmt.Errorf("module: heap entry at %d overflows heap", offset)
	}
	return unpackAny(h.buf[start:end], v)
}

func (h *heapReader) getIds(offset uint64) ([]uint32, error) {
	var ids []uint32
	if err := h.get(offset, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
