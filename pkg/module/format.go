// Package module implements the paged on-disk "BRDF" module format:
// a writer that serializes a finished interpretation, dataset and
// classification into a page-chained binary file, and a lazy reader that
// decodes pages on demand through a bounded, borrow-aware cache.
package module

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Tag is the fixed 4-byte file-format marker.
var Tag = [4]byte{'B', 'R', 'D', 'F'}

// Version is the format version this package reads and writes.
const Version uint32 = 1

// MinPageSize is the smallest page size accepted.
const MinPageSize = 512

// DefaultPageSize is used by the CLI when --page-size is not given.
const DefaultPageSize = 4096

// pageHeaderSize is the size, in bytes, of the small per-page header that
// precedes every table page's entries: entry count (how many of this
// page's entries are populated) and a next-page pointer (-1 if this is
// the table's last page).
const pageHeaderSize = 2 + 4 // uint16 + int32

// noNextPage marks the last page of a chain.
const noNextPage int32 = -1

// headerEncodedSize is Header.encode's fixed output length: a 4-byte tag, a
// 4-byte version, and five 4-byte fields. The directory's length prefix
// immediately follows it within page 0.
const headerEncodedSize = 4 + 4 + 4*5

// Header is the fixed-layout file header. The four section offsets
// are page indices (not byte offsets), each into a region of page-chained
// table data; the directory immediately following the header (still within
// page 0) gives each individual table's first page and entry count within
// its section.
type Header struct {
	PageSize uint32

	InterpretationPage uint32
	DatasetPage        uint32
	ClassificationPage uint32
	HeapPage           uint32
}

func validatePageSize(pageSize uint32) error {
	if pageSize < MinPageSize || pageSize%MinPageSize != 0 {
		return fmt.Errorf("module: page size %d must be a positive multiple of %d", pageSize, MinPageSize)
	}
	return nil
}

func (h Header) encode(w io.Writer) error {
	if err := validatePageSize(h.PageSize); err != nil {
		return err
	}
	fields := []uint32{h.PageSize, h.InterpretationPage, h.DatasetPage, h.ClassificationPage, h.HeapPage}
	if _, err := w.Write(Tag[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, Version); err != nil {
		return err
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.BigEndian, f); err != nil {
			return err
		}
	}
	return nil
}

func decodeHeader(r io.Reader) (Header, error) {
	var tag [4]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return Header{}, fmt.Errorf("module: reading tag: %w", err)
	}
	if tag != Tag {
		return Header{}, fmt.Errorf("%w: got %q", ErrInvalidTag, tag)
	}

	var version uint32
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return Header{}, fmt.Errorf("module: reading version: %w", err)
	}
	if version != Version {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	var h Header
	for _, f := range []*uint32{&h.PageSize, &h.InterpretationPage, &h.DatasetPage, &h.ClassificationPage, &h.HeapPage} {
		if err := binary.Read(r, binary.BigEndian, f); err != nil {
			return Header{}, fmt.Errorf("module: reading header: %w", err)
		}
	}
	if err := validatePageSize(h.PageSize); err != nil {
		return Header{}, err
	}
	return h, nil
}

// tableMeta locates one fixed-entry table: its first page index (within
// the file) and how many entries it holds in total.
type tableMeta struct {
	FirstPage  uint32
	EntryCount uint32
}

// graphMeta locates one graph's two tables.
type graphMeta struct {
	GraphID     uint32 // meaningless when IsDefault
	IsDefault   bool
	Resources   tableMeta
	Facts       tableMeta
}

// directory is the variable-length index of every table's location,
// written (length-prefixed, msgpack-encoded) immediately after the fixed
// Header, still within page 0. Keeping it out of the fixed Header lets the
// number of named graphs vary without complicating the header's static
// layout.
type directory struct {
	Iri            tableMeta
	Literal        tableMeta
	Resource       tableMeta
	DefaultGraph   graphMeta
	NamedGraphs    []graphMeta
	GroupsByID     tableMeta
	GroupsByDesc   tableMeta
	Representative tableMeta

	HeapLen uint64
}

var (
	// ErrInvalidTag is returned when a file does not start with the BRDF
	// magic tag.
	ErrInvalidTag = fmt.Errorf("module: invalid tag")
	// ErrUnsupportedVersion is returned when the file declares a version
	// this package does not understand.
	ErrUnsupportedVersion = fmt.Errorf("module: unsupported version")
)
