package module

import (
	"encoding/binary"
	"fmt"
	"io"
)

// pageOffset returns the byte offset of page pageIndex.
func pageOffset(pageSize uint32, pageIndex uint32) int64 {
	return int64(pageIndex) * int64(pageSize)
}

// entriesPerPage returns how many fixed-size entries of entrySize fit in
// one page alongside its pageHeaderSize-byte header.
func entriesPerPage(pageSize uint32, entrySize int) int {
	n := (int(pageSize) - pageHeaderSize) / entrySize
	if n < 1 {
		n = 1
	}
	return n
}

// writeTable serializes count fixed-size entries (produced by encodeAt) as
// a chain of pages starting at *nextPage, advancing *nextPage past the
// pages it writes, and returns the table's location. An empty table still
// consumes no pages and is located at *nextPage with EntryCount 0; readers
// must treat EntryCount 0 as "no pages to read" regardless of FirstPage.
func writeTable(w io.Writer, pageSize uint32, nextPage *uint32, entrySize, count int, encodeAt func(i int, b []byte)) (tableMeta, error) {
	meta := tableMeta{FirstPage: *nextPage, EntryCount: uint32(count)}
	if count == 0 {
		return meta, nil
	}

	perPage := entriesPerPage(pageSize, entrySize)
	totalPages := (count + perPage - 1) / perPage
	page := make([]byte, pageSize)

	for p := 0; p < totalPages; p++ {
		start := p * perPage
		end := start + perPage
		if end > count {
			end = count
		}
		n := end - start

		for i := pageHeaderSize; i < len(page); i++ {
			page[i] = 0
		}
		binary.BigEndian.PutUint16(page[0:2], uint16(n))
		next := noNextPage
		if p+1 < totalPages {
			next = int32(meta.FirstPage) + int32(p) + 1
		}
		binary.BigEndian.PutUint32(page[2:6], uint32(next))

		off := pageHeaderSize
		for i := start; i < end; i++ {
			encodeAt(i, page[off:off+entrySize])
			off += entrySize
		}

		if _, err := w.Write(page); err != nil {
			return tableMeta{}, fmt.Errorf("module: writing table page: %w", err)
		}
	}
	*nextPage = meta.FirstPage + uint32(totalPages)

	return meta, nil
}

// readTablePage decodes page pageIndex of a table whose entries are
// entrySize bytes each, returning the live entry count in the page, the
// raw entry bytes (entryCount*entrySize long), and the next page index
// (-1 if this was the chain's last page).
func readTablePage(r io.ReaderAt, pageSize uint32, pageIndex uint32, entrySize int) (count uint16, data []byte, next int32, err error) {
	buf := make([]byte, pageSize)
	if _, err := r.ReadAt(buf, pageOffset(pageSize, pageIndex)); err != nil && err != io.EOF {
		return 0, nil, 0, fmt.Errorf("module: reading page %d: %w", pageIndex, err)
	}
	count = binary.BigEndian.Uint16(buf[0:2])
	next = int32(binary.BigEndian.Uint32(buf[2:6]))
	end := pageHeaderSize + int(count)*entrySize
	if end > len(buf) {
		return 0, nil, 0, fmt.Errorf("module: page %d entry count %d overflows page size", pageIndex, count)
	}
	return count, buf[pageHeaderSize:end], next, nil
}

// readAllEntries walks every page of a table chain and decodes each entry
// with decode, used by Open to load the IRI, literal and graph-fact tables
// whole; only the resources table is read through the page cache
// (reader.go's entryAt).
func readAllEntries[T any](r io.ReaderAt, pageSize uint32, meta tableMeta, entrySize int, decode func([]byte) T) ([]T, error) {
	if meta.EntryCount == 0 {
		return nil, nil
	}
	out := make([]T, 0, meta.EntryCount)
	page := meta.FirstPage
	for {
		count, data, next, err := readTablePage(r, pageSize, page, entrySize)
		if err != nil {
			return nil, err
		}
		for i := 0; i < int(count); i++ {
			out = append(out, decode(data[i*entrySize:(i+1)*entrySize]))
		}
		if next < 0 {
			break
		}
		page = uint32(next)
	}
	return out, nil
}
