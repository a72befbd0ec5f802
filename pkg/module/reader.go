package module

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/rdfkit/inferdf/pkg/builder"
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/interpretation"
	"github.com/rdfkit/inferdf/pkg/pattern"
	"github.com/rdfkit/inferdf/pkg/vocabulary"
)

// DefaultCacheCapacity bounds how many decoded table pages a Reader keeps
// resident at once.
const DefaultCacheCapacity = 64

// fact is one persisted triple read back from a graph's facts table,
// flattened across every graph the way builder.Dependency's FindTriple and
// SignedQuadMatching search it; neither cares which graph a triple lives
// in.
type fact struct {
	triple inferdf.Triple
	sign   inferdf.Sign
}

// Reader opens a module previously written by Write and serves it as a
// builder.Dependency: a composite interpretation or builder can treat it as
// a read-only layer to import resources and facts from. The vocabulary
// is supplied by the caller and shared with whatever local
// interpretation this dependency is attached to. Open interns every
// persisted IRI and literal into it once, up front, so a resource's terms
// already carry handles in the caller's handle space rather than the
// handle numbering the writing process happened to use.
//
// The per-resource IRI/literal heap offsets writeResourceTable stores
// (meant for a reader that looks a resource's terms up without a
// full-table scan) go unused here: since every IRI/literal the module
// contains already has to be interned into the caller's vocabulary to be
// useful at all, Open does that once for the whole table and keeps a
// resource-id-keyed index alongside it, which is both simpler and avoids
// the dependency on the writer's own (not reader-visible) vocabulary handle
// numbering the stored per-resource lists are otherwise expressed in.
type Reader struct {
	ra       io.ReaderAt
	pageSize uint32
	dir      directory
	heap     heapReader
	cache    *pageCache

	byIri     map[uint32]inferdf.Id
	byLiteral map[uint32]inferdf.Id
	resIris   map[inferdf.Id][]uint32
	resLits   map[inferdf.Id][]uint32

	facts []fact
}

// Open reads a module's header, directory and vocabulary tables from ra,
// interning every IRI and literal it contains into vocab, and returns a
// Reader ready to serve as a builder.Dependency. cacheCapacity bounds the
// number of decoded resource-table pages (used by Get) kept
// resident at once; DefaultCacheCapacity is used if cacheCapacity <= 0.
func Open(ra io.ReaderAt, vocab vocabulary.Vocabulary, cacheCapacity int) (*Reader, error) {
	if cacheCapacity <= 0 {
		cacheCapacity = DefaultCacheCapacity
	}

	// Page 0's exact size isn't known until the header is decoded, but the
	// header itself is a small fixed-size prefix, so peek it first.
	var peek [64]byte
	if _, err := ra.ReadAt(peek[:], 0); err != nil && err != io.EOF {
		return nil, fmt.Errorf("module: reading header: %w", err)
	}
	header, err := decodeHeader(bytes.NewReader(peek[:]))
	if err != nil {
		return nil, err
	}
	headerSize := headerEncodedSize

	page0 := make([]byte, header.PageSize)
	if _, err := ra.ReadAt(page0, 0); err != nil && err != io.EOF {
		return nil, fmt.Errorf("module: reading header page: %w", err)
	}
	dirLen := binary.BigEndian.Uint32(page0[headerSize: headerSize+4])
	dirStart := headerSize + 4
	if dirStart+int(dirLen) > len(page0) {
		return nil, fmt.Errorf("module: directory (%d bytes) overflows header page", dirLen)
	}
	var dir directory
	if err := unpackAny(page0[dirStart:dirStart+int(dirLen)], &dir); err != nil {
		return nil, fmt.Errorf("module: decoding directory: %w", err)
	}

	heapBuf := make([]byte, dir.HeapLen)
	if dir.HeapLen > 0 {
		if _, err := ra.ReadAt(heapBuf, pageOffset(header.PageSize, header.HeapPage)); err != nil && err != io.EOF {
			return nil, fmt.Errorf("module: reading heap: %w", err)
		}
	}

	r := &Reader{
		ra:        ra,
		pageSize:  header.PageSize,
		dir:       dir,
		heap:      heapReader{buf: heapBuf},
		cache:     newPageCache(cacheCapacity),
		byIri:     make(map[uint32]inferdf.Id),
		byLiteral: make(map[uint32]inferdf.Id),
		resIris:   make(map[inferdf.Id][]uint32),
		resLits:   make(map[inferdf.Id][]uint32),
	}

	iriRows, err := readAllEntries(ra, header.PageSize, dir.Iri, iriEntrySize, decodeIriEntry)
	if err != nil {
		return nil, err
	}
	for _, row := range iriRows {
		var s string
		if err := r.heap.get(row.HeapOffset, &s); err != nil {
			return nil, err
		}
		h := vocab.InsertIri(s)
		id := inferdf.Id(row.Id)
		r.byIri[h] = id
		r.resIris[id] = append(r.resIris[id], h)
	}

	litRows, err := readAllEntries(ra, header.PageSize, dir.Literal, literalEntrySize, decodeLiteralEntry)
	if err != nil {
		return nil, err
	}
	for _, row := range litRows {
		var hl heapLiteral
		if err := r.heap.get(row.HeapOffset, &hl); err != nil {
			return nil, err
		}
		h := vocab.InsertLiteral(hl.Value, hl.Datatype, hl.Lang)
		id := inferdf.Id(row.Id)
		r.byLiteral[h] = id
		r.resLits[id] = append(r.resLits[id], h)
	}

	graphs := append([]graphMeta{dir.DefaultGraph}, dir.NamedGraphs...)
	for _, g := range graphs {
		rows, err := readAllEntries(ra, header.PageSize, g.Facts, graphFactEntrySize, decodeGraphFactEntry)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			sign := inferdf.Negative
			if row.Sign != 0 {
				sign = inferdf.Positive
			}
			r.facts = append(r.facts, fact{
				triple: inferdf.Triple{Subject: inferdf.Id(row.Subject), Predicate: inferdf.Id(row.Predicate), Object: inferdf.Id(row.Object)},
				sign:   sign,
			})
		}
	}

	return r, nil
}

// entryAt decodes the i-th entry (0-based) of a table via the page cache,
// borrowing and releasing the page it lives on. Tables are written as a
// dense run of sequentially-numbered pages (page.go's writeTable), so the
// page holding global entry index i is meta.FirstPage + i/perPage, so no
// chain walk is needed for random access.
func (r *Reader) entryAt(kind tableKind, meta tableMeta, entrySize int, i int) ([]byte, error) {
	perPage := entriesPerPage(r.pageSize, entrySize)
	pageIdx := meta.FirstPage + uint32(i/perPage)
	key := pageKey{table: kind, page: pageIdx}
	v, err := r.cache.Borrow(key, func() (any, error) {
		_, data, _, err := readTablePage(r.ra, r.pageSize, pageIdx, entrySize)
		return data, err
	})
	if err != nil {
		return nil, err
	}
	r.cache.Release(key)
	data := v.([]byte)
	off := (i % perPage) * entrySize
	return data[off: off+entrySize], nil
}

func (r *Reader) findResource(id inferdf.Id) (resourceEntry, bool, error) {
	meta := r.dir.Resource
	lo, hi := 0, int(meta.EntryCount)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		b, err := r.entryAt(tableResource, meta, resourceEntrySize, mid)
		if err != nil {
			return resourceEntry{}, false, err
		}
		e := decodeResourceEntry(b)
		switch {
		case e.Id == uint32(id):
			return e, true, nil
		case e.Id < uint32(id):
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return resourceEntry{}, false, nil
}

// Get implements interpretation.Dependency.
func (r *Reader) Get(id inferdf.Id) (*interpretation.Resource, bool) {
	e, ok, err := r.findResource(id)
	if err != nil || !ok {
		return nil, false
	}
	res := interpretation.NewResource()
	for _, h := range r.resIris[id] {
		res.AddTerm(inferdf.Iri(h))
	}
	for _, h := range r.resLits[id] {
		res.AddTerm(inferdf.Literal(h))
	}
	if diff, err := r.heap.getIds(e.DifferentFromHeapOffset); err == nil {
		for _, d := range diff {
			res.DifferentFrom.Insert(inferdf.Id(d))
		}
	}
	return res, true
}

// TermsOf implements interpretation.Dependency.
func (r *Reader) TermsOf(id inferdf.Id) []inferdf.Term {
	res, ok := r.Get(id)
	if !ok {
		return nil
	}
	return res.Terms()
}

// TermInterpretation implements interpretation.Dependency. Blank node
// labels are never persisted (the interpretation tables cover only IRIs
// and literals), so a blank term always misses.
func (r *Reader) TermInterpretation(t inferdf.Term) (inferdf.Id, bool) {
	switch t.Kind {
	case inferdf.TermIri:
		id, ok := r.byIri[t.Handle]
		return id, ok
	case inferdf.TermLiteral:
		id, ok := r.byLiteral[t.Handle]
		return id, ok
	default:
		return 0, false
	}
}

// FindTriple implements builder.Dependency, searching every graph.
func (r *Reader) FindTriple(t inferdf.Triple) (inferdf.Sign, bool, error) {
	for _, f := range r.facts {
		if f.triple == t {
			return f.sign, true, nil
		}
	}
	return false, false, nil
}

// SignedQuadMatching implements builder.Dependency.
func (r *Reader) SignedQuadMatching(p inferdf.Signed[pattern.Canonical]) ([]builder.DependencyFact, error) {
	var out []builder.DependencyFact
	for _, f := range r.facts {
		if f.sign != p.Sign {
			continue
		}
		if !p.Value.Filter(f.triple) {
			continue
		}
		out = append(out, builder.DependencyFact{Triple: f.triple, Sign: f.sign})
	}
	return out, nil
}

// ResourceFacts implements builder.Dependency.
func (r *Reader) ResourceFacts(id inferdf.Id) ([]builder.DependencyFact, error) {
	var out []builder.DependencyFact
	for _, f := range r.facts {
		if f.triple.Subject == id || f.triple.Predicate == id || f.triple.Object == id {
			out = append(out, builder.DependencyFact{Triple: f.triple, Sign: f.sign})
		}
	}
	return out, nil
}
