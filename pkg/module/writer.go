package module

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/rdfkit/inferdf/pkg/classify"
	"github.com/rdfkit/inferdf/pkg/dataset"
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/interpretation"
	"github.com/rdfkit/inferdf/pkg/pattern"
	"github.com/rdfkit/inferdf/pkg/vocabulary"
)

// Write serializes interp, ds and cls into the paged BRDF format and
// writes it to w, which must support seeking back to the start (the header
// and its directory are only known once every table has been laid out, so
// they are written last, into the page reserved for them at the start of
// the file).
//
// Only the local layer is persisted: a Composite's dependency
// interpretations are not re-serialized. A module is built from one
// interpretation's own resources; dependency resolution happens at open
// time, driven by the caller.
func Write(w io.WriteSeeker, vocab vocabulary.Vocabulary, interp *interpretation.Interpretation, ds *dataset.Dataset, cls *classify.Classification, pageSize uint32) error {
	if err := validatePageSize(pageSize); err != nil {
		return err
	}

	if _, err := w.Seek(int64(pageSize), io.SeekStart); err != nil {
		return fmt.Errorf("module: seeking past header page: %w", err)
	}

	nextPage := uint32(1)
	heap := &heapWriter{}
	dir := directory{}

	var err error
	if dir.Iri, dir.Literal, err = writeVocabularyTables(w, pageSize, &nextPage, heap, interp, vocab); err != nil {
		return err
	}

	var resourceClasses []resourceEntry
	if dir.Resource, resourceClasses, err = writeResourceTable(w, pageSize, &nextPage, heap, interp, cls); err != nil {
		return err
	}

	if dir.DefaultGraph, err = writeGraph(w, pageSize, &nextPage, heap, ds.DefaultGraph, true, 0); err != nil {
		return err
	}
	namedGraphIds := make([]inferdf.Id, 0, len(ds.NamedGraphs))
	for g := range ds.NamedGraphs {
		namedGraphIds = append(namedGraphIds, g)
	}
	sort.Slice(namedGraphIds, func(i, j int) bool { return namedGraphIds[i] < namedGraphIds[j] })
	for _, g := range namedGraphIds {
		gm, err := writeGraph(w, pageSize, &nextPage, heap, ds.NamedGraphs[g], false, uint32(g))
		if err != nil {
			return err
		}
		dir.NamedGraphs = append(dir.NamedGraphs, gm)
	}

	if dir.GroupsByID, dir.GroupsByDesc, err = writeGroupTables(w, pageSize, &nextPage, heap, cls); err != nil {
		return err
	}
	if dir.Representative, err = writeRepresentativeTable(w, pageSize, &nextPage, resourceClasses); err != nil {
		return err
	}

	heapPage := nextPage
	dir.HeapLen = uint64(len(heap.buf))
	if err := writeHeapPages(w, pageSize, heap.buf); err != nil {
		return err
	}

	header := Header{
		PageSize:           pageSize,
		InterpretationPage: dir.Iri.FirstPage,
		DatasetPage:        dir.DefaultGraph.Resources.FirstPage,
		ClassificationPage: dir.GroupsByID.FirstPage,
		HeapPage:           heapPage,
	}
	if dir.Resource.EntryCount > 0 {
		header.InterpretationPage = min32(header.InterpretationPage, dir.Resource.FirstPage)
	}

	return writeHeaderPage(w, pageSize, header, dir)
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func writeVocabularyTables(w io.Writer, pageSize uint32, nextPage *uint32, heap *heapWriter, interp *interpretation.Interpretation, vocab vocabulary.Vocabulary) (iriMeta, literalMeta tableMeta, err error) {
	type iriRow struct {
		iri string
		id  uint32
	}
	type litRow struct {
		lit vocabulary.Literal
		id  uint32
	}
	var iris []iriRow
	var lits []litRow

	interp.Iter(func(id inferdf.Id, r *interpretation.Resource) bool {
		for h := range r.AsIri {
			if s, ok := vocab.Iri(h); ok {
				iris = append(iris, iriRow{iri: s, id: uint32(id)})
			}
		}
		for h := range r.AsLiteral {
			if l, ok := vocab.Literal(h); ok {
				lits = append(lits, litRow{lit: l, id: uint32(id)})
			}
		}
		return true
	})

	sort.Slice(iris, func(i, j int) bool { return iris[i].iri < iris[j].iri })
	sort.Slice(lits, func(i, j int) bool { return lits[i].lit.Less(lits[j].lit) })

	iriEntries := make([]iriEntry, len(iris))
	for i, row := range iris {
		off, perr := heap.put(row.iri)
		if perr != nil {
			return tableMeta{}, tableMeta{}, perr
		}
		iriEntries[i] = iriEntry{HeapOffset: off, Id: row.id}
	}
	iriMeta, err = writeTable(w, pageSize, nextPage, iriEntrySize, len(iriEntries), func(i int, b []byte) {
		iriEntries[i].encode(b)
	})
	if err != nil {
		return tableMeta{}, tableMeta{}, err
	}

	litEntries := make([]literalEntry, len(lits))
	for i, row := range lits {
		off, perr := heap.put(toHeapLiteral(row.lit))
		if perr != nil {
			return tableMeta{}, tableMeta{}, perr
		}
		litEntries[i] = literalEntry{HeapOffset: off, Id: row.id}
	}
	literalMeta, err = writeTable(w, pageSize, nextPage, literalEntrySize, len(litEntries), func(i int, b []byte) {
		litEntries[i].encode(b)
	})
	if err != nil {
		return tableMeta{}, tableMeta{}, err
	}

	return iriMeta, literalMeta, nil
}

func writeResourceTable(w io.Writer, pageSize uint32, nextPage *uint32, heap *heapWriter, interp *interpretation.Interpretation, cls *classify.Classification) (tableMeta, []resourceEntry, error) {
	var entries []resourceEntry
	var outerErr error

	interp.Iter(func(id inferdf.Id, r *interpretation.Resource) bool {
		irisOff, err := heap.putIds(sortedHandles(r.AsIri))
		if err != nil {
			outerErr = err
			return false
		}
		litsOff, err := heap.putIds(sortedHandles(r.AsLiteral))
		if err != nil {
			outerErr = err
			return false
		}
		diffOff, err := heap.putIds(idsToUint32(r.DifferentFrom.Slice()))
		if err != nil {
			outerErr = err
			return false
		}

		e := resourceEntry{
			Id:                      uint32(id),
			IrisHeapOffset:          irisOff,
			LiteralsHeapOffset:      litsOff,
			DifferentFromHeapOffset: diffOff,
		}
		if cls != nil {
			if c, ok := cls.ResourceClass(id); ok {
				e.HasClass = 1
				e.ClassLayer = c.Group.Layer
				e.ClassIndex = c.Group.Index
				e.ClassMember = c.Member
			}
		}
		entries = append(entries, e)
		return true
	})
	if outerErr != nil {
		return tableMeta{}, nil, outerErr
	}

	meta, err := writeTable(w, pageSize, nextPage, resourceEntrySize, len(entries), func(i int, b []byte) {
		entries[i].encode(b)
	})
	return meta, entries, err
}

func sortedHandles(set map[uint32]struct{}) []uint32 {
	out := make([]uint32, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func idsToUint32(ids []inferdf.Id) []uint32 {
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = uint32(id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func writeGraph(w io.Writer, pageSize uint32, nextPage *uint32, heap *heapWriter, g *dataset.Graph, isDefault bool, graphId uint32) (graphMeta, error) {
	factEntries, slabToRow := collectFacts(g)
	factsMeta, err := writeTable(w, pageSize, nextPage, graphFactEntrySize, len(factEntries), func(i int, b []byte) {
		factEntries[i].encode(b)
	})
	if err != nil {
		return graphMeta{}, err
	}

	var resEntries []graphResourceEntry
	resIds := resourceIdsOf(factEntries)
	for _, id := range resIds {
		rf := g.ResourceFacts(id)
		var rows []uint32
		for {
			slabIdx, _, ok := rf.Next()
			if !ok {
				break
			}
			rows = append(rows, slabToRow[slabIdx])
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i] < rows[j] })
		off, err := heap.putIds(rows)
		if err != nil {
			return graphMeta{}, err
		}
		resEntries = append(resEntries, graphResourceEntry{Id: uint32(id), FactsHeapOffset: off})
	}
	sort.Slice(resEntries, func(i, j int) bool { return resEntries[i].Id < resEntries[j].Id })

	resMeta, err := writeTable(w, pageSize, nextPage, graphResourceEntrySize, len(resEntries), func(i int, b []byte) {
		resEntries[i].encode(b)
	})
	if err != nil {
		return graphMeta{}, err
	}

	return graphMeta{GraphID: graphId, IsDefault: isDefault, Resources: resMeta, Facts: factsMeta}, nil
}

// collectFacts walks every live fact in ascending slab-index order (via an
// unconstrained Matching, which is the only exported way to enumerate a
// graph's facts) and assigns each a dense, zero-based output row, the row
// position table entries and resource occurrence lists reference, since the
// slab's own indices may contain gaps from prior removals.
func collectFacts(g *dataset.Graph) ([]graphFactEntry, map[uint32]uint32) {
	var entries []graphFactEntry
	slabToRow := make(map[uint32]uint32)

	m := g.Matching(pattern.FromOptionTriple(nil, nil, nil))
	for {
		slabIdx, f, ok := m.Next()
		if !ok {
			break
		}
		row := uint32(len(entries))
		slabToRow[slabIdx] = row
		sign := uint8(0)
		if f.Sign == inferdf.Positive {
			sign = 1
		}
		entries = append(entries, graphFactEntry{
			Sign:       sign,
			Subject:    uint32(f.Triple.Subject),
			Predicate:  uint32(f.Triple.Predicate),
			Object:     uint32(f.Triple.Object),
			CauseKind:  uint8(f.Cause.Kind),
			CauseIndex: f.Cause.Index,
		})
	}
	return entries, slabToRow
}

func resourceIdsOf(facts []graphFactEntry) []inferdf.Id {
	seen := make(map[uint32]struct{})
	var out []inferdf.Id
	add := func(id uint32) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, inferdf.Id(id))
		}
	}
	for _, f := range facts {
		add(f.Subject)
		add(f.Predicate)
		add(f.Object)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func writeGroupTables(w io.Writer, pageSize uint32, nextPage *uint32, heap *heapWriter, cls *classify.Classification) (byID, byDesc tableMeta, err error) {
	if cls == nil {
		return tableMeta{}, tableMeta{}, nil
	}

	type row struct {
		layer, index uint32
		desc         classify.Description
		offset       uint64
	}
	var rows []row
	for layer, l := range cls.Layers {
		for idx, d := range l.Groups {
			off, err := heap.put(toHeapDescription(d))
			if err != nil {
				return tableMeta{}, tableMeta{}, err
			}
			rows = append(rows, row{layer: uint32(layer), index: uint32(idx), desc: d, offset: off})
		}
	}

	byIDRows := append([]row(nil), rows...)
	sort.Slice(byIDRows, func(i, j int) bool {
		if byIDRows[i].layer != byIDRows[j].layer {
			return byIDRows[i].layer < byIDRows[j].layer
		}
		return byIDRows[i].index < byIDRows[j].index
	})
	idEntries := make([]groupEntry, len(byIDRows))
	for i, r := range byIDRows {
		idEntries[i] = groupEntry{Layer: r.layer, Index: r.index, DescHeapOffset: r.offset}
	}
	byID, err = writeTable(w, pageSize, nextPage, groupEntrySize, len(idEntries), func(i int, b []byte) {
		idEntries[i].encode(b)
	})
	if err != nil {
		return tableMeta{}, tableMeta{}, err
	}

	byDescRows := append([]row(nil), rows...)
	sort.Slice(byDescRows, func(i, j int) bool { return classify.CompareDescription(byDescRows[i].desc, byDescRows[j].desc) < 0 })
	descEntries := make([]groupEntry, len(byDescRows))
	for i, r := range byDescRows {
		descEntries[i] = groupEntry{Layer: r.layer, Index: r.index, DescHeapOffset: r.offset}
	}
	byDesc, err = writeTable(w, pageSize, nextPage, groupEntrySize, len(descEntries), func(i int, b []byte) {
		descEntries[i].encode(b)
	})
	return byID, byDesc, err
}

func writeRepresentativeTable(w io.Writer, pageSize uint32, nextPage *uint32, resources []resourceEntry) (tableMeta, error) {
	type key struct{ layer, index, member uint32 }
	seen := make(map[key]uint32)
	var order []key
	for _, r := range resources {
		if r.HasClass == 0 {
			continue
		}
		k := key{r.ClassLayer, r.ClassIndex, r.ClassMember}
		if _, ok := seen[k]; !ok {
			seen[k] = r.Id
			order = append(order, k)
		}
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.layer != b.layer {
			return a.layer < b.layer
		}
		if a.index != b.index {
			return a.index < b.index
		}
		return a.member < b.member
	})
	entries := make([]representativeEntry, len(order))
	for i, k := range order {
		entries[i] = representativeEntry{Layer: k.layer, Index: k.index, Member: k.member, ResourceId: seen[k]}
	}
	return writeTable(w, pageSize, nextPage, representativeEntrySize, len(entries), func(i int, b []byte) {
		entries[i].encode(b)
	})
}

func writeHeapPages(w io.Writer, pageSize uint32, heap []byte) error {
	pad := (pageSize - uint32(len(heap))%pageSize) % pageSize
	if _, err := w.Write(heap); err != nil {
		return fmt.Errorf("module: writing heap: %w", err)
	}
	if pad > 0 {
		if _, err := w.Write(make([]byte, pad)); err != nil {
			return fmt.Errorf("module: padding heap: %w", err)
		}
	}
	return nil
}

// writeHeaderPage lays out the fixed Header followed by its length-prefixed
// directory blob within a single page-0 buffer: both live inside page 0,
// which is exactly pageSize bytes like every other page. The directory
// length prefix sits right after the header, not after a whole extra page.
func writeHeaderPage(w io.WriteSeeker, pageSize uint32, header Header, dir directory) error {
	dirBytes, err := packAny(dir)
	if err != nil {
		return err
	}

	var hdrBuf bytes.Buffer
	if err := header.encode(&hdrBuf); err != nil {
		return err
	}
	headerSize := hdrBuf.Len()

	if headerSize+4+len(dirBytes) > int(pageSize) {
		return fmt.Errorf("module: directory (%d bytes) does not fit in one page of size %d; use a larger --page-size", len(dirBytes), pageSize)
	}

	page := make([]byte, pageSize)
	copy(page, hdrBuf.Bytes())

	off := headerSize
	page[off] = byte(len(dirBytes) >> 24)
	page[off+1] = byte(len(dirBytes) >> 16)
	page[off+2] = byte(len(dirBytes) >> 8)
	page[off+3] = byte(len(dirBytes))
	copy(page[off+4:], dirBytes)

	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("module: seeking to header page: %w", err)
	}
	if _, err := w.Write(page); err != nil {
		return fmt.Errorf("module: writing header page: %w", err)
	}
	return nil
}
