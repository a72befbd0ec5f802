package module

import (
	"container/list"
	"errors"
)

// ErrPageCacheBusy is returned when the cache is full and every page that
// could be evicted is currently borrowed: eviction must never invalidate
// a page a caller is mid-iteration over.
var ErrPageCacheBusy = errors.New("module: page cache full, every evictable page is borrowed")

// pageKey identifies one decoded page of one table within the module.
type pageKey struct {
	table tableKind
	page  uint32
}

type tableKind uint8

const (
	tableIri tableKind = iota
	tableLiteral
	tableResource
	tableGraphResource
	tableGraphFact
	tableGroupsByID
	tableGroupsByDescription
	tableRepresentative
)

type cacheEntry struct {
	key    pageKey
	value  any
	borrow int
}

// pageCache is a bounded, borrow-aware LRU of decoded table pages: a
// recency list (container/list) plus an index from key to list element,
// where eviction walks from the least-recently-used end and skips any
// entry whose borrow count is nonzero instead of evicting it outright.
//
// hashicorp/golang-lru/v2 was considered first, but its Add only exposes
// an eviction *notification* (onEvict), not a veto: a full cache always
// evicts its actual least-recently-used entry, with no way to skip over a
// busy one and evict the next candidate instead. Borrow refusal needs
// exactly that hook, so this cache is a small hand-rolled structure over
// container/list instead (see DESIGN.md).
type pageCache struct {
	capacity int
	order    *list.List // front = most recently used
	index    map[pageKey]*list.Element
}

func newPageCache(capacity int) *pageCache {
	if capacity < 1 {
		capacity = 1
	}
	return &pageCache{capacity: capacity, order: list.New(), index: make(map[pageKey]*list.Element)}
}

// Borrow returns the decoded page for key, invoking load to decode it on a
// cache miss, and marks it borrowed. Every successful Borrow must be
// matched by a Release.
func (c *pageCache) Borrow(key pageKey, load func() (any, error)) (any, error) {
	if el, ok := c.index[key]; ok {
		c.order.MoveToFront(el)
		e := el.Value.(*cacheEntry)
		e.borrow++
		return e.value, nil
	}

	if len(c.index) >= c.capacity {
		if !c.evictOne() {
			return nil, ErrPageCacheBusy
		}
	}

	v, err := load()
	if err != nil {
		return nil, err
	}
	e := &cacheEntry{key: key, value: v, borrow: 1}
	el := c.order.PushFront(e)
	c.index[key] = el
	return v, nil
}

// Release decrements key's borrow count. A key that is no longer cached is
// ignored; eviction skips borrowed entries, so that only happens on an
// unbalanced Release.
func (c *pageCache) Release(key pageKey) {
	el, ok := c.index[key]
	if !ok {
		return
	}
	e := el.Value.(*cacheEntry)
	if e.borrow > 0 {
		e.borrow--
	}
}

// evictOne removes the least-recently-used entry with a zero borrow count,
// scanning from the back of the recency list, and reports whether one was
// found.
func (c *pageCache) evictOne() bool {
	for el := c.order.Back(); el != nil; el = el.Prev() {
		e := el.Value.(*cacheEntry)
		if e.borrow == 0 {
			c.order.Remove(el)
			delete(c.index, e.key)
			return true
		}
	}
	return false
}
