package interpretation

import "github.com/rdfkit/inferdf/pkg/inferdf"

// slabItem is either a live resource or a free-list link to the next
// vacant slot.
type slabItem struct {
	occupied bool
	value    *Resource
	nextFree int
}

// reservableSlab is a dense append-only-by-default store of resources
// with O(1) removal via an internal free list. Its defining feature is
// `BeginReservation`: a view that
// can mint new ids from a local counter without touching the slab until
// committed, so speculative existentials invented during rule search never
// pollute the interpretation on a dead search branch.
type reservableSlab struct {
	items []slabItem
	head  int
	len   int
}

func newReservableSlab() *reservableSlab {
	return &reservableSlab{}
}

func (s *reservableSlab) Len() int { return s.len }

func (s *reservableSlab) Get(i int) (*Resource, bool) {
	if i < 0 || i >= len(s.items) || !s.items[i].occupied {
		return nil, false
	}
	return s.items[i].value, true
}

func (s *reservableSlab) Insert(v *Resource) int {
	i := s.head
	if i < len(s.items) {
		next := s.items[i].nextFree
		s.items[i] = slabItem{occupied: true, value: v}
		s.head = next
	} else {
		s.items = append(s.items, slabItem{occupied: true, value: v})
		s.head = len(s.items)
	}
	s.len++
	return i
}

func (s *reservableSlab) Remove(i int) (*Resource, bool) {
	if i < 0 || i >= len(s.items) || !s.items[i].occupied {
		return nil, false
	}
	v := s.items[i].value
	s.items[i] = slabItem{occupied: false, nextFree: s.head}
	s.head = i
	s.len--
	return v, true
}

// Iter calls f for every occupied slot, in ascending index order.
func (s *reservableSlab) Iter(f func(i int, v *Resource) bool) {
	for i := range s.items {
		if s.items[i].occupied {
			if !f(i, s.items[i].value) {
				return
			}
		}
	}
}

// BeginReservation returns a speculative append-only view of the slab: ids
// are minted from a local counter, and are only copied into the real slab
// on Commit.
func (s *reservableSlab) BeginReservation() *Reservation {
	return &Reservation{slab: s, head: s.head}
}

// Reservation is a two-phase-commit handle for speculative resource
// allocation. Ids yielded by a reservation must not be
// exposed outside the search that opened it before Commit is called.
type Reservation struct {
	slab     *reservableSlab
	head     int
	newItems []*Resource
	newIdx   []int
	done     bool
}

// NewResource mints a fresh, as-yet-uncommitted resource id.
func (r *Reservation) NewResource() inferdf.Id {
	i := r.head
	if r.head < len(r.slab.items) {
		r.head = r.slab.items[r.head].nextFree
	} else {
		r.head++
	}
	r.newItems = append(r.newItems, NewResource())
	r.newIdx = append(r.newIdx, i)
	return inferdf.Id(i)
}

// Commit appends every reserved resource into the underlying slab at its
// reserved index. It must be called at most once; after Commit (or if the
// reservation is simply dropped) the Reservation must not be reused.
func (r *Reservation) Commit() error {
	if r.done {
		return nil
	}
	r.done = true
	for k, v := range r.newItems {
		if got := r.slab.Insert(v); got != r.newIdx[k] {
			return errInvalidReservation
		}
	}
	return nil
}

// Discard abandons the reservation: no ids are appended to the slab. This
// is the common case when a rule-search branch fails.
func (r *Reservation) Discard() {
	r.done = true
	r.newItems = nil
	r.newIdx = nil
}
