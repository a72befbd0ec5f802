package dataset

// factSlab is a dense store of facts with O(1) removal via a free list,
// indexed by a stable uint32 handle. It is the interpretation package's
// reservable slab minus reservation support; fact indices are never
// speculatively allocated.
type factSlab struct {
	items []factSlot
	head  uint32
	len   int
}

type factSlot struct {
	occupied bool
	value    Fact
	nextFree uint32
}

func newFactSlab() *factSlab { return &factSlab{} }

func (s *factSlab) Len() int { return s.len }

func (s *factSlab) Get(i uint32) (Fact, bool) {
	if int(i) >= len(s.items) || !s.items[i].occupied {
		return Fact{}, false
	}
	return s.items[i].value, true
}

func (s *factSlab) Insert(f Fact) uint32 {
	i := s.head
	if int(i) < len(s.items) {
		next := s.items[i].nextFree
		s.items[i] = factSlot{occupied: true, value: f}
		s.head = next
	} else {
		s.items = append(s.items, factSlot{occupied: true, value: f})
		s.head = uint32(len(s.items))
	}
	s.len++
	return i
}

func (s *factSlab) Remove(i uint32) (Fact, bool) {
	if int(i) >= len(s.items) || !s.items[i].occupied {
		return Fact{}, false
	}
	v := s.items[i].value
	s.items[i] = factSlot{occupied: false, nextFree: s.head}
	s.head = i
	s.len--
	return v, true
}

// Iter calls f for every occupied slot, ascending by index.
func (s *factSlab) Iter(f func(i uint32, v Fact) bool) {
	for i := range s.items {
		if s.items[i].occupied {
			if !f(uint32(i), s.items[i].value) {
				return
			}
		}
	}
}
