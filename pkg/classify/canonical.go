package classify

import (
	"sort"
	"strings"
)

// permutationSearchCap bounds the brute-force tie-break search below: the
// product of factorial(class size) over every colour class tied after
// refinement. Full individualization-refinement canonical labelling is
// overkill here (see DESIGN.md); this package instead refines colours with
// the standard 1-WL pass and only falls back to exhaustive permutation
// search within classes that refinement could not separate, which is
// exact for every structure this engine is expected to see and bounded
// for the rest.
const permutationSearchCap = 720 // 6!

// canonicalize picks, among every relabelling of members that respects the
// colour-refinement partition, the one whose resulting Description is
// lexicographically smallest, and returns it together with the
// final-index -> original-index permutation (so the caller can map each
// member's originating resource id to its assigned member index).
func canonicalize(members []Member) (Description, []int) {
	n := len(members)
	if n == 0 {
		return Description{}, nil
	}

	neighbors := buildNeighbors(members)
	colors := refineColors(initialColors(members), neighbors)

	unique := uniqueSorted(colors)
	rankOf := make(map[string]int, len(unique))
	for i, c := range unique {
		rankOf[c] = i
	}

	groups := make([][]int, len(unique))
	for i, c := range colors {
		r := rankOf[c]
		groups[r] = append(groups[r], i)
	}
	for _, g := range groups {
		sort.Ints(g)
	}

	slotStart := make([]int, len(groups))
	s := 0
	for i, g := range groups {
		slotStart[i] = s
		s += len(g)
	}

	total := 1
	exceeded := false
	for _, g := range groups {
		total *= factorial(len(g))
		if total > permutationSearchCap {
			exceeded = true
			break
		}
	}

	var assignment []int
	if exceeded {
		assignment = make([]int, n)
		for gi, g := range groups {
			for k, orig := range g {
				assignment[orig] = slotStart[gi] + k
			}
		}
	} else {
		assignment = bestPermutation(members, groups, slotStart)
	}

	desc := buildDescription(members, assignment)
	invPerm := make([]int, n)
	for orig, final := range assignment {
		invPerm[final] = orig
	}
	return desc, invPerm
}

func buildNeighbors(members []Member) [][]int {
	neighbors := make([][]int, len(members))
	for i, m := range members {
		seen := make(map[int]bool)
		for _, b := range m.Properties {
			if b.A.Kind == ReferenceGroup {
				seen[int(b.A.GroupMember)] = true
			}
			if b.B.Kind == ReferenceGroup {
				seen[int(b.B.GroupMember)] = true
			}
		}
		ns := make([]int, 0, len(seen))
		for j := range seen {
			ns = append(ns, j)
		}
		sort.Ints(ns)
		neighbors[i] = ns
	}
	return neighbors
}

// initialColors assigns each member a colour from its own bindings alone,
// masking any Group(j) reference down to an anonymous "sibling" marker so
// that the initial colouring depends only on shape, not on the arbitrary
// order members were discovered in.
func initialColors(members []Member) []string {
	colors := make([]string, len(members))
	for i, m := range members {
		parts := make([]string, len(m.Properties))
		for j, b := range m.Properties {
			parts[j] = maskedBindingKey(b)
		}
		sort.Strings(parts)
		colors[i] = strings.Join(parts, ";")
	}
	return colors
}

func maskedBindingKey(b Binding) string {
	sign := "0"
	if b.Sign {
		sign = "1"
	}
	return sign + ":" + maskedRefKey(b.A) + "," + maskedRefKey(b.B)
}

func maskedRefKey(r Reference) string {
	switch r.Kind {
	case ReferenceSingleton:
		return "S" + itoa(uint32(r.Singleton))
	case ReferenceClass:
		return "C" + itoa(r.ClassValue.Group.Layer) + "." + itoa(r.ClassValue.Group.Index) + "." + itoa(r.ClassValue.Member)
	default:
		return "G"
	}
}

// refineColors runs standard colour refinement (1-WL): each round, a
// member's colour is extended with the sorted multiset of its neighbours'
// current colours, stopping once the number of distinct colours stops
// growing (the partition is then equitable).
func refineColors(colors []string, neighbors [][]int) []string {
	for iter := 0; iter <= len(colors); iter++ {
		next := make([]string, len(colors))
		for i := range colors {
			nb := make([]string, len(neighbors[i]))
			for k, j := range neighbors[i] {
				nb[k] = colors[j]
			}
			sort.Strings(nb)
			next[i] = colors[i] + "#" + strings.Join(nb, ",")
		}
		if distinctCount(next) == distinctCount(colors) {
			return next
		}
		colors = next
	}
	return colors
}

func distinctCount(s []string) int {
	seen := make(map[string]struct{}, len(s))
	for _, v := range s {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func uniqueSorted(colors []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range colors {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// bestPermutation tries every permutation of members within each tied
// colour class (the classes are independent, so the search is their
// Cartesian product) and keeps the assignment whose resulting Description
// is lexicographically smallest. Called only when the combined search
// space is within permutationSearchCap.
func bestPermutation(members []Member, groups [][]int, slotStart []int) []int {
	n := len(members)
	assignment := make([]int, n)
	var best []int
	var bestDesc Description
	haveBest := false

	var rec func(gi int)
	rec = func(gi int) {
		if gi == len(groups) {
			desc := buildDescription(members, assignment)
			if !haveBest || compareDescription(desc, bestDesc) < 0 {
				bestDesc = desc
				best = append([]int(nil), assignment...)
				haveBest = true
			}
			return
		}
		group := groups[gi]
		start := slotStart[gi]
		permute(group, func(p []int) {
			for k, orig := range p {
				assignment[orig] = start + k
			}
			rec(gi + 1)
		})
	}
	rec(0)

	if !haveBest {
		return assignment
	}
	return best
}

// permute calls cb with every ordering of items (Heap-free recursive
// swap-based generation), leaving items restored to its original order
// once permute returns.
func permute(items []int, cb func([]int)) {
	buf := append([]int(nil), items...)
	n := len(buf)
	var rec func(k int)
	rec = func(k int) {
		if k == n {
			cb(buf)
			return
		}
		for i := k; i < n; i++ {
			buf[k], buf[i] = buf[i], buf[k]
			rec(k + 1)
			buf[k], buf[i] = buf[i], buf[k]
		}
	}
	rec(0)
}

func buildDescription(members []Member, assignment []int) Description {
	out := make([]Member, len(members))
	for orig, final := range assignment {
		props := make([]Binding, len(members[orig].Properties))
		for i, b := range members[orig].Properties {
			a, bb := b.A, b.B
			if a.Kind == ReferenceGroup {
				a = GroupRef(uint32(assignment[a.GroupMember]))
			}
			if bb.Kind == ReferenceGroup {
				bb = GroupRef(uint32(assignment[bb.GroupMember]))
			}
			props[i] = Binding{Sign: b.Sign, A: a, B: bb}
		}
		sortBindings(props)
		out[final] = Member{Properties: props}
	}
	return Description{Members: out}
}

func factorial(n int) int {
	f := 1
	for i := 2; i <= n; i++ {
		f *= i
	}
	return f
}

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
