// Package classify implements the anonymous-node structural classification
// pass: it runs once over a finished local module, decomposes the
// graph of anonymous (blank) resources into strongly connected components,
// and assigns each component a canonical group description so that
// structurally identical blank subgraphs produced by independent runs
// receive equal (GroupId, member) pairs.
package classify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rdfkit/inferdf/pkg/inferdf"
)

// GroupId identifies a canonical structural class of mutually recursive
// anonymous resources within one dependency-depth layer.
type GroupId struct {
	Layer uint32
	Index uint32
}

func (g GroupId) String() string { return fmt.Sprintf("group(%d,%d)", g.Layer, g.Index) }

func compareGroupId(a, b GroupId) int {
	if a.Layer != b.Layer {
		return compareUint32(a.Layer, b.Layer)
	}
	return compareUint32(a.Index, b.Index)
}

// Class names the structural identity assigned to a single anonymous
// resource: one member of one group.
type Class struct {
	Group  GroupId
	Member uint32
}

func (c Class) String() string { return fmt.Sprintf("%s#%d", c.Group, c.Member) }

// ReferenceKind discriminates the three shapes a group member's binding may
// point at.
type ReferenceKind uint8

const (
	// ReferenceSingleton names an already-interned, non-anonymous resource.
	ReferenceSingleton ReferenceKind = iota
	// ReferenceClass names a previously classified anonymous resource,
	// necessarily from a strictly lower layer.
	ReferenceClass
	// ReferenceGroup names another member of the same group being built.
	ReferenceGroup
)

// Reference is one side of a group member's (predicate, object) binding.
type Reference struct {
	Kind        ReferenceKind
	Singleton   inferdf.Id
	ClassValue  Class
	GroupMember uint32
}

// SingletonRef builds a Reference to a named (non-anonymous) resource.
func SingletonRef(id inferdf.Id) Reference {
	return Reference{Kind: ReferenceSingleton, Singleton: id}
}

// ClassRef builds a Reference to a previously classified anonymous
// resource.
func ClassRef(c Class) Reference {
	return Reference{Kind: ReferenceClass, ClassValue: c}
}

// GroupRef builds a Reference to another member of the same group.
func GroupRef(member uint32) Reference {
	return Reference{Kind: ReferenceGroup, GroupMember: member}
}

func compareReference(a, b Reference) int {
	if a.Kind != b.Kind {
		return compareUint8(uint8(a.Kind), uint8(b.Kind))
	}
	switch a.Kind {
	case ReferenceSingleton:
		return compareId(a.Singleton, b.Singleton)
	case ReferenceClass:
		if c := compareGroupId(a.ClassValue.Group, b.ClassValue.Group); c != 0 {
			return c
		}
		return compareUint32(a.ClassValue.Member, b.ClassValue.Member)
	default:
		return compareUint32(a.GroupMember, b.GroupMember)
	}
}

// Binding is one signed (predicate, object) property of a group member,
// i.e. one triple the member's resource takes part in with the subject
// position projected away (it is always the member itself).
type Binding struct {
	Sign inferdf.Sign
	A, B Reference
}

func compareBinding(a, b Binding) int {
	if a.Sign != b.Sign {
		if a.Sign == inferdf.Negative {
			return -1
		}
		return 1
	}
	if c := compareReference(a.A, b.A); c != 0 {
		return c
	}
	return compareReference(a.B, b.B)
}

func sortBindings(bindings []Binding) {
	sort.Slice(bindings, func(i, j int) bool {
		return compareBinding(bindings[i], bindings[j]) < 0
	})
}

// Member is one resource's structural description within its group: its
// sorted bindings, with any reference to a sibling member of the same
// group expressed as Group(j) rather than its (not yet assigned) Class.
type Member struct {
	Properties []Binding
}

func compareMember(a, b Member) int {
	n := len(a.Properties)
	if len(b.Properties) < n {
		n = len(b.Properties)
	}
	for i := 0; i < n; i++ {
		if c := compareBinding(a.Properties[i], b.Properties[i]); c != 0 {
			return c
		}
	}
	return compareInt(len(a.Properties), len(b.Properties))
}

// Description is a canonical structural class: a sorted list of members.
// Two isomorphic anonymous subgraphs produce equal Descriptions.
type Description struct {
	Members []Member
}

// CompareDescription totally orders two Descriptions, matching the order
// group descriptions are interned in within a layer. Exported so other
// packages (the module writer's groups-by-description table) can reuse the
// exact same order without duplicating the comparison.
func CompareDescription(a, b Description) int { return compareDescription(a, b) }

func compareDescription(a, b Description) int {
	n := len(a.Members)
	if len(b.Members) < n {
		n = len(b.Members)
	}
	for i := 0; i < n; i++ {
		if c := compareMember(a.Members[i], b.Members[i]); c != 0 {
			return c
		}
	}
	return compareInt(len(a.Members), len(b.Members))
}

func (d Description) key() string {
	parts := make([]string, len(d.Members))
	for i, m := range d.Members {
		bp := make([]string, len(m.Properties))
		for j, b := range m.Properties {
			bp[j] = fmt.Sprintf("%v:%s-%s", b.Sign, refKey(b.A), refKey(b.B))
		}
		parts[i] = strings.Join(bp, ",")
	}
	return strings.Join(parts, ";")
}

func refKey(r Reference) string {
	switch r.Kind {
	case ReferenceSingleton:
		return fmt.Sprintf("S%d", r.Singleton)
	case ReferenceClass:
		return fmt.Sprintf("C%d.%d.%d", r.ClassValue.Group.Layer, r.ClassValue.Group.Index, r.ClassValue.Member)
	default:
		return fmt.Sprintf("G%d", r.GroupMember)
	}
}

// Layer is every group description interned at one dependency-depth.
type Layer struct {
	Groups []Description
}

// Classification is the output of Classify: per-depth layers of group
// descriptions, plus the Class assigned to every anonymous resource.
type Classification struct {
	Layers  []Layer
	Classes map[inferdf.Id]Class
}

// Group returns the description interned at id, if any.
func (c *Classification) Group(id GroupId) (Description, bool) {
	if int(id.Layer) >= len(c.Layers) {
		return Description{}, false
	}
	groups := c.Layers[id.Layer].Groups
	if int(id.Index) >= len(groups) {
		return Description{}, false
	}
	return groups[id.Index], true
}

// ResourceClass returns the Class assigned to id, if it was classified
// (i.e. is anonymous and was scanned by Classify).
func (c *Classification) ResourceClass(id inferdf.Id) (Class, bool) {
	cl, ok := c.Classes[id]
	return cl, ok
}

func compareId(a, b inferdf.Id) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareUint32(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareUint8(a, b uint8) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
