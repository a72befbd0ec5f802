package pattern

import "github.com/rdfkit/inferdf/pkg/inferdf"

// SubjectKind discriminates a canonical pattern's subject slot.
type SubjectKind uint8

const (
	SubjectAny SubjectKind = iota
	SubjectGiven
)

// PredicateKind discriminates a canonical pattern's predicate slot, folding
// in the "same variable as the subject" case so the index can special-case
// reflexive triples without a separate substitution check.
type PredicateKind uint8

const (
	PredicateAny PredicateKind = iota
	PredicateSameAsSubject
	PredicateGiven
)

// ObjectKind discriminates a canonical pattern's object slot.
type ObjectKind uint8

const (
	ObjectAny ObjectKind = iota
	ObjectSameAsSubject
	ObjectSameAsPredicate
	ObjectGiven
)

// Canonical is the indexable shape of a pattern: a triple pattern
// normalized so that repeated variables are recorded as relations between
// slots ("object same as subject") rather than as raw variable indices.
// Two patterns with differently-numbered but structurally identical
// variables collapse to the same Canonical, which is what lets the
// resource-indexed matching in the dataset package and the rule dispatch in
// Bipolar key on it directly.
type Canonical struct {
	SubjectKind SubjectKind
	SubjectId   inferdf.Id

	PredicateKind PredicateKind
	PredicateId   inferdf.Id

	ObjectKind ObjectKind
	ObjectId   inferdf.Id
}

// FromTriple builds the (fully given) canonical shape of a concrete triple.
func FromTriple(t inferdf.Triple) Canonical {
	return Canonical{
		SubjectKind: SubjectGiven, SubjectId: t.Subject,
		PredicateKind: PredicateGiven, PredicateId: t.Predicate,
		ObjectKind: ObjectGiven, ObjectId: t.Object,
	}
}

// FromOptionTriple builds a canonical pattern from three optionally-given
// ids (nil meaning "any"), used when a concrete pattern (no variables) is
// constructed directly rather than derived from a Pattern.
func FromOptionTriple(s, p, o *inferdf.Id) Canonical {
	var c Canonical
	if s != nil {
		c.SubjectKind, c.SubjectId = SubjectGiven, *s
	}
	if p != nil {
		c.PredicateKind, c.PredicateId = PredicateGiven, *p
	} else {
		c.PredicateKind = PredicateAny
	}
	if o != nil {
		c.ObjectKind, c.ObjectId = ObjectGiven, *o
	} else {
		c.ObjectKind = ObjectAny
	}
	return c
}

// FromPattern derives the canonical shape of p: each variable slot is
// compared against every variable slot to its left to detect repetition.
func FromPattern(p Pattern) Canonical {
	var c Canonical

	subjectIsVar, subjectVar := p.Subject.IsVar(), p.Subject.Var()
	if subjectIsVar {
		c.SubjectKind = SubjectAny
	} else {
		c.SubjectKind, c.SubjectId = SubjectGiven, p.Subject.Id()
	}

	predicateIsVar, predicateVar := p.Predicate.IsVar(), p.Predicate.Var()
	switch {
	case !predicateIsVar:
		c.PredicateKind, c.PredicateId = PredicateGiven, p.Predicate.Id()
	case subjectIsVar && predicateVar == subjectVar:
		c.PredicateKind = PredicateSameAsSubject
	default:
		c.PredicateKind = PredicateAny
	}

	if p.Object.IsVar() {
		ov := p.Object.Var()
		switch {
		case subjectIsVar && ov == subjectVar:
			c.ObjectKind = ObjectSameAsSubject
		case predicateIsVar && ov == predicateVar:
			c.ObjectKind = ObjectSameAsPredicate
		default:
			c.ObjectKind = ObjectAny
		}
	} else {
		c.ObjectKind, c.ObjectId = ObjectGiven, p.Object.Id()
	}

	return c
}

// ToPattern expands a canonical shape back into a Pattern using fresh
// variable indices 0 (subject), 1 (predicate), 2 (object) wherever the
// shape says "any"; same-as relations reuse the earlier slot's index.
func (c Canonical) ToPattern() Pattern {
	s := VarOf(0)
	if c.SubjectKind == SubjectGiven {
		s = IdOf(c.SubjectId)
	}

	var p IdOrVar
	switch c.PredicateKind {
	case PredicateGiven:
		p = IdOf(c.PredicateId)
	case PredicateSameAsSubject:
		p = VarOf(0)
	default:
		p = VarOf(1)
	}

	var o IdOrVar
	switch c.ObjectKind {
	case ObjectGiven:
		o = IdOf(c.ObjectId)
	case ObjectSameAsSubject:
		o = VarOf(0)
	case ObjectSameAsPredicate:
		o = VarOf(1)
	default:
		o = VarOf(2)
	}

	return Pattern{s, p, o}
}

// SubjectID returns the subject's fixed id, if the subject slot is given.
func (c Canonical) SubjectID() (inferdf.Id, bool) {
	if c.SubjectKind == SubjectGiven {
		return c.SubjectId, true
	}
	return 0, false
}

// PredicateID returns the predicate's fixed id, if the predicate slot is
// given.
func (c Canonical) PredicateID() (inferdf.Id, bool) {
	if c.PredicateKind == PredicateGiven {
		return c.PredicateId, true
	}
	return 0, false
}

// ObjectID returns the object's fixed id, if the object slot is given.
func (c Canonical) ObjectID() (inferdf.Id, bool) {
	if c.ObjectKind == ObjectGiven {
		return c.ObjectId, true
	}
	return 0, false
}

// FilterPredicate reports whether t's predicate satisfies the canonical
// predicate constraint (used after an index lookup has already narrowed
// candidates by subject/predicate/object resource, to re-check the
// same-as relations the index does not encode).
func (c Canonical) FilterPredicate(t inferdf.Triple) bool {
	switch c.PredicateKind {
	case PredicateAny:
		return true
	case PredicateSameAsSubject:
		return t.Predicate == t.Subject
	default:
		return t.Predicate == c.PredicateId
	}
}

// FilterObject reports whether t's object satisfies the canonical object
// constraint.
func (c Canonical) FilterObject(t inferdf.Triple) bool {
	switch c.ObjectKind {
	case ObjectAny:
		return true
	case ObjectSameAsSubject:
		return t.Object == t.Subject
	case ObjectSameAsPredicate:
		return t.Object == t.Predicate
	default:
		return t.Object == c.ObjectId
	}
}

// Filter reports whether t matches every constraint the canonical shape
// carries beyond the index lookup itself (i.e. the same-as relations and,
// redundantly, the given ids).
func (c Canonical) Filter(t inferdf.Triple) bool {
	if sid, ok := c.SubjectID(); ok && t.Subject != sid {
		return false
	}
	return c.FilterPredicate(t) && c.FilterObject(t)
}
