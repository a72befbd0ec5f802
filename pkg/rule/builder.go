package rule

import "github.com/rdfkit/inferdf/pkg/inferdf"

// Builder assembles a rule programmatically, handing out dense variable
// indices so callers never have to track them by hand. There is no textual
// rule syntax to parse here;
// Builder is the sole construction path.
type Builder struct {
	next int
}

// NewBuilder returns a rule builder with no variables allocated yet.
func NewBuilder() *Builder { return &Builder{} }

// Var allocates a fresh variable. name may be empty.
func (b *Builder) Var(name string) Variable {
	v := Variable{Index: b.next, Name: name}
	b.next++
	return v
}

// Vars allocates n fresh, unnamed variables.
func (b *Builder) Vars(n int) []Variable {
	out := make([]Variable, n)
	for i := range out {
		out[i] = b.Var("")
	}
	return out
}

// Build finishes the rule with the given id and top-level formula, checking
// that no variable index is declared by more than one quantifier (shadowing
// would make substitution ambiguous: the inner quantifier's binding would
// silently clobber the outer one's).
func (b *Builder) Build(id inferdf.Id, formula Formula) (Rule, error) {
	seen := make(map[int]struct{})
	var dup error
	formula.VisitDeclaredVariables(func(x int) {
		if dup != nil {
			return
		}
		if _, ok := seen[x]; ok {
			dup = inferdf.InvalidRule{Reason: "variable declared by more than one quantifier"}
			return
		}
		seen[x] = struct{}{}
	})
	if dup != nil {
		return Rule{}, dup
	}
	return New(id, formula), nil
}
