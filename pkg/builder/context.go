package builder

import (
	"github.com/rdfkit/inferdf/pkg/inference"
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/interpretation"
	"github.com/rdfkit/inferdf/pkg/pattern"
)

// builderContext adapts a Builder to inference.Context: pattern matching
// combines the builder's own dataset with every registered dependency,
// translating dependency-space matches back into local id space.
type builderContext struct {
	b *Builder
}

var _ inference.Context = (*builderContext)(nil)

// PatternMatching implements inference.Context.
func (c *builderContext) PatternMatching(p inferdf.Signed[pattern.Pattern]) ([]inferdf.Triple, error) {
	canonical := pattern.FromPattern(p.Value)
	signed := inferdf.NewSigned(p.Sign, canonical)

	var out []inferdf.Triple
	for _, m := range c.b.dataset.SignedQuadMatching(signed) {
		out = append(out, m.Fact.Triple)
	}

	for _, d := range c.b.interp.Dependencies() {
		dep := c.b.deps[d]
		for _, depPattern := range c.b.interp.DependencyPatterns(d, canonical) {
			facts, err := dep.SignedQuadMatching(inferdf.NewSigned(p.Sign, depPattern))
			if err != nil {
				return nil, err
			}
			for _, f := range facts {
				out = append(out, c.b.interp.ImportTriple(d, f.Triple))
			}
		}
	}
	return out, nil
}

// Resources implements inference.Context.
func (c *builderContext) Resources() []inferdf.Id {
	var out []inferdf.Id
	c.b.interp.Iter(func(id inferdf.Id, _ *interpretation.Resource) bool {
		out = append(out, id)
		return true
	})
	return out
}

// NewResource implements inference.Context.
func (c *builderContext) NewResource() inferdf.Id {
	return c.b.interp.NewResource()
}

// BeginReservation implements inference.Context.
func (c *builderContext) BeginReservation() inference.Reservation {
	return c.b.interp.BeginReservation()
}
