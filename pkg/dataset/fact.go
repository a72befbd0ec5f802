// Package dataset implements the signed, per-graph triple store: a
// default graph plus zero or more named graphs, each independently indexed
// by resource for pattern matching, with contradiction detection on sign
// clash.
package dataset

import "github.com/rdfkit/inferdf/pkg/inferdf"

// Fact is a stored, signed triple together with why it holds.
type Fact struct {
	Sign    inferdf.Sign
	Triple  inferdf.Triple
	Cause   inferdf.Cause
}

func newFact(sign inferdf.Sign, t inferdf.Triple, cause inferdf.Cause) Fact {
	return Fact{Sign: sign, Triple: t, Cause: cause}
}

// Signed returns the fact's sign and triple as a Signed value.
func (f Fact) Signed() inferdf.Signed[inferdf.Triple] {
	return inferdf.NewSigned(f.Sign, f.Triple)
}

// ReplaceId rewrites occurrences of from in the fact's triple to to.
func (f *Fact) ReplaceId(to, from inferdf.Id) {
	f.Triple.ReplaceId(to, from)
}
