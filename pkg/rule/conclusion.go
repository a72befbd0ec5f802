package rule

import "github.com/rdfkit/inferdf/pkg/inferdf"

// Conclusion is the terminal part of a rule formula: variables it
// introduces that are not otherwise bound (instantiated to fresh resources
// when the conclusion fires) plus the statements it asserts.
type Conclusion struct {
	Variables  []Variable
	Statements []MaybeTrusted[inferdf.Signed[StatementPattern]]
}

// NewConclusion builds a conclusion.
func NewConclusion(variables []Variable, statements...MaybeTrusted[inferdf.Signed[StatementPattern]]) Conclusion {
	return Conclusion{Variables: variables, Statements: statements}
}

// TrustedStatement is a convenience constructor for a statement that should be
// asserted outright once its conclusion fires.
func TrustedStatement(sign inferdf.Sign, s StatementPattern) MaybeTrusted[inferdf.Signed[StatementPattern]] {
	return NewMaybeTrusted(inferdf.NewSigned(sign, s), Trusted)
}

// UntrustedStatement is a convenience constructor for a statement subject to
// dependency filtering before it is asserted.
func UntrustedStatement(sign inferdf.Sign, s StatementPattern) MaybeTrusted[inferdf.Signed[StatementPattern]] {
	return NewMaybeTrusted(inferdf.NewSigned(sign, s), Untrusted)
}
