package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rdfkit/inferdf/pkg/builder"
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/pattern"
	"github.com/rdfkit/inferdf/pkg/rule"
	"github.com/rdfkit/inferdf/pkg/vocabulary"
)

// Rule files are the one concrete rule syntax this driver consumes: a
// JSON array of rule specs, each naming its rule by an IRI
// (resolved to a resource id the same way any other term is, so
// Cause.Entailed diagnostics can print the rule by its IRI; see
// cmd/inferdf/print.go) and a tree of forall/exists/conclusion nodes
// mirroring pkg/rule.Formula. There is no grammar beyond this JSON shape;
// pkg/rule.Builder (not this file) is what actually assembles the Rule
// value.
//
//	[
//	  {
//	    "id": "urn:example:transitivity",
//	    "forall": {
//	      "vars": ["x", "y", "z"],
//	      "where": [
//	        {"s": "?x", "p": "urn:example:p", "o": "?y"},
//	        {"s": "?y", "p": "urn:example:p", "o": "?z"}
//	      ],
//	      "then": {
//	        "conclusion": {
//	          "conclude": [{"s": "?x", "p": "urn:example:p", "o": "?z"}]
//	        }
//	      }
//	    }
//	  }
//	]
type ruleSpec struct {
	ID         string       `json:"id"`
	ForAll     *formulaSpec `json:"forall,omitempty"`
	Exists     *formulaSpec `json:"exists,omitempty"`
	Conclusion *formulaSpec `json:"conclusion,omitempty"`
}

// formulaSpec is one node of a rule's formula tree. Exactly one of ForAll,
// Exists or Conclude-bearing shape applies at each level, matching
// pkg/rule.Formula's Kind discriminant.
type formulaSpec struct {
	Vars  []string   `json:"vars,omitempty"`
	Where []atomSpec `json:"where,omitempty"`

	Then *struct {
		ForAll     *formulaSpec `json:"forall,omitempty"`
		Exists     *formulaSpec `json:"exists,omitempty"`
		Conclusion *formulaSpec `json:"conclusion,omitempty"`
	} `json:"then,omitempty"`

	Conclude []atomSpec `json:"conclude,omitempty"`
}

// atomSpec is one hypothesis/constraint/conclusion atom: a triple pattern
// ("s"/"p"/"o"), or an equality ("eq": [a, b]) valid only in "conclude".
// Every term token is either "?name" (a rule variable) or any other string,
// taken as an IRI to intern.
type atomSpec struct {
	Sign string `json:"sign,omitempty"` // "+" (default) or "-"

	S string `json:"s,omitempty"`
	P string `json:"p,omitempty"`
	O string `json:"o,omitempty"`

	Eq []string `json:"eq,omitempty"`

	Trust string `json:"trust,omitempty"` // "trusted" (default) or "untrusted"
}

func (a atomSpec) sign() inferdf.Sign {
	if a.Sign == "-" {
		return inferdf.Negative
	}
	return inferdf.Positive
}

func (a atomSpec) trust() rule.Trust {
	if a.Trust == "untrusted" {
		return rule.Untrusted
	}
	return rule.Trusted
}

// ruleEnv resolves term tokens to pattern slots while a single rule is
// being built, handing out a fresh rule.Variable the first time a "?name"
// token is seen and reusing it afterward.
type ruleEnv struct {
	rb    *rule.Builder
	b     *builder.Builder
	vocab vocabulary.Vocabulary
	vars  map[string]rule.Variable
}

func (e *ruleEnv) term(token string) (pattern.IdOrVar, error) {
	if strings.HasPrefix(token, "?") {
		name := token[1:]
		if name == "" {
			return pattern.IdOrVar{}, fmt.Errorf("empty variable name in %q", token)
		}
		v, ok := e.vars[name]
		if !ok {
			v = e.rb.Var(name)
			e.vars[name] = v
		}
		return pattern.VarOf(v.Index), nil
	}
	if token == "" {
		return pattern.IdOrVar{}, fmt.Errorf("empty term token")
	}
	id := e.b.InsertTerm(inferdf.Iri(e.vocab.InsertIri(token)))
	return pattern.IdOf(id), nil
}

func (e *ruleEnv) declareVars(names []string) []rule.Variable {
	vars := make([]rule.Variable, len(names))
	for i, name := range names {
		v, ok := e.vars[name]
		if !ok {
			v = e.rb.Var(name)
			e.vars[name] = v
		}
		vars[i] = v
	}
	return vars
}

func (e *ruleEnv) hypothesis(atoms []atomSpec) (rule.Hypothesis, error) {
	patterns := make([]inferdf.Signed[pattern.Pattern], len(atoms))
	for i, a := range atoms {
		if len(a.Eq) > 0 {
			return rule.Hypothesis{}, fmt.Errorf("equality atoms are not allowed in a hypothesis")
		}
		s, err := e.term(a.S)
		if err != nil {
			return rule.Hypothesis{}, err
		}
		p, err := e.term(a.P)
		if err != nil {
			return rule.Hypothesis{}, err
		}
		o, err := e.term(a.O)
		if err != nil {
			return rule.Hypothesis{}, err
		}
		patterns[i] = inferdf.NewSigned(a.sign(), pattern.New(s, p, o))
	}
	return rule.NewHypothesis(patterns...), nil
}

func (e *ruleEnv) conclusionStatements(atoms []atomSpec) ([]rule.MaybeTrusted[inferdf.Signed[rule.StatementPattern]], error) {
	out := make([]rule.MaybeTrusted[inferdf.Signed[rule.StatementPattern]], len(atoms))
	for i, a := range atoms {
		var sp rule.StatementPattern
		if len(a.Eq) > 0 {
			if len(a.Eq) != 2 {
				return nil, fmt.Errorf(`"eq" must name exactly two terms`)
			}
			left, err := e.term(a.Eq[0])
			if err != nil {
				return nil, err
			}
			right, err := e.term(a.Eq[1])
			if err != nil {
				return nil, err
			}
			sp = rule.EqOf(left, right)
		} else {
			s, err := e.term(a.S)
			if err != nil {
				return nil, err
			}
			p, err := e.term(a.P)
			if err != nil {
				return nil, err
			}
			o, err := e.term(a.O)
			if err != nil {
				return nil, err
			}
			sp = rule.TripleOf(pattern.New(s, p, o))
		}
		out[i] = rule.NewMaybeTrusted(inferdf.NewSigned(a.sign(), sp), a.trust())
	}
	return out, nil
}

func (e *ruleEnv) formula(spec *formulaSpec, kind string) (rule.Formula, error) {
	switch kind {
	case "forall":
		vars := e.declareVars(spec.Vars)
		constraints, err := e.hypothesis(spec.Where)
		if err != nil {
			return rule.Formula{}, err
		}
		inner, err := e.thenFormula(spec.Then)
		if err != nil {
			return rule.Formula{}, err
		}
		return rule.ForAllOf(vars, constraints, inner), nil

	case "exists":
		vars := e.declareVars(spec.Vars)
		hyp, err := e.hypothesis(spec.Where)
		if err != nil {
			return rule.Formula{}, err
		}
		inner, err := e.thenFormula(spec.Then)
		if err != nil {
			return rule.Formula{}, err
		}
		return rule.ExistsOf(vars, hyp, inner), nil

	default: // "conclusion"
		vars := e.declareVars(spec.Vars)
		statements, err := e.conclusionStatements(spec.Conclude)
		if err != nil {
			return rule.Formula{}, err
		}
		return rule.ConclusionOf(rule.NewConclusion(vars, statements...)), nil
	}
}

func (e *ruleEnv) thenFormula(then *struct {
	ForAll     *formulaSpec `json:"forall,omitempty"`
	Exists     *formulaSpec `json:"exists,omitempty"`
	Conclusion *formulaSpec `json:"conclusion,omitempty"`
}) (rule.Formula, error) {
	if then == nil {
		return rule.Formula{}, fmt.Errorf(`quantifier is missing its "then" continuation`)
	}
	switch {
	case then.ForAll != nil:
		return e.formula(then.ForAll, "forall")
	case then.Exists != nil:
		return e.formula(then.Exists, "exists")
	case then.Conclusion != nil:
		return e.formula(then.Conclusion, "conclusion")
	default:
		return rule.Formula{}, fmt.Errorf(`"then" names neither "forall", "exists" nor "conclusion"`)
	}
}

// loadRuleFile parses one semantics file and builds every rule it names,
// interning each rule's naming IRI and every IRI term its patterns mention
// into b's vocabulary and interpretation, lowering the textual encoding
// into the structured rule values the engine evaluates.
func loadRuleFile(path string, vocab vocabulary.Vocabulary, b *builder.Builder) ([]rule.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading semantics file %s: %w", path, err)
	}

	var specs []ruleSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parsing semantics file %s: %w", path, err)
	}

	rules := make([]rule.Rule, 0, len(specs))
	for i, spec := range specs {
		if spec.ID == "" {
			return nil, fmt.Errorf("%s: rule %d has no \"id\"", path, i)
		}
		id := b.InsertTerm(inferdf.Iri(vocab.InsertIri(spec.ID)))

		rb := rule.NewBuilder()
		env := &ruleEnv{rb: rb, b: b, vocab: vocab, vars: make(map[string]rule.Variable)}

		var formula rule.Formula
		switch {
		case spec.ForAll != nil:
			formula, err = env.formula(spec.ForAll, "forall")
		case spec.Exists != nil:
			formula, err = env.formula(spec.Exists, "exists")
		case spec.Conclusion != nil:
			formula, err = env.formula(spec.Conclusion, "conclusion")
		default:
			err = fmt.Errorf("rule %q names neither \"forall\", \"exists\" nor \"conclusion\"", spec.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: rule %q: %w", path, spec.ID, err)
		}

		r, err := rb.Build(id, formula)
		if err != nil {
			return nil, fmt.Errorf("%s: rule %q: %w", path, spec.ID, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}
