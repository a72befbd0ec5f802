package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rdfkit/inferdf/pkg/builder"
	"github.com/rdfkit/inferdf/pkg/inference"
	"github.com/rdfkit/inferdf/pkg/vocabulary"
)

func writeSemantics(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadRuleFileTransitivity(t *testing.T) {
	path := writeSemantics(t, `[
	  {
	    "id": "urn:example:transitivity",
	    "forall": {
	      "vars": ["x", "y", "z"],
	      "where": [
	        {"s": "?x", "p": "urn:example:p", "o": "?y"},
	        {"s": "?y", "p": "urn:example:p", "o": "?z"}
	      ],
	      "then": {
	        "conclusion": {
	          "conclude": [{"s": "?x", "p": "urn:example:p", "o": "?z"}]
	        }
	      }
	    }
	  }
	]`)

	vocab := vocabulary.NewMemory()
	b := builder.New(inference.NewSystem())

	rules, err := loadRuleFile(path, vocab, b)
	require.NoError(t, err)
	require.Len(t, rules, 1)
}

func TestLoadRuleFileEquality(t *testing.T) {
	path := writeSemantics(t, `[
	  {
	    "id": "urn:example:sameAs",
	    "exists": {
	      "vars": ["x", "y", "v"],
	      "where": [
	        {"s": "?x", "p": "urn:example:p", "o": "?v"},
	        {"s": "?y", "p": "urn:example:p", "o": "?v"}
	      ],
	      "then": {
	        "conclusion": {
	          "conclude": [{"eq": ["?x", "?y"]}]
	        }
	      }
	    }
	  }
	]`)

	vocab := vocabulary.NewMemory()
	b := builder.New(inference.NewSystem())

	rules, err := loadRuleFile(path, vocab, b)
	require.NoError(t, err)
	require.Len(t, rules, 1)
}

func TestLoadRuleFileRejectsMissingID(t *testing.T) {
	path := writeSemantics(t, `[{"conclusion": {"conclude": []}}]`)

	vocab := vocabulary.NewMemory()
	b := builder.New(inference.NewSystem())

	_, err := loadRuleFile(path, vocab, b)
	require.Error(t, err)
}

func TestLoadRuleFileRejectsEqInHypothesis(t *testing.T) {
	path := writeSemantics(t, `[
	  {
	    "id": "urn:example:bad",
	    "forall": {
	      "vars": ["x", "y"],
	      "where": [{"eq": ["?x", "?y"]}],
	      "then": {"conclusion": {"conclude": []}}
	    }
	  }
	]`)

	vocab := vocabulary.NewMemory()
	b := builder.New(inference.NewSystem())

	_, err := loadRuleFile(path, vocab, b)
	require.Error(t, err)
}
