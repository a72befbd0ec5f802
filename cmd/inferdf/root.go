package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/rdfkit/inferdf/internal/nquads"
	"github.com/rdfkit/inferdf/pkg/builder"
	"github.com/rdfkit/inferdf/pkg/classify"
	"github.com/rdfkit/inferdf/pkg/inference"
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/module"
	"github.com/rdfkit/inferdf/pkg/vocabulary"
)

type cliFlags struct {
	semantics []string
	output    string
	pageSize  uint32
	debug     int
}

func newRootCmd() *cobra.Command {
	flags := &cliFlags{}

	cmd := &cobra.Command{
		Use:   "inferdf [inputs...]",
		Short: "Build a paged BRDF module from N-Quads input and inference rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, flags)
		},
	}

	cmd.Flags().StringArrayVarP(&flags.semantics, "semantics", "s", nil, "rule file (repeatable)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "out.brdf", "output module path")
	cmd.Flags().Uint32Var(&flags.pageSize, "page-size", module.DefaultPageSize, "output page size in bytes")
	cmd.Flags().CountVarP(&flags.debug, "debug", "d", "increase logging verbosity (repeatable)")

	return cmd
}

func run(cmd *cobra.Command, inputs []string, flags *cliFlags) error {
	log := hclog.New(&hclog.LoggerOptions{
		Name:  "inferdf.cli",
		Level: verbosityLevel(flags.debug),
		Color: hclog.AutoColor,
	})

	runID := uuid.NewString()
	log.Debug("starting run", "run_id", runID, "inputs", len(inputs), "semantics", len(flags.semantics))

	if flags.pageSize < module.MinPageSize || flags.pageSize%module.MinPageSize != 0 {
		return fmt.Errorf("--page-size %d must be a positive multiple of %d", flags.pageSize, module.MinPageSize)
	}

	vocab := vocabulary.NewMemory()
	system := inference.NewSystem()
	b := builder.New(system)
	b.SetLogger(log.Named("builder"))

	for _, path := range flags.semantics {
		rules, err := loadRuleFile(path, vocab, b)
		if err != nil {
			return err
		}
		for _, r := range rules {
			system.Insert(r)
		}
		log.Debug("loaded semantics file", "path", path, "rules", len(rules))
	}

	for fileIdx, path := range inputs {
		if err := ingestFile(log, b, vocab, fileIdx, path); err != nil {
			return err
		}
	}

	if err := b.Check(); err != nil {
		if ms, ok := err.(inferdf.MissingStatement); ok {
			printMissingStatement(cmd, b, vocab, ms)
			return ms
		}
		return err
	}

	for _, q := range allQuads(b, vocab) {
		fmt.Fprintln(cmd.OutOrStdout(), q)
	}

	classification := classify.Classify(b.Interpretation().Interpretation, b.Dataset())

	out, err := os.Create(flags.output)
	if err != nil {
		return fmt.Errorf("creating output module %s: %w", flags.output, err)
	}
	defer out.Close()

	if err := module.Write(out, vocab, b.Interpretation().Interpretation, b.Dataset(), classification, flags.pageSize); err != nil {
		return fmt.Errorf("writing module %s: %w", flags.output, err)
	}

	log.Info("wrote module", "path", flags.output, "run_id", runID)
	return nil
}

func ingestFile(log hclog.Logger, b *builder.Builder, vocab vocabulary.Vocabulary, fileIdx int, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening input file %s: %w", path, err)
	}
	defer f.Close()

	reader := nquads.NewReader(f)
	statedIndex := 0
	for {
		q, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("reading %s: %w", path, err)
		}

		quad := insertNQuad(b, vocab, q)
		cause := statedCause(fileIdx, statedIndex)
		statedIndex++

		if err := b.Insert(inferdf.NewSigned(inferdf.Positive, quad), cause); err != nil {
			if c, ok := err.(inferdf.Contradiction); ok {
				printContradiction(log, b, vocab, c)
			}
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	log.Debug("ingested file", "path", path, "quads", statedIndex)
	return nil
}

// insertNQuad interns an N-Quads statement's lexical terms into vocab and
// the builder's interpretation, returning the resulting resource-id quad.
func insertNQuad(b *builder.Builder, vocab vocabulary.Vocabulary, q nquads.Quad) inferdf.Quad {
	var graph *inferdf.Term
	if q.Graph != nil {
		t := internTerm(vocab, *q.Graph)
		graph = &t
	}
	s := internTerm(vocab, q.Subject)
	p := internTerm(vocab, q.Predicate)
	o := internTerm(vocab, q.Object)
	return b.InsertQuad(s, p, o, graph)
}

func internTerm(vocab vocabulary.Vocabulary, t nquads.Term) inferdf.Term {
	switch t.Kind {
	case nquads.IRI:
		return inferdf.Iri(vocab.InsertIri(t.Value))
	case nquads.BlankNode:
		return inferdf.Blank(vocab.InsertBlank(t.Value))
	default:
		return inferdf.Literal(vocab.InsertLiteral(t.Value, t.Datatype, t.Lang))
	}
}

// statedCause packs the ingesting file's index into the high byte of the
// Stated cause namespace and a per-file sequence number into the rest, so
// two quads from different input files never collide even if both happen
// to be the n-th quad of their file.
func statedCause(fileIdx, quadIdx int) inferdf.Cause {
	return inferdf.Stated(uint32(fileIdx)<<24 | uint32(quadIdx)&0x00FFFFFF)
}

func verbosityLevel(debug int) hclog.Level {
	switch {
	case debug >= 3:
		return hclog.Trace
	case debug == 2:
		return hclog.Debug
	case debug == 1:
		return hclog.Info
	default:
		return hclog.Warn
	}
}

func printContradiction(log hclog.Logger, b *builder.Builder, vocab vocabulary.Vocabulary, c inferdf.Contradiction) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(os.Stderr, "%s: %s\n\n", red("error"), bold("contradiction detected"))
	if c.HasTrip {
		fmt.Fprintf(os.Stderr, "\t%s\n\n", bold(formatTriple(b.Interpretation(), vocab, c.Triple)))
	}
	if c.HasAB {
		fmt.Fprintf(os.Stderr, "\t%s != %s\n\n",
			bold(formatTerm(b.Interpretation(), vocab, c.A)),
			bold(formatTerm(b.Interpretation(), vocab, c.B)))
	}
	log.Error("contradiction", "kind", c.Kind)
}

func printMissingStatement(cmd *cobra.Command, b *builder.Builder, vocab vocabulary.Vocabulary, m inferdf.MissingStatement) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(os.Stderr, "%s: %s\n\n", red("error"), bold("missing required statement:"))
	fmt.Fprintf(os.Stderr, "\t%s\n\n", bold(formatTriple(b.Interpretation(), vocab, m.Statement)))
	fmt.Fprintf(os.Stderr, "required by %s\n", formatTerm(b.Interpretation(), vocab, m.Entailment.RuleId))
}

