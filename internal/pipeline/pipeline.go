// Package pipeline wires the four stages together: ingestion, resolution,
// rendering, assembly. Each stage fully completes before the next begins.
package pipeline

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"swiftmock/internal/assemble"
	"swiftmock/internal/config"
	"swiftmock/internal/generator"
	"swiftmock/internal/ingest"
	"swiftmock/internal/parser"
	"swiftmock/internal/resolve"
	"swiftmock/internal/swifttype"
)

// Fatal precondition failures. These are the only errors raised before any
// work begins; everything later degrades per unit with diagnostics.
var (
	ErrNoDestination = errors.New("no output destination configured")
	ErrNoSources     = errors.New("neither source files nor source directories configured")
)

// Pipeline runs one generation end to end.
type Pipeline struct {
	cfg config.Config
	log *zap.SugaredLogger
}

// New creates a Pipeline for the given configuration.
func New(cfg config.Config, log *zap.SugaredLogger) *Pipeline {
	cfg.Normalize()
	return &Pipeline{cfg: cfg, log: log}
}

// Run executes the pipeline and, on success, invokes complete with the
// generated text after it has been written to the destination.
func (p *Pipeline) Run(ctx context.Context, complete func(output string)) error {
	if p.cfg.OutputPath == "" {
		return ErrNoDestination
	}
	if len(p.cfg.SrcDirs) == 0 && len(p.cfg.SrcFiles) == 0 {
		return ErrNoSources
	}

	start := time.Now()
	runID := uuid.NewString()
	log := p.log.With("run", runID)
	log.Infow("generation started",
		"parser", p.cfg.Parser, "concurrency", p.cfg.Concurrency, "destination", p.cfg.OutputPath)

	backend, err := parser.Lookup(p.cfg.Parser, log)
	if err != nil {
		return err
	}

	// Stage barriers are hard: resolution needs fully populated maps, and
	// assembly needs every candidate and import set.
	ingested, err := ingest.New(backend, p.cfg, log).Run(ctx)
	if err != nil {
		return errors.Wrap(err, "ingestion")
	}

	table := swifttype.NewTable(p.cfg.Defaults, ingested.MockNames())
	resolver := resolve.New(ingested, log)
	resolved := resolver.ResolveAll(ingested.Annotated)
	log.Infow("resolution complete", "resolved", len(resolved), "annotated", len(ingested.Annotated))

	renderer, err := generator.New(table, p.cfg.Concurrency, log)
	if err != nil {
		return errors.Wrap(err, "rendering")
	}
	cands := renderer.RenderAll(ctx, resolved)

	entityImports := make([][]string, len(resolved))
	for i, re := range resolved {
		entityImports[i] = re.Imports
	}
	asm := assemble.New(p.cfg, log)
	output := asm.Assemble(cands, entityImports)
	if err := asm.Write(output); err != nil {
		return errors.Wrap(err, "assembly")
	}

	log.Infow("generation complete",
		"entities", len(cands), "duration_ms", time.Since(start).Milliseconds())
	if complete != nil {
		complete(output)
	}
	return nil
}

// Generate is a convenience wrapper returning the output text directly.
func Generate(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (string, error) {
	var out string
	p := New(cfg, log)
	if err := p.Run(ctx, func(text string) { out = text }); err != nil {
		return "", err
	}
	return out, nil
}
