// Package parser defines the pluggable parsing backend boundary and the
// backend registry. Backends turn raw source text into declaration models;
// the core pipeline never inspects source text itself.
package parser

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"swiftmock/internal/model"
)

// Options configures source parsing for one file.
type Options struct {
	// Annotation is the marker token opting a declaration into mock
	// generation, e.g. "@mockable".
	Annotation string

	// Kinds restricts which declaration kinds are extracted. Empty means
	// all kinds.
	Kinds []model.DeclKind
}

// WantsKind reports whether the options admit the given declaration kind.
func (o Options) WantsKind(k model.DeclKind) bool {
	if len(o.Kinds) == 0 {
		return true
	}
	for _, want := range o.Kinds {
		if want == k {
			return true
		}
	}
	return false
}

// FileResult is the parse product for a single file: its declarations and
// its import list.
type FileResult struct {
	Path     string
	Entities []*model.Entity
	Imports  []string
}

// Backend parses one file at a time; ingestion drives each input file
// through the backend independently and in parallel, so implementations
// must be safe for concurrent use.
type Backend interface {
	// ParseSource parses a source file into declaration models.
	ParseSource(ctx context.Context, path string, opts Options) (*FileResult, error)

	// ParseMock parses a previously generated mock artifact. Returned
	// entities are pre-resolved: their member bodies carry verbatim text
	// for byte-for-byte reuse instead of re-synthesis.
	ParseMock(ctx context.Context, path string, opts Options) (*FileResult, error)
}

var backends = make(map[string]func(log *zap.SugaredLogger) Backend)

// Register makes a backend constructor available under name. Backend
// packages register themselves from init and are selected by the
// --parser flag.
func Register(name string, constructor func(log *zap.SugaredLogger) Backend) {
	backends[name] = constructor
}

// Lookup returns a new backend instance by name, wired to the run's
// diagnostics logger.
func Lookup(name string, log *zap.SugaredLogger) (Backend, error) {
	constructor, ok := backends[name]
	if !ok {
		return nil, errors.Newf("no parser backend registered under %q (available: %v)", name, Names())
	}
	return constructor(log), nil
}

// Names returns the registered backend names, sorted.
func Names() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
