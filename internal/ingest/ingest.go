// Package ingest runs the concurrent ingestion stage: every input file is
// parsed independently by the backend, and a single collector goroutine
// owns the shared maps, so map population is never concurrent even though
// parsing is.
package ingest

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"swiftmock/internal/config"
	"swiftmock/internal/model"
	"swiftmock/internal/parser"
)

const sourceExt = ".swift"

// Result holds the ingestion maps consumed by the resolution stage.
type Result struct {
	Decls     map[string]*model.Entity // Every parsed source declaration
	Annotated map[string]*model.Entity // Declarations opted in to mocking
	Mocks     map[string]*model.Entity // Pre-resolved upstream artifacts
	Imports   *model.ImportMap         // File path -> imported modules
}

// MockNames returns the names of every declaration a mock will exist for:
// the annotated set plus the upstream artifacts. Used to build the
// default-value type table.
func (r *Result) MockNames() []string {
	names := make([]string, 0, len(r.Annotated)+len(r.Mocks))
	for name := range r.Annotated {
		names = append(names, name)
	}
	for name := range r.Mocks {
		if _, ok := r.Annotated[name]; !ok {
			names = append(names, name)
		}
	}
	return names
}

// Ingester scans source and mock-artifact inputs into a Result.
type Ingester struct {
	backend parser.Backend
	cfg     config.Config
	log     *zap.SugaredLogger
}

// New creates an Ingester.
func New(backend parser.Backend, cfg config.Config, log *zap.SugaredLogger) *Ingester {
	return &Ingester{backend: backend, cfg: cfg, log: log}
}

// unit is one file handed to the backend.
type unit struct {
	path string
	mock bool
}

// Run enumerates inputs, parses them on a bounded worker pool, and merges
// the results. A file that fails to parse is logged and skipped; only
// input enumeration errors are fatal.
func (in *Ingester) Run(ctx context.Context) (*Result, error) {
	sources, err := in.sourcePaths()
	if err != nil {
		return nil, err
	}

	units := make([]unit, 0, len(sources)+len(in.cfg.MockFiles))
	for _, p := range in.cfg.MockFiles {
		units = append(units, unit{path: p, mock: true})
	}
	for _, p := range sources {
		units = append(units, unit{path: p})
	}
	in.log.Infow("ingesting inputs", "sources", len(sources), "mocks", len(in.cfg.MockFiles))

	type parsed struct {
		result *parser.FileResult
		mock   bool
	}
	results := make(chan parsed, len(units))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(in.cfg.Concurrency)
	opts := parser.Options{Annotation: in.cfg.Annotation}
	for _, u := range units {
		u := u
		g.Go(func() error {
			var (
				res *parser.FileResult
				err error
			)
			if u.mock {
				res, err = in.backend.ParseMock(ctx, u.path, opts)
			} else {
				res, err = in.backend.ParseSource(ctx, u.path, opts)
			}
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				in.log.Warnw("skipping unparsable file", "file", u.path, "error", err)
				return nil
			}
			results <- parsed{result: res, mock: u.mock}
			return nil
		})
	}

	// Single consumer owns the maps.
	out := &Result{
		Decls:     make(map[string]*model.Entity),
		Annotated: make(map[string]*model.Entity),
		Mocks:     make(map[string]*model.Entity),
		Imports:   model.NewImportMap(),
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for p := range results {
			in.merge(out, p.result, p.mock)
		}
	}()

	err = g.Wait()
	close(results)
	<-done
	if err != nil {
		return nil, err
	}
	in.log.Infow("ingestion complete",
		"declarations", len(out.Decls), "annotated", len(out.Annotated), "artifacts", len(out.Mocks))
	return out, nil
}

// merge folds one file's parse result into the maps. Duplicate declaration
// names keep the first-seen entity.
func (in *Ingester) merge(out *Result, res *parser.FileResult, mock bool) {
	out.Imports.Add(res.Path, res.Imports...)
	for _, e := range res.Entities {
		target := out.Decls
		if mock {
			target = out.Mocks
		}
		if prev, ok := target[e.Name]; ok {
			in.log.Warnw("duplicate declaration, keeping first",
				"entity", e.Name, "kept", prev.Path, "dropped", e.Path)
			continue
		}
		target[e.Name] = e
		if !mock && e.Annotated {
			out.Annotated[e.Name] = e
		}
	}
}

// sourcePaths enumerates the source inputs. Directories take precedence
// over explicit file lists; the exclusion suffixes are a cheap pre-parse
// filter on the basename.
func (in *Ingester) sourcePaths() ([]string, error) {
	if len(in.cfg.SrcDirs) > 0 {
		var files []string
		for _, dir := range in.cfg.SrcDirs {
			err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() || filepath.Ext(path) != sourceExt {
					return nil
				}
				if in.excluded(path) {
					in.log.Debugw("excluded by suffix", "file", path)
					return nil
				}
				files = append(files, path)
				return nil
			})
			if err != nil {
				return nil, errors.Wrapf(err, "scanning source directory %s", dir)
			}
		}
		return files, nil
	}

	var files []string
	for _, p := range in.cfg.SrcFiles {
		if in.excluded(p) {
			in.log.Debugw("excluded by suffix", "file", p)
			continue
		}
		files = append(files, p)
	}
	return files, nil
}

func (in *Ingester) excluded(path string) bool {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, suffix := range in.cfg.ExcludeSuffixes {
		if suffix != "" && strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}
