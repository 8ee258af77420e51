// Package assemble consolidates import statements, restores deterministic
// candidate ordering, and writes the final output file.
package assemble

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"swiftmock/internal/config"
	"swiftmock/internal/model"
)

// Assembler builds the final output text from rendered candidates.
type Assembler struct {
	cfg config.Config
	log *zap.SugaredLogger
}

// New creates an Assembler.
func New(cfg config.Config, log *zap.SugaredLogger) *Assembler {
	return &Assembler{cfg: cfg, log: log}
}

// Assemble concatenates the candidates in declaration-offset order,
// prefixed by the consolidated import block, the configured header and the
// optional compilation guard.
func (a *Assembler) Assemble(cands []model.RenderedCandidate, entityImports [][]string) string {
	model.SortCandidates(cands)

	var b strings.Builder
	if a.cfg.Header != "" {
		for _, line := range strings.Split(strings.TrimRight(a.cfg.Header, "\n"), "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "//") || strings.TrimSpace(line) == "" {
				b.WriteString(line)
			} else {
				b.WriteString("// " + line)
			}
			b.WriteString("\n")
		}
	}
	if a.cfg.MacroGuard != "" {
		b.WriteString("#if " + a.cfg.MacroGuard + "\n")
	}

	for _, line := range a.importLines(entityImports) {
		b.WriteString(line + "\n")
	}

	for _, c := range cands {
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(c.Text, "\n"))
		b.WriteString("\n")
	}

	if a.cfg.MacroGuard != "" {
		b.WriteString("#endif\n")
	}
	return b.String()
}

// importLines computes the deduplicated, sorted import block: the union of
// every contributing file's imports plus the custom imports, minus the
// excluded ones, plus @testable lines for the configured modules.
// Exclusion applies to plain imports only; an explicit testable request is
// never vetoed by it.
func (a *Assembler) importLines(entityImports [][]string) []string {
	set := make(map[string]struct{})
	for _, imports := range entityImports {
		for _, m := range imports {
			set[m] = struct{}{}
		}
	}
	for _, m := range a.cfg.CustomImports {
		if m != "" {
			set[m] = struct{}{}
		}
	}
	for _, m := range a.cfg.ExcludedImports {
		delete(set, m)
	}
	testable := make(map[string]struct{}, len(a.cfg.TestableImports))
	for _, m := range a.cfg.TestableImports {
		if m == "" {
			continue
		}
		testable[m] = struct{}{}
		delete(set, m) // Promoted to @testable below.
	}

	lines := make([]string, 0, len(set)+len(testable))
	for m := range set {
		lines = append(lines, "import "+m)
	}
	for m := range testable {
		lines = append(lines, "@testable import "+m)
	}
	sort.Strings(lines)
	return lines
}

// Write writes the output atomically: a failed run never truncates an
// existing mock file.
func (a *Assembler) Write(content string) error {
	dest := a.cfg.OutputPath
	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "creating output directory %s", dir)
		}
	}
	tmp := dest + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", tmp)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "renaming %s to %s", tmp, dest)
	}
	a.log.Infow("output written", "file", dest, "size", len(content))
	return nil
}
