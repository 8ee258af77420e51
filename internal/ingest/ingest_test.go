package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swiftmock/internal/config"
	"swiftmock/internal/logging"
	"swiftmock/internal/parser"
	"swiftmock/internal/parser/scan"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func run(t *testing.T, cfg config.Config) *Result {
	t.Helper()
	cfg.Normalize()
	res, err := New(scan.New(), cfg, logging.Nop()).Run(context.Background())
	require.NoError(t, err)
	return res
}

const sessionSrc = `import Foundation

/// @mockable
protocol SessionProviding {
    var sessionCount: Int { get set }
}
`

const feedSrc = `import RxSwift

protocol Clearing {
    func clear()
}
`

func TestRunScansDirectories(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/session.swift":       sessionSrc,
		"a/b/feed.swift":        feedSrc,
		"a/readme.md":           "not source",
		"a/session_Tests.swift": "/// @mockable\nprotocol Ignored { }\n",
	})

	res := run(t, config.Config{
		SrcDirs:         []string{root},
		ExcludeSuffixes: []string{"_Tests"},
	})

	assert.Len(t, res.Decls, 2)
	assert.Contains(t, res.Decls, "SessionProviding")
	assert.Contains(t, res.Decls, "Clearing")
	assert.NotContains(t, res.Decls, "Ignored", "excluded by suffix before parsing")

	require.Len(t, res.Annotated, 1)
	assert.Contains(t, res.Annotated, "SessionProviding")

	imports := res.Imports.Imports(filepath.Join(root, "a", "session.swift"))
	assert.Equal(t, []string{"Foundation"}, imports)
}

func TestRunDirectoriesTakePrecedence(t *testing.T) {
	root := writeTree(t, map[string]string{"src/session.swift": sessionSrc})
	other := writeTree(t, map[string]string{"feed.swift": feedSrc})

	res := run(t, config.Config{
		SrcDirs:  []string{filepath.Join(root, "src")},
		SrcFiles: []string{filepath.Join(other, "feed.swift")},
	})

	assert.Contains(t, res.Decls, "SessionProviding")
	assert.NotContains(t, res.Decls, "Clearing", "explicit files ignored when directories are set")
}

func TestRunExplicitFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"feed.swift":       feedSrc,
		"feed_Mocks.swift": feedSrc,
	})

	res := run(t, config.Config{
		SrcFiles:        []string{filepath.Join(root, "feed.swift"), filepath.Join(root, "feed_Mocks.swift")},
		ExcludeSuffixes: []string{"_Mocks"},
	})
	assert.Len(t, res.Decls, 1)
}

func TestRunSkipsUnreadableFile(t *testing.T) {
	root := writeTree(t, map[string]string{"ok.swift": sessionSrc})

	res := run(t, config.Config{
		SrcFiles: []string{
			filepath.Join(root, "ok.swift"),
			filepath.Join(root, "missing.swift"), // unreadable: logged and skipped
		},
	})
	assert.Len(t, res.Decls, 1)
}

func TestRunMissingDirectoryIsFatal(t *testing.T) {
	cfg := config.Config{SrcDirs: []string{filepath.Join(t.TempDir(), "absent")}}
	cfg.Normalize()
	_, err := New(scan.New(), cfg, logging.Nop()).Run(context.Background())
	assert.Error(t, err)
}

func TestRunMockArtifacts(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/feed.swift": `/// @mockable
protocol FeedStreaming: SessionProviding {
    var title: String { get set }
}
`,
		"mocks/session_mock.swift": `import UpstreamKit

class SessionProvidingMock: SessionProviding {
    private(set) var sessionCountSetCallCount = 0
    var sessionCount: Int = 0 { didSet { sessionCountSetCallCount += 1 } }
}
`,
	})

	res := run(t, config.Config{
		SrcDirs:   []string{filepath.Join(root, "src")},
		MockFiles: []string{filepath.Join(root, "mocks", "session_mock.swift")},
	})

	require.Contains(t, res.Mocks, "SessionProviding")
	assert.True(t, res.Mocks["SessionProviding"].PreResolved)
	assert.NotContains(t, res.Decls, "SessionProviding", "artifacts stay out of the source map")

	names := res.MockNames()
	assert.ElementsMatch(t, []string{"FeedStreaming", "SessionProviding"}, names)
}

func TestRunDuplicateKeepsFirst(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.swift": "/// @mockable\nprotocol Dup {\n    var a: Int { get set }\n}\n",
		"b.swift": "/// @mockable\nprotocol Dup {\n    var b: Int { get set }\n}\n",
	})

	res := run(t, config.Config{SrcDirs: []string{root}})
	require.Contains(t, res.Decls, "Dup")
	assert.Len(t, res.Decls, 1)
	assert.Len(t, res.Decls["Dup"].Members, 1)
}

func TestRunConcurrencyInvariant(t *testing.T) {
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		files[name+".swift"] = "/// @mockable\nprotocol P_" + name + " {\n    var x: Int { get set }\n}\n"
	}
	root := writeTree(t, files)

	serial := run(t, config.Config{SrcDirs: []string{root}, Concurrency: 1})
	parallel := run(t, config.Config{SrcDirs: []string{root}, Concurrency: 8})

	require.Equal(t, len(serial.Decls), len(parallel.Decls))
	for name := range serial.Decls {
		assert.Contains(t, parallel.Decls, name)
	}
	assert.Equal(t, serial.Imports.Len(), parallel.Imports.Len())
}

var _ parser.Backend = (*scan.Scanner)(nil)
