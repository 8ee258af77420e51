package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swiftmock/internal/config"
	"swiftmock/internal/logging"
	_ "swiftmock/internal/parser/scan"
)

const feedSource = `import Foundation
import RxSwift

/// @mockable
protocol FeedProviding {
    var count: Int { get }
    func fetch(_ limit: Int) -> [Int]
}

protocol Unmarked {
    var hidden: Int { get }
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func baseConfig(t *testing.T) (config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.OutputPath = filepath.Join(dir, "Mocks.swift")
	return cfg, dir
}

func TestRunFatalPreconditions(t *testing.T) {
	log := logging.Nop()

	cfg := config.Default()
	cfg.SrcFiles = []string{"a.swift"}
	err := New(cfg, log).Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoDestination)

	cfg = config.Default()
	cfg.OutputPath = "out.swift"
	err = New(cfg, log).Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestRunUnknownParser(t *testing.T) {
	cfg, dir := baseConfig(t)
	cfg.SrcFiles = []string{writeFile(t, dir, "feed.swift", feedSource)}
	cfg.Parser = "nope"

	err := New(cfg, logging.Nop()).Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestRunEndToEnd(t *testing.T) {
	cfg, dir := baseConfig(t)
	cfg.SrcFiles = []string{writeFile(t, dir, "feed.swift", feedSource)}

	var fromCallback string
	require.NoError(t, New(cfg, logging.Nop()).Run(context.Background(), func(out string) {
		fromCallback = out
	}))

	data, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	out := string(data)
	assert.Equal(t, out, fromCallback)

	assert.Contains(t, out, "import Foundation\n")
	assert.Contains(t, out, "import RxSwift\n")
	assert.Contains(t, out, "class FeedProvidingMock: FeedProviding {")
	assert.Contains(t, out, "var count: Int = 0 { didSet { countSetCallCount += 1 } }")
	assert.Contains(t, out, "func fetch(_ limit: Int) -> [Int] {")
	assert.NotContains(t, out, "UnmarkedMock", "unannotated declarations are ignored")
}

func TestRunMockArtifactReuse(t *testing.T) {
	cfg, dir := baseConfig(t)
	cfg.SrcFiles = []string{writeFile(t, dir, "feed.swift", `import RxSwift

/// @mockable
protocol FeedStreaming: SessionProviding {
    var events: Observable<Int> { get }
}
`)}
	cfg.MockFiles = []string{writeFile(t, dir, "session_mock.swift", `import SessionKit

class SessionProvidingMock: SessionProviding {
    private(set) var tokenSetCallCount = 0
    var token: String = "" { didSet { tokenSetCallCount += 1 } }
}
`)}

	out, err := Generate(context.Background(), cfg, logging.Nop())
	require.NoError(t, err)

	assert.Contains(t, out, "class FeedStreamingMock: FeedStreaming {")
	assert.Contains(t, out, "var eventsPublishSubject = PublishSubject<Int>()")
	assert.Contains(t, out, `var token: String = "" { didSet { tokenSetCallCount += 1 } }`,
		"inherited members come verbatim from the artifact")
	assert.Contains(t, out, "import RxSwift\n")
	assert.Contains(t, out, "import SessionKit\n", "artifact imports join the union")
	assert.NotContains(t, out, "class SessionProvidingMock",
		"artifacts contribute members, never whole classes")
}

func TestRunDeterministic(t *testing.T) {
	cfg, dir := baseConfig(t)
	src := filepath.Join(dir, "src")
	require.NoError(t, os.Mkdir(src, 0o755))
	writeFile(t, src, "a.swift", `/// @mockable
protocol Alpha {
    var n: Int { get }
}
`)
	writeFile(t, src, "b.swift", `/// @mockable
protocol Beta {
    var s: String { get }
}

/// @mockable
protocol Gamma {
    func run()
}
`)
	cfg.SrcDirs = []string{src}

	var outputs []string
	for _, workers := range []int{1, 8, 8} {
		cfg.Concurrency = workers
		out, err := Generate(context.Background(), cfg, logging.Nop())
		require.NoError(t, err)
		outputs = append(outputs, out)
	}
	assert.Equal(t, outputs[0], outputs[1], "worker count never changes the output")
	assert.Equal(t, outputs[1], outputs[2], "reruns are byte-identical")
}

func TestRunHeaderAndGuard(t *testing.T) {
	cfg, dir := baseConfig(t)
	cfg.SrcFiles = []string{writeFile(t, dir, "feed.swift", feedSource)}
	cfg.Header = "Generated; do not edit."
	cfg.MacroGuard = "MOCK"

	out, err := Generate(context.Background(), cfg, logging.Nop())
	require.NoError(t, err)
	assert.True(t, len(out) > 0)
	assert.Contains(t, out, "// Generated; do not edit.\n#if MOCK\n")
	assert.Contains(t, out, "#endif\n")
}
