// Package logging constructs the leveled logger shared by all stages.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity flag counts. 0 shows warnings and errors only, -v adds
// progress information, -vv and above add per-file and per-member detail.
const (
	VerbosityQuiet   = 0
	VerbosityInfo    = 1
	VerbosityVerbose = 2
)

// LevelFor maps a -v count to a zap level.
func LevelFor(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityQuiet:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// New builds a console logger at the level implied by verbosity. All
// diagnostics go to stderr so the generated output can be piped.
func New(verbosity int) *zap.SugaredLogger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = "" // Diagnostics, not an event stream
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(os.Stderr),
		LevelFor(verbosity),
	)
	return zap.New(core).Sugar()
}

// Nop returns a logger that discards everything, for tests.
func Nop() *zap.SugaredLogger { return zap.NewNop().Sugar() }
