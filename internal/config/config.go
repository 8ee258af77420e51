// Package config holds the immutable run configuration threaded through
// every pipeline stage.
package config

import (
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Config represents one generation run. It is assembled once by the CLI
// (flags, environment, optional config file) and treated as read-only by
// the pipeline.
type Config struct {
	// Inputs. Directories, when present, take precedence over explicit
	// file lists.
	SrcDirs   []string `yaml:"srcDirs"`
	SrcFiles  []string `yaml:"srcFiles"`
	MockFiles []string `yaml:"mockFiles"`

	// OutputPath is the destination of the aggregated mock file.
	// Required; the process aborts before any work when absent.
	OutputPath string `yaml:"outputPath"`

	// Annotation is the comment marker opting a declaration into mock
	// generation.
	Annotation string `yaml:"annotation"`

	// ExcludeSuffixes filters out files whose basename (without
	// extension) carries one of these suffixes, before parsing.
	ExcludeSuffixes []string `yaml:"excludeSuffixes"`

	// Import handling.
	CustomImports   []string `yaml:"customImports"`
	ExcludedImports []string `yaml:"excludedImports"`
	TestableImports []string `yaml:"testableImports"`

	// Header is prepended to the output as a comment block.
	Header string `yaml:"header"`

	// MacroGuard, when set, wraps the output in #if/#endif keyed by it.
	MacroGuard string `yaml:"macroGuard"`

	// Concurrency bounds the ingestion and rendering worker pools.
	Concurrency int `yaml:"concurrency"`

	// Parser selects the registered parsing backend.
	Parser string `yaml:"parser"`

	// Defaults maps type names to default-value expressions, merged over
	// the built-in table.
	Defaults map[string]string `yaml:"defaults"`
}

// Default returns a Config with default values.
func Default() Config {
	return Config{
		Annotation:  "@mockable",
		Parser:      "scan",
		Concurrency: runtime.NumCPU(),
	}
}

// Normalize fills zero-valued fields from the defaults.
func (c *Config) Normalize() {
	def := Default()
	if c.Annotation == "" {
		c.Annotation = def.Annotation
	}
	if c.Parser == "" {
		c.Parser = def.Parser
	}
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
}

// LoadFileList reads a YAML list of file paths, e.g. the --filelist and
// --mock-filelist inputs.
func LoadFileList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading filelist %s", path)
	}
	var files []string
	if err := yaml.Unmarshal(data, &files); err != nil {
		return nil, errors.Wrapf(err, "parsing filelist %s", path)
	}
	return files, nil
}

// LoadDefaults reads a YAML map of type name to default-value expression.
func LoadDefaults(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading defaults file %s", path)
	}
	var defaults map[string]string
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return nil, errors.Wrapf(err, "parsing defaults file %s", path)
	}
	return defaults, nil
}
