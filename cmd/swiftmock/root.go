package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"swiftmock/internal/config"
	"swiftmock/internal/logging"
	"swiftmock/internal/parser"
	"swiftmock/internal/pipeline"
)

func newRootCmd() *cobra.Command {
	var (
		verbosity    int
		filelist     string
		mockFilelist string
		defaultsFile string
	)

	cmd := &cobra.Command{
		Use:   "swiftmock",
		Short: "Generate mock implementations for annotated declarations",
		Long: `swiftmock scans source trees for protocol and class declarations carrying
the annotation marker (default "@mockable"), resolves their inheritance
chains across freshly parsed source and previously generated mocks from
dependent modules, and writes one aggregated, compilable mock file.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			v.SetEnvPrefix("SWIFTMOCK")
			v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			v.AutomaticEnv()
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}

			log := logging.New(verbosity)
			defer func() { _ = log.Sync() }()

			cfg := config.Config{
				SrcDirs:         v.GetStringSlice("sourcedirs"),
				SrcFiles:        v.GetStringSlice("sourcefiles"),
				MockFiles:       v.GetStringSlice("mockfiles"),
				OutputPath:      v.GetString("destination"),
				Annotation:      v.GetString("annotation"),
				ExcludeSuffixes: v.GetStringSlice("exclude-suffixes"),
				CustomImports:   v.GetStringSlice("custom-imports"),
				ExcludedImports: v.GetStringSlice("exclude-imports"),
				TestableImports: v.GetStringSlice("testable-imports"),
				Header:          v.GetString("header"),
				MacroGuard:      v.GetString("macro"),
				Concurrency:     v.GetInt("concurrency"),
				Parser:          v.GetString("parser"),
			}

			if filelist != "" {
				files, err := config.LoadFileList(filelist)
				if err != nil {
					log.Fatalw("unreadable filelist", "file", filelist, "error", err)
				}
				cfg.SrcFiles = append(cfg.SrcFiles, files...)
			}
			if mockFilelist != "" {
				files, err := config.LoadFileList(mockFilelist)
				if err != nil {
					log.Fatalw("unreadable mock filelist", "file", mockFilelist, "error", err)
				}
				cfg.MockFiles = append(cfg.MockFiles, files...)
			}
			if defaultsFile != "" {
				defaults, err := config.LoadDefaults(defaultsFile)
				if err != nil {
					log.Fatalw("unreadable defaults file", "file", defaultsFile, "error", err)
				}
				cfg.Defaults = defaults
			}

			err := pipeline.New(cfg, log).Run(cmd.Context(), func(output string) {
				log.Infow("mocks generated", "bytes", len(output))
			})
			if err != nil {
				log.Fatalw("generation failed", "error", err)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringSlice("sourcedirs", nil, "source directories to scan recursively (take precedence over --sourcefiles)")
	flags.StringSlice("sourcefiles", nil, "explicit source files to parse")
	flags.StringVar(&filelist, "filelist", "", "YAML file listing source paths")
	flags.StringSlice("mockfiles", nil, "previously generated mock files from dependent modules")
	flags.StringVar(&mockFilelist, "mock-filelist", "", "YAML file listing mock-artifact paths")
	flags.StringP("destination", "d", "", "output file path (required)")
	flags.String("annotation", config.Default().Annotation, "comment marker opting a declaration into mock generation")
	flags.StringSlice("exclude-suffixes", nil, "filename suffixes to skip before parsing (e.g. Tests,Mocks)")
	flags.StringSlice("custom-imports", nil, "modules to always import in the output")
	flags.StringSlice("testable-imports", nil, "modules to import with @testable")
	flags.StringSlice("exclude-imports", nil, "modules to drop from the consolidated imports")
	flags.String("header", "", "comment block prepended to the output")
	flags.String("macro", "", "macro name for an #if/#endif compilation guard around the output")
	flags.Int("concurrency", config.Default().Concurrency, "worker pool size for parsing and rendering")
	flags.String("parser", config.Default().Parser, "parser backend ("+strings.Join(parser.Names(), ", ")+")")
	flags.StringVar(&defaultsFile, "defaults-file", "", "YAML map of type name to default-value expression")
	flags.CountVarP(&verbosity, "verbose", "v", "increase logging detail (-v, -vv)")

	return cmd
}
