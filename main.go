// apicover reports which symbols of a library's API descriptor appear in
// the sources of a binding and which are missing.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/phobologic/apicover/internal/catalog"
	"github.com/phobologic/apicover/internal/config"
	"github.com/phobologic/apicover/internal/discover"
	"github.com/phobologic/apicover/internal/logging"
	"github.com/phobologic/apicover/internal/match"
	"github.com/phobologic/apicover/internal/report"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	def := config.Default()

	var (
		cfg         config.Config
		configPath  string
		docPath     string
		showVersion bool
	)

	cmd := &cobra.Command{
		Use:   "apicover [prefix]",
		Short: "Report which API functions a binding implements",
		Long: `apicover reads an API descriptor (libvirt-api.xml style) and searches the
source files directly inside a directory for the name of every function it
declares. Functions whose name appears in no file are reported as missing.

--catalog may be repeated to merge several descriptors, and --kind adds
macros and enums to the check.

prefix restricts the check to symbols whose name starts with it.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				_, _ = fmt.Fprintf(stdout, "apicover %s\n", version)
				return nil
			}

			loaded, err := loadConfig(configPath, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			overlayFlags(cmd, &loaded, cfg)
			if len(args) > 0 {
				loaded.Prefix = args[0]
			}

			return runCoverage(loaded, docPath, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringArrayVar(&cfg.Catalogs, "catalog", def.Catalogs, "API descriptor XML file (repeatable, merged in order)")
	f.StringVar(&cfg.SourceDir, "src", def.SourceDir, "directory scanned (non-recursively) for source files")
	f.StringSliceVar(&cfg.Extensions, "ext", def.Extensions, "source file extensions to scan")
	f.StringSliceVar(&cfg.Kinds, "kind", def.Kinds, "symbol kinds to check: function, macro, enum")
	f.StringSliceVar(&cfg.Ignore, "ignore", nil, "symbol names never reported (added to the config list)")
	f.StringVar(&cfg.Mode, "mode", def.Mode, "match mode: substring, ident or sys")
	f.StringVar(&cfg.Format, "format", def.Format, "report format: text or toon")
	f.BoolVar(&cfg.ShowImplemented, "show-implemented", false, "also list implemented symbols")
	f.BoolVar(&cfg.SkipUnreadable, "skip-unreadable", false, "warn about unreadable source files instead of failing")
	f.BoolVar(&cfg.RespectGitignore, "respect-gitignore", false, "skip source files matched by src/.gitignore")
	f.BoolVar(&cfg.FailOnMissing, "fail-on-missing", false, "exit non-zero when any symbol is missing")
	f.StringVar(&cfg.LogLevel, "log-level", def.LogLevel, "diagnostic log level (debug, info, warn, error)")
	f.StringVar(&configPath, "config", config.DefaultFile, "config file")
	f.StringVar(&docPath, "doc", "", "write a coverage section into this markdown file")
	f.BoolVarP(&showVersion, "version", "V", false, "show version and exit")

	cmd.AddCommand(newInitCmd(stdout, stderr))
	return cmd
}

// loadConfig reads the config file. A missing file is only an error when it
// was named explicitly.
func loadConfig(path string, explicit bool) (config.Config, error) {
	if explicit {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return config.Config{}, fmt.Errorf("config file %s does not exist", path)
		}
	}
	return config.Load(path)
}

// overlayFlags copies explicitly set flags from flagged onto cfg.
func overlayFlags(cmd *cobra.Command, cfg *config.Config, flagged config.Config) {
	f := cmd.Flags()
	if f.Changed("catalog") {
		cfg.Catalogs = flagged.Catalogs
	}
	if f.Changed("src") {
		cfg.SourceDir = flagged.SourceDir
	}
	if f.Changed("ext") {
		cfg.Extensions = flagged.Extensions
	}
	if f.Changed("kind") {
		cfg.Kinds = flagged.Kinds
	}
	if f.Changed("ignore") {
		cfg.Ignore = append(cfg.Ignore, flagged.Ignore...)
	}
	if f.Changed("mode") {
		cfg.Mode = flagged.Mode
	}
	if f.Changed("format") {
		cfg.Format = flagged.Format
	}
	if f.Changed("show-implemented") {
		cfg.ShowImplemented = flagged.ShowImplemented
	}
	if f.Changed("skip-unreadable") {
		cfg.SkipUnreadable = flagged.SkipUnreadable
	}
	if f.Changed("respect-gitignore") {
		cfg.RespectGitignore = flagged.RespectGitignore
	}
	if f.Changed("fail-on-missing") {
		cfg.FailOnMissing = flagged.FailOnMissing
	}
	if f.Changed("log-level") {
		cfg.LogLevel = flagged.LogLevel
	}
}

func runCoverage(cfg config.Config, docPath string, stdout, stderr io.Writer) error {
	// Reject bad settings before touching any file.
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	matcher, err := match.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	kinds, err := catalog.ParseKinds(cfg.Kinds)
	if err != nil {
		return err
	}

	log := logging.New(stderr, cfg.LogLevel)
	started := time.Now()

	cat, err := catalog.LoadAll(cfg.Catalogs)
	if err != nil {
		return err
	}
	log.Debug().
		Strs("catalogs", cfg.Catalogs).
		Int("functions", len(cat.Functions)).
		Int("macros", len(cat.Macros)).
		Int("enums", len(cat.Enums)).
		Msg("catalog loaded")

	files, err := discover.Files(cfg.SourceDir, cfg.Extensions, discover.Options{
		RespectGitignore: cfg.RespectGitignore,
	})
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		log.Warn().Str("dir", cfg.SourceDir).Strs("ext", cfg.Extensions).Msg("no source files found")
	}
	for _, f := range files {
		log.Debug().Str("file", f.Path).Msg("scanning")
	}

	symbols := catalog.Select(cat, kinds)
	symbols = catalog.Exclude(symbols, cfg.Ignore)
	symbols = catalog.FilterPrefix(symbols, cfg.Prefix)
	cov, err := match.Run(symbols, files, discover.Dir{Root: cfg.SourceDir}, matcher, match.Options{
		SkipUnreadable: cfg.SkipUnreadable,
		Logger:         log,
	})
	if err != nil {
		return err
	}

	if err := report.Write(stdout, cov, report.Options{
		Format:          format,
		ShowImplemented: cfg.ShowImplemented,
	}); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if docPath != "" {
		if err := writeDocSection(docPath, cov, cfg.Prefix); err != nil {
			return err
		}
		log.Info().Str("path", docPath).Msg("wrote coverage section")
	}

	log.Debug().Dur("elapsed", time.Since(started)).Msg("done")

	if cfg.FailOnMissing && len(cov.Missing) > 0 {
		return fmt.Errorf("%d of %d symbols missing", len(cov.Missing), cov.Total())
	}
	return nil
}
