package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/recera/vex/cmd/vex/internal/config"
	"github.com/recera/vex/cmd/vex/internal/template"
	"github.com/recera/vex/cmd/vex/internal/ui"
	"github.com/recera/vex/internal/cache"
)

var (
	version = "0.1.0-preview"
	commit  = "dev"
	date    = "unknown"
)

// errReported is returned once diagnostics have been printed
var errReported = errors.New("vex: errors reported")

// globalOptions are shared by every command
type globalOptions struct {
	configDir string
	verbose   bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if err != errReported {
			fmt.Fprintln(os.Stderr, ui.RenderError(nil, err))
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:   "vex",
		Short: "vex - markup blocks for Go",
		Long: `vex compiles @vex { ... } markup blocks embedded in .vex Go files into
plain Go that builds a virtual DOM tree through the builder package.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configDir, "config", ".", "Directory containing "+config.FileName)
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log every processed file")

	rootCmd.AddCommand(newGenCommand(opts))
	rootCmd.AddCommand(newCheckCommand(opts))
	rootCmd.AddCommand(newDumpCommand(opts))
	return rootCmd
}

// session is the state a command runs with
type session struct {
	cfg    *config.Config
	fs     afero.Fs
	logger *slog.Logger
}

func newSession(cmd *cobra.Command, opts *globalOptions) (*session, error) {
	cfg, err := config.Load(opts.configDir)
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	logger := slog.New(handler).With("component", "vex")

	return &session{cfg: cfg, fs: afero.NewOsFs(), logger: logger}, nil
}

func (s *session) expander() *template.Expander {
	exp := template.NewExpander(template.Options{
		BuilderPkg:     s.cfg.Builder.Name,
		Stringer:       s.cfg.StringerFunc(),
		LineDirectives: s.cfg.LineDirectives,
	})
	exp.BuilderImport = s.cfg.Builder.Import
	exp.StringerImport = s.cfg.Stringer.Import
	exp.Logger = s.logger
	return exp
}

// processor builds a processor, with the cache unless disabled
func (s *session) processor(useCache bool) (*template.Processor, error) {
	proc := template.NewProcessor(s.fs, s.expander())
	proc.Logger = s.logger

	if useCache && s.cfg.Cache.Enabled {
		cacheConfig := cache.DefaultConfig()
		cacheConfig.Fs = s.fs
		cacheConfig.MaxEntries = s.cfg.Cache.MaxEntries
		if s.cfg.Cache.Dir != "" {
			cacheConfig.Dir = s.cfg.Cache.Dir
		}
		c, err := cache.New(cacheConfig)
		if err != nil {
			// generation still works, only slower
			s.logger.Warn("cache unavailable", "error", err)
		} else {
			proc.Cache = c
		}
	}
	return proc, nil
}

// files resolves the .vex files a command works on: explicit arguments,
// else every file under dir, else under the configured search directories
func (s *session) files(proc *template.Processor, args []string, dir string) ([]string, []string, error) {
	if len(args) > 0 {
		return args, nil, nil
	}

	dirs := s.cfg.SearchDirs
	if dir != "" {
		dirs = []string{dir}
	}

	var files, searched []string
	for _, d := range dirs {
		if ok, _ := afero.DirExists(s.fs, d); !ok {
			continue
		}
		found, err := proc.FindFiles(d)
		if err != nil {
			return nil, nil, err
		}
		files = append(files, found...)
		searched = append(searched, d)
	}
	return files, searched, nil
}

// report prints err with source context and marks it as reported
func (s *session) report(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), ui.RenderError(s.fs, err))
	return errReported
}
