package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/recera/vex/cmd/vex/internal/ui"
)

func newGenCommand(opts *globalOptions) *cobra.Command {
	var (
		watch     bool
		directory string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "gen [files...]",
		Short: "Generate Go code from .vex files",
		Long: `Compile .vex files into .vex.go files next to them.

If no files are specified, searches the directories listed in vex.yaml
(default: the current directory) for .vex files.

Examples:
  vex gen                          # Compile all .vex files
  vex gen examples/list/list.vex   # Compile a specific file
  vex gen --dir ./templates        # Compile all in directory
  vex gen --watch                  # Watch and recompile on changes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			startTime := time.Now()

			s, err := newSession(cmd, opts)
			if err != nil {
				return err
			}
			proc, err := s.processor(!noCache)
			if err != nil {
				return err
			}

			files, dirs, err := s.files(proc, args, directory)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted("No .vex files found"))
			}

			results, genErr := proc.ProcessFiles(files)
			written, cached := 0, 0
			for _, res := range results {
				if res.Written {
					written++
				}
				if res.Cached {
					cached++
				}
			}
			if len(results) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Compiled %d files (%d written, %d cached) in %v",
					len(results), written, cached, time.Since(startTime).Round(time.Millisecond)))
			}
			if genErr != nil {
				s.report(cmd, genErr)
				if !watch {
					return errReported
				}
			}

			if !watch {
				return nil
			}
			if len(args) > 0 {
				dirs = dirsOf(args)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintln(cmd.OutOrStdout(), ui.Info("Watching for changes... (Press Ctrl+C to stop)"))
			w := &watcher{
				proc:     proc,
				logger:   s.logger,
				debounce: 100 * time.Millisecond,
				onResult: func(file string, err error) {
					if err != nil {
						s.report(cmd, err)
						return
					}
					fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Regenerated %s", file))
				},
			}
			return w.run(ctx, dirs)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Watch for file changes and recompile")
	cmd.Flags().StringVarP(&directory, "dir", "d", "", "Directory to search for .vex files")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Regenerate every file, ignoring the cache")

	return cmd
}
