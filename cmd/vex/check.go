package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recera/vex/cmd/vex/internal/ui"
)

func newCheckCommand(opts *globalOptions) *cobra.Command {
	var directory string

	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Report syntax errors in .vex files without writing output",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, opts)
			if err != nil {
				return err
			}
			proc, err := s.processor(false)
			if err != nil {
				return err
			}
			files, _, err := s.files(proc, args, directory)
			if err != nil {
				return err
			}

			if err := proc.CheckFiles(files); err != nil {
				return s.report(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success("%d files ok", len(files)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&directory, "dir", "d", "", "Directory to search for .vex files")
	return cmd
}
