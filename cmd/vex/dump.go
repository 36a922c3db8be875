package main

import (
	"fmt"
	"regexp"

	"github.com/pkg/errors"
	"github.com/sanity-io/litter"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/recera/vex/cmd/vex/internal/template"
)

// litterPosFields matches the position field carried by every node
var litterPosFields = regexp.MustCompile(`^Pos$`)

// dumpOptions omits positions, which would drown the tree
var dumpOptions = litter.Options{
	HidePrivateFields: true,
	FieldExclusions:   litterPosFields,
	Compact:           false,
	StripPackageNames: true,
}

func newDumpCommand(opts *globalOptions) *cobra.Command {
	var (
		withCode      bool
		withPositions bool
	)

	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the parsed blocks of a .vex file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, opts)
			if err != nil {
				return err
			}
			src, err := afero.ReadFile(s.fs, args[0])
			if err != nil {
				return errors.Wrap(err, "failed to read file")
			}

			blocks, err := template.ParseBlocks(args[0], src)
			if err != nil {
				return s.report(cmd, err)
			}

			dumper := dumpOptions
			if withPositions {
				dumper.FieldExclusions = nil
			}
			exp := s.expander()
			for i, b := range blocks {
				fmt.Fprintf(cmd.OutOrStdout(), "// block %d at offset %d\n", i, b.Start)
				fmt.Fprintln(cmd.OutOrStdout(), dumper.Sdump(b.Input))
				if withCode {
					gen := template.NewGenerator(exp.Options)
					fmt.Fprintln(cmd.OutOrStdout(), gen.Expr(b.Input))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withCode, "code", false, "Also print the generated Go for each block")
	cmd.Flags().BoolVar(&withPositions, "positions", false, "Include source positions")
	return cmd
}
