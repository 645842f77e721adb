package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRangesCmd creates the command that prints the patterns of mnemonics
func NewRangesCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "begone-ranges [flags] <mnemonic> [mnemonic...]",
		Short:         "Print the number-range patterns assigned to operator mnemonics",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer rt.close()

			out := cmd.OutOrStdout()
			for _, mnemonic := range args {
				patterns, err := rt.fetcher.FetchRanges(cmd.Context(), mnemonic)
				if err != nil {
					return err
				}
				if len(args) > 1 {
					fmt.Fprintf(out, "%s:\n", mnemonic)
				}
				for _, p := range patterns {
					fmt.Fprintln(out, p)
				}
			}
			return nil
		},
	}

	opts.register(cmd)
	return cmd
}
