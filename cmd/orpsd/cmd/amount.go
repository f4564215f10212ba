package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"onchainrps/internal/amount"
)

func AmountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "amount",
		Short: "Convert between token amounts and base units",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:     "parse <amount>",
			Short:   "Print base units for a decimal amount, e.g. 0.01",
			Args:    cobra.ExactArgs(1),
			Example: "  orpsd amount parse 0.01",
			RunE: func(cmd *cobra.Command, args []string) error {
				u, err := amount.Parse(args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), u)
				return err
			},
		},
		&cobra.Command{
			Use:   "format <base-units>",
			Short: "Print the decimal amount for base units",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				u, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid base units %q: %w", args[0], err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), amount.Format(u))
				return err
			},
		},
	)
	return cmd
}
