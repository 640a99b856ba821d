// Package cli assembles deltalogctl's command tree. Each subcommand is a
// thin wrapper over the deltalog library; none of them carry business
// logic of their own.
package cli

import "github.com/spf13/cobra"

// NewRootCmd builds the root deltalogctl command with all subcommands
// attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "deltalogctl",
		Short:         "Inspect deltalog transaction logs",
		Long:          "deltalogctl is an operator inspection tool for deltalog tables: dump commit history, print status, or force a checkpoint.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newLogCmd())
	cmd.AddCommand(newCheckpointCmd())
	return cmd
}
