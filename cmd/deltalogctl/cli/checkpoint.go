package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deltalog/deltalog/deltalog"
)

func newCheckpointCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkpoint <root>",
		Short: "Force a checkpoint at the table's current version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]
			d := deltalog.Open(root)

			snap, err := d.Update(cmd.Context())
			if err != nil {
				return fmt.Errorf("checkpoint %s: %w", root, err)
			}
			if snap.Version() < 0 {
				return fmt.Errorf("checkpoint %s: no table (no commits)", root)
			}

			v, err := d.WriteCheckpoint(cmd.Context(), snap)
			if err != nil {
				return fmt.Errorf("checkpoint %s: %w", root, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote checkpoint at version %d (%d actions)\n", v, len(snap.Actions()))
			return nil
		},
	}
}
