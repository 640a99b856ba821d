package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deltalog/deltalog/deltalog"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <root>",
		Short: "Print a table's latest version, live file count, and checkpoint state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]
			d := deltalog.Open(root)

			if !d.TableExists() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: no table (no commits)\n", root)
				return nil
			}

			snap, err := d.Update(cmd.Context())
			if err != nil {
				return fmt.Errorf("status %s: %w", root, err)
			}

			checkpoint, err := d.FindLatestCheckpoint()
			if err != nil {
				return fmt.Errorf("status %s: %w", root, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "root:          %s\n", root)
			fmt.Fprintf(cmd.OutOrStdout(), "latestVersion: %d\n", snap.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "liveFiles:     %d\n", len(snap.AllFiles()))
			if checkpoint != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "checkpoint:    version=%d size=%d\n", checkpoint.Version, checkpoint.Size)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "checkpoint:    none\n")
			}
			if snap.Metadata() != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "metadata:      id=%s name=%s format=%s\n",
					snap.Metadata().ID, snap.Metadata().Name, snap.Metadata().Format)
			}
			return nil
		},
	}
}
