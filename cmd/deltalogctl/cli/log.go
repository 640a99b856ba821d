package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deltalog/deltalog/deltalog"
)

func newLogCmd() *cobra.Command {
	var from, to int64

	cmd := &cobra.Command{
		Use:   "log <root>",
		Short: "Dump the actions committed in a version range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]
			d := deltalog.Open(root)

			latest, err := d.LatestVersion()
			if err != nil {
				return fmt.Errorf("log %s: %w", root, err)
			}
			if latest < 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: no table (no commits)\n", root)
				return nil
			}

			end := to
			if !cmd.Flags().Changed("to") {
				end = latest
			}
			if end > latest {
				end = latest
			}

			for v := from; v <= end; v++ {
				actions, err := d.ReadVersion(v)
				if err != nil {
					return fmt.Errorf("log %s: reading version %d: %w", root, v, err)
				}
				for _, a := range actions {
					line, err := json.Marshal(a)
					if err != nil {
						return fmt.Errorf("log %s: encoding action at version %d: %w", root, v, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", v, a.Type(), line)
				}
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&from, "from", 0, "first version to include")
	cmd.Flags().Int64Var(&to, "to", 0, "last version to include (default: latest)")
	return cmd
}
