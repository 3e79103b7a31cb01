package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <key>",
		Aliases: []string{"rm", "delete"},
		Short:   "Remove the entry under a key",
		Long:    "Remove deletes the entry under key. Removing a missing key succeeds.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			l, _, cleanup, err := openLarder(cmd.ErrOrStderr())
			if err != nil {
				return sysError("%w", err)
			}
			defer cleanup()

			if res := l.Remove(key); !res.OK {
				return userError("remove %q: %w", key, res.Err)
			}
			if flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), status{OK: true, Key: key})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %q\n", key)
			return nil
		},
	}
}

func newClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every entry in the scope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return userError("clear removes every entry in the scope; pass --yes to confirm")
			}

			l, st, cleanup, err := openLarder(cmd.ErrOrStderr())
			if err != nil {
				return sysError("%w", err)
			}
			defer cleanup()

			if res := l.Clear(); !res.OK {
				return userError("clear: %w", res.Err)
			}
			scope := st.store.GetScope()
			if flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), status{OK: true, Scope: scope})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared scope %s\n", scope)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm removing every entry")
	return cmd
}
