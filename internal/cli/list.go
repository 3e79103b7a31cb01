package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the keys in the scope",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, _, cleanup, err := openLarder(cmd.ErrOrStderr())
			if err != nil {
				return sysError("%w", err)
			}
			defer cleanup()

			keys, err := l.Keys()
			if err != nil {
				return sysError("list keys: %w", err)
			}
			if flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), keys)
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}
