package cli

import (
	"github.com/spf13/cobra"
)

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <json>",
		Short: "Store a JSON value under a key",
		Long: `Set stores a JSON value under key, replacing any previous value,
and prints the stored value.

Example:
  larder set settings '{"theme":"dark"}'
  larder set streak 5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value, err := parseJSONArg("value", args[1])
			if err != nil {
				return err
			}

			l, _, cleanup, err := openLarder(cmd.ErrOrStderr())
			if err != nil {
				return sysError("%w", err)
			}
			defer cleanup()

			if res := l.Set(key, value); !res.OK {
				return userError("set %q: %w", key, res.Err)
			}
			return printJSON(cmd.OutOrStdout(), l.Get(key, value).Value)
		},
	}
}
