package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	var defaultJSON string

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value stored under a key",
		Long: `Get prints the JSON value stored under key. When the key is absent,
or its entry cannot be decoded, the --default value is printed instead.

Example:
  larder get settings
  larder get streak --default 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := parseJSONArg("--default", defaultJSON)
			if err != nil {
				return err
			}

			l, _, cleanup, err := openLarder(cmd.ErrOrStderr())
			if err != nil {
				return sysError("%w", err)
			}
			defer cleanup()

			got := l.Get(args[0], def)
			if got.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %q is unreadable, using default: %v\n", args[0], got.Err)
			}
			return printJSON(cmd.OutOrStdout(), got.Value)
		},
	}
	cmd.Flags().StringVar(&defaultJSON, "default", "null", "JSON value printed when the key is absent or unreadable")
	return cmd
}
