package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/pkg/larder"
)

const modulePath = "github.com/mesh-intelligence/larder"

// commit is set at build time with -ldflags.
var commit string

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the larder version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "larder v%s\nmodule: %s\n", larder.Version, modulePath)
			if commit != "" {
				fmt.Fprintf(out, "commit: %s\n", commit)
			}
			return nil
		},
	}
}
