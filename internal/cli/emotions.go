package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/pkg/emotion"
)

func newEmotionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "emotions [label]",
		Short: "Print the emotion taxonomy",
		Long: `Emotions prints every emotion label with its color and icon. Given a
label or English name, it prints that emotion only.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := emotion.All()
			if len(args) == 1 {
				e, ok := emotion.Parse(args[0])
				if !ok {
					return userError("unknown emotion %q", args[0])
				}
				info, _ := emotion.Lookup(string(e))
				infos = []emotion.Info{info}
			}

			if flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), infos)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LABEL\tNAME\tCOLOR\tICON")
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.Emotion, info.Name, info.Color, info.Icon)
			}
			return tw.Flush()
		},
	}
}
