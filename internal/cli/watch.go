package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/internal/watch"
	"github.com/mesh-intelligence/larder/pkg/types"
)

func newWatchCmd() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print changes other processes make to the scope",
		Long: `Watch follows the scope's storage file and prints every key another
process adds, updates or removes, until interrupted. The memory backend
cannot be watched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, _, cleanup, err := openLarder(cmd.ErrOrStderr())
			if err != nil {
				return sysError("%w", err)
			}
			defer cleanup()

			loc, ok := l.Backend().(types.Locator)
			if !ok {
				return userError("backend does not keep the scope in a file; nothing to watch")
			}

			prev, err := watch.Snapshot(l.Backend())
			if err != nil {
				return sysError("snapshot: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := &watch.Watcher{Path: loc.Path(), Debounce: debounce}
			err = w.Run(ctx, func() error {
				next, err := watch.Snapshot(l.Backend())
				if err != nil {
					return err
				}
				for _, c := range watch.Diff(prev, next) {
					if err := printChange(cmd, c); err != nil {
						return err
					}
				}
				prev = next
				return nil
			})
			if err != nil {
				return sysError("%w", err)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "coalesce bursts of file events")
	return cmd
}

func printChange(cmd *cobra.Command, c watch.Change) error {
	out := cmd.OutOrStdout()
	if flags.jsonMode {
		return printJSON(out, c)
	}
	switch c.Op {
	case watch.Removed:
		fmt.Fprintf(out, "%s %q\n", c.Op, c.Key)
	default:
		fmt.Fprintf(out, "%s %q = %s\n", c.Op, c.Key, c.New)
	}
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
