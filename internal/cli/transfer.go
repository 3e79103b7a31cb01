package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/pkg/store"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the scope as one JSON object",
		Long: `Export prints every readable entry of the scope as a JSON object
keyed by entry key. Entries that are not valid JSON are skipped with a warning.`,
		Args: cobra.NoArgs,
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
			out := make(map[string]json.RawMessage, len(keys))
			for _, k := range keys {
				got := store.Load[json.RawMessage](l.Store, k, nil)
				if !got.Found {
					if got.Err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "warning: skipping %q: %v\n", k, got.Err)
					}
					continue
				}
				out[k] = got.Value
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Store every member of a JSON object file",
		Long: `Import reads a JSON object (such as the output of export) and stores
each member under its name. Use "-" to read standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = readAll(cmd)
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return userError("read %s: %w", args[0], err)
			}

			var entries map[string]json.RawMessage
			if err := json.Unmarshal(data, &entries); err != nil {
				return userError("parse %s: expected a JSON object: %w", args[0], err)
			}

			l, _, cleanup, err := openLarder(cmd.ErrOrStderr())
			if err != nil {
				return sysError("%w", err)
			}
			defer cleanup()

			var failed []string
			for _, k := range slices.Sorted(maps.Keys(entries)) {
				if res := l.Set(k, entries[k]); !res.OK {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %q not imported: %v\n", k, res.Err)
					failed = append(failed, k)
				}
			}

			imported := len(entries) - len(failed)
			if len(failed) > 0 {
				return userError("imported %d of %d entries", imported, len(entries))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries\n", imported)
			return nil
		},
	}
}

func readAll(cmd *cobra.Command) ([]byte, error) {
	return io.ReadAll(cmd.InOrStdin())
}
