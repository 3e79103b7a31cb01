package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/pkg/larder"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize larder storage",
		Long:  "Create the configuration directory and a default config.yaml, then initialize the storage backend.",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	st, err := resolveSettings()
	if err != nil {
		return sysError("%w", err)
	}

	if err := os.MkdirAll(st.configDir, 0o755); err != nil {
		return sysError("create config directory: %w", err)
	}

	configPath := filepath.Join(st.configDir, configFileExt)
	written, err := writeConfigIfMissing(configPath, configFile{
		Backend: st.store.Backend,
		DataDir: st.store.DataDir,
		Scope:   st.store.Scope,
		Quota:   humanize.IBytes(uint64(st.store.Quota)),
	})
	if err != nil {
		return sysError("write config: %w", err)
	}

	// Attach then detach to create the data directory and scope.
	l, err := larder.Open(st.store)
	if err != nil {
		return sysError("initialize storage: %w", err)
	}
	if err := l.Close(); err != nil {
		return sysError("finalize storage: %w", err)
	}

	out := cmd.OutOrStdout()
	if written {
		fmt.Fprintf(out, "Wrote %s\n", configPath)
	}
	fmt.Fprintf(out, "Initialized %s store in %s (scope %s)\n", st.store.Backend, st.store.DataDir, st.store.GetScope())
	return nil
}
