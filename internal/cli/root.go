// Package cli implements the larder command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	log "github.com/go-pkgz/lgr"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
	scope     string
	jsonMode  bool
	debug     bool
}

var flags rootFlags

// NewRootCmd creates the top-level "larder" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags = rootFlags{}

	root := &cobra.Command{
		Use:   "larder",
		Short: "A fail-soft JSON key-value store for local state",
		Long: "Larder keeps JSON values under string keys in a local scope.\n" +
			"Reads of missing or corrupt entries fall back to defaults and\n" +
			"failed writes are logged instead of crashing the caller.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLog(cmd.ErrOrStderr(), flags.debug)
		},
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().StringVar(&flags.backend, "backend", "", "storage backend: jsonl, sqlite or memory")
	root.PersistentFlags().StringVar(&flags.scope, "scope", "", "storage scope (default: default)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "debug logging to stderr")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newGetCmd())
	root.AddCommand(newSetCmd())
	root.AddCommand(newRemoveCmd())
	root.AddCommand(newClearCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newEmotionsCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "larder:", err)
	}
	os.Exit(exitCode(err))
}

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// userError marks err as caused by bad input or a failed store operation.
func userError(format string, args ...any) error {
	return &exitError{code: exitUserError, err: fmt.Errorf(format, args...)}
}

// sysError marks err as an environment failure (config, backend).
func sysError(format string, args ...any) error {
	return &exitError{code: exitSysError, err: fmt.Errorf(format, args...)}
}

// exitCode maps a command error to a process exit code. Errors not created
// by userError or sysError come from cobra itself (bad flags or arguments).
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// setupLog configures the global lgr logger.
func setupLog(w io.Writer, debug bool) {
	if debug {
		log.Setup(log.Out(w), log.Err(w), log.Debug, log.Msec, log.CallerFunc)
		return
	}
	log.Setup(log.Out(io.Discard), log.Err(w))
}
