// Package cli implements the codelab command-line tool: the launch-protocol
// client plus exercise and grading commands built on the reconciled session.
package cli

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/codelab/internal/backend"
	"github.com/me/codelab/internal/config"
	"github.com/me/codelab/internal/credstore"
	"github.com/me/codelab/internal/launch"
	"github.com/me/codelab/internal/logging"
)

var (
	flagServer      string
	flagDebug       bool
	flagLogLevel    string
	flagLogFormat   string
	flagCredentials string
	flagTimeout     time.Duration

	logger *slog.Logger
)

// defaultServer returns the default backend URL, checking CODELAB_SERVER first.
func defaultServer() string {
	if s := os.Getenv("CODELAB_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the codelab CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "codelab",
		Short: "Codelab — LTI code-exercise tool",
		Long:  "Codelab launches from an LMS course, evaluates code submissions, and reports scores back to the gradebook.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLogger(logging.ParseLevel(flagLogLevel), flagLogFormat)
		},
		SilenceUsage: true,
	}

	defaults := config.DefaultToolConfig()

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "Backend URL (or CODELAB_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
	root.PersistentFlags().StringVar(&flagCredentials, "credentials", "", "Credential file path (default ~/.codelab/credentials.json)")
	root.PersistentFlags().DurationVar(&flagTimeout, "timeout", defaults.Timeout, "Backend call timeout")

	root.AddCommand(
		newLaunchCmd(),
		newStatusCmd(),
		newRunCmd(),
		newExercisesCmd(),
		newLogoutCmd(),
	)

	return root
}

// newMachine wires the launch machine from the persistent flags.
func newMachine() (*launch.Machine, *backend.Client, error) {
	store, err := credstore.NewFileStore(flagCredentials)
	if err != nil {
		return nil, nil, err
	}
	client := backend.NewClient(flagServer, flagTimeout, logger)
	machine := launch.NewMachine(store, client, logger,
		launch.WithTimeout(flagTimeout))
	return machine, client, nil
}
