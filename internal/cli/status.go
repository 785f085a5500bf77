package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		Long:  "Validates any stored credential against the backend and shows the bound identity.",
		RunE: func(cmd *cobra.Command, args []string) error {
			machine, _, err := newMachine()
			if err != nil {
				return err
			}

			// No launch URL: the resolver sees only the stored credential
			// (restored path) or nothing (standalone).
			bare := &url.URL{Scheme: "https", Host: "tool.local", Path: "/"}
			if _, err := machine.Launch(cmd.Context(), bare); err != nil {
				fmt.Printf("Phase: %s\n", machine.Phase())
				if msg := machine.Message(); msg != "" {
					fmt.Printf("Note:  %s\n", msg)
				}
				return err
			}

			printSession(machine.Session())
			return nil
		},
	}
}
