package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/codelab/internal/launch"
	"github.com/me/codelab/pkg/model"
)

func newLaunchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "launch [url]",
		Short: "Run the launch sequence for a launch URL",
		Long: "Classifies the launch URL (OIDC initiation, fresh or stored credential,\n" +
			"embedded token, or standalone), validates it, and binds the session.\n" +
			"With no URL, resumes from the stored credential or runs standalone.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := "https://tool.local/"
			if len(args) == 1 {
				raw = args[0]
			}
			u, err := url.Parse(raw)
			if err != nil {
				return fmt.Errorf("parse launch URL: %w", err)
			}

			machine, _, err := newMachine()
			if err != nil {
				return err
			}

			res, launchErr := machine.Launch(cmd.Context(), u)

			fmt.Printf("Path:  %s\n", res.Path)
			fmt.Printf("Phase: %s\n", machine.Phase())
			if msg := machine.Message(); msg != "" {
				fmt.Printf("Note:  %s\n", msg)
			}
			if res.Path == launch.PathFreshCredential && res.CleanURL != nil {
				fmt.Printf("URL rewritten to: %s\n", res.CleanURL)
			}
			if launchErr != nil {
				return launchErr
			}

			printSession(machine.Session())
			return nil
		},
	}
}

func printSession(sess *model.Session) {
	if !sess.Connected || sess.Identity == nil {
		fmt.Println("Session: disconnected")
		return
	}
	id := sess.Identity
	fmt.Println("Session: connected")
	fmt.Printf("  User:    %s\n", id.UserID)
	fmt.Printf("  Role:    %s\n", strings.Join(id.Roles, ", "))
	fmt.Printf("  Course:  %s (%s)\n", id.ContextLabel, id.ContextID)
	fmt.Printf("  Source:  %s\n", id.Source)
	if sess.LastGradeSent != nil && sess.LastGradeTime != nil {
		fmt.Printf("  Last grade: %.0f at %s\n",
			*sess.LastGradeSent, sess.LastGradeTime.Format("15:04:05"))
	}
}
