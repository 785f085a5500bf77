package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/codelab/internal/credstore"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := credstore.NewFileStore(flagCredentials)
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Println("Session credential cleared.")
			return nil
		},
	}
}
