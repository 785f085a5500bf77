package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/codelab/internal/exercise"
	"github.com/me/codelab/pkg/model"
)

func newExercisesCmd() *cobra.Command {
	var (
		difficulty  string
		category    string
		catalogPath string
	)

	cmd := &cobra.Command{
		Use:   "exercises",
		Short: "List available exercises",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}

			list := catalog.List(model.Difficulty(difficulty), model.Category(category))
			if len(list) == 0 {
				fmt.Println("No exercises match.")
				return nil
			}
			for _, ex := range list {
				fmt.Printf("%-8s %-12s %-16s %s\n", ex.ID, ex.Difficulty, ex.Category, ex.Title)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&difficulty, "difficulty", "", "Filter by difficulty (Junior, Semi-Senior, Senior)")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog YAML file (default: embedded catalog)")
	return cmd
}

// loadCatalog loads a catalog file, or the embedded default.
func loadCatalog(path string) (*exercise.Catalog, error) {
	if path != "" {
		return exercise.LoadFile(path)
	}
	return exercise.Default()
}
