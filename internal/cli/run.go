package cli

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/codelab/internal/evaluate"
	"github.com/me/codelab/internal/grade"
)

func newRunCmd() *cobra.Command {
	var (
		file        string
		catalogPath string
		remote      bool
		noSubmit    bool
	)

	cmd := &cobra.Command{
		Use:   "run <exercise-id>",
		Short: "Evaluate a submission and report the score",
		Long: "Evaluates the code file against the exercise's checks and, when a\n" +
			"session is connected, submits the score through the grade channel.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exerciseID := args[0]

			catalog, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}
			ex, ok := catalog.Get(exerciseID)
			if !ok {
				return fmt.Errorf("exercise %q not found", exerciseID)
			}

			code, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read submission: %w", err)
			}

			// Establish the session first so a grade can follow the result.
			machine, client, err := newMachine()
			if err != nil {
				return err
			}
			bare := &url.URL{Scheme: "https", Host: "tool.local", Path: "/"}
			if _, err := machine.Launch(cmd.Context(), bare); err != nil {
				// An unreachable backend must not block evaluating locally;
				// the run continues disconnected and the grade stays local.
				logger.Warn("continuing without a connected session", "error", err)
			}

			var evaluator evaluate.Evaluator
			if remote {
				evaluator = evaluate.NewRemoteEvaluator(flagServer, flagTimeout, logger)
			} else {
				evaluator = evaluate.NewJSEvaluator(flagTimeout, logger)
			}

			result, err := evaluator.Evaluate(cmd.Context(), ex, string(code))
			if err != nil {
				var svcErr *evaluate.ServiceError
				if errors.As(err, &svcErr) {
					return fmt.Errorf("%s", svcErr.UserMessage())
				}
				return err
			}

			fmt.Printf("Exercise: %s — %s\n", ex.ID, ex.Title)
			if result.Passed {
				fmt.Printf("Result:   PASSED (%.0f/100)\n", result.Score)
			} else {
				fmt.Printf("Result:   FAILED (%.0f/100)\n", result.Score)
			}
			fmt.Printf("Feedback: %s\n", result.Feedback)
			if result.ConsoleOutput != "" {
				fmt.Printf("--- console ---\n%s\n", result.ConsoleOutput)
			}
			for _, s := range result.Suggestions {
				fmt.Printf("  note: %s\n", s)
			}

			if noSubmit {
				return nil
			}

			submitter := grade.NewSubmitter(client, machine.Session(), logger)
			if submitter.Submit(cmd.Context(), result.Score) {
				fmt.Printf("Grade synced: %.0f/100\n", result.Score)
			} else {
				fmt.Println("Grade not synced (will remain local).")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Code file to evaluate (required)")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog YAML file (default: embedded catalog)")
	cmd.Flags().BoolVar(&remote, "remote", false, "Evaluate on the backend instead of locally")
	cmd.Flags().BoolVar(&noSubmit, "no-submit", false, "Skip grade submission")
	cmd.MarkFlagRequired("file")
	return cmd
}
