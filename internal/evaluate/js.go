package evaluate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/me/codelab/pkg/model"
)

// checkPrelude wires the helpers available to an exercise's checks script:
// fail(msg) aborts the checks, score(n) awards explicit credit, suggest(msg)
// adds a review note. consoleOutput() is bound from Go.
const checkPrelude = `
var __check = { failed: false, message: "", score: -1, suggestions: [] };
function fail(msg) {
	__check.failed = true;
	__check.message = String(msg);
	throw new Error(String(msg));
}
function score(n) { __check.score = Number(n); }
function suggest(msg) { __check.suggestions.push(String(msg)); }
`

// JSEvaluator runs JavaScript submissions in an embedded interpreter and
// verifies them with the exercise's checks script. It needs no network and
// backs the standalone mode as well as the server's evaluation endpoint.
type JSEvaluator struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NewJSEvaluator creates a local evaluator. The timeout bounds total
// interpreter time per submission.
func NewJSEvaluator(timeout time.Duration, logger *slog.Logger) *JSEvaluator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &JSEvaluator{
		timeout: timeout,
		logger:  logger.With("component", "evaluator"),
	}
}

// Evaluate runs the submission, then the exercise checks, and produces a
// verdict. A submission that throws or loops past the time limit yields a
// failed result, not an error; errors are reserved for the engine itself
// misbehaving.
func (e *JSEvaluator) Evaluate(ctx context.Context, ex *model.Exercise, code string) (*model.EvaluationResult, error) {
	vm := goja.New()

	var console strings.Builder
	if err := bindConsole(vm, &console); err != nil {
		return nil, &ServiceError{Err: fmt.Errorf("set up interpreter: %w", err)}
	}

	// Bound interpreter time; also honor caller cancellation.
	timer := time.AfterFunc(e.timeout, func() {
		vm.Interrupt("time limit exceeded")
	})
	defer timer.Stop()
	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt("evaluation canceled")
	})
	defer stop()

	suggestions := lintSuggestions(code)

	// 1. Run the student's code.
	if _, err := vm.RunString(code); err != nil {
		return failedResult(err, console.String(), suggestions), nil
	}

	// 2. Run the checks in the same VM so they see the submission's
	// declarations and output.
	if _, err := vm.RunString(checkPrelude); err != nil {
		return nil, &ServiceError{Err: fmt.Errorf("check prelude: %w", err)}
	}
	checks := ex.Checks
	if checks == "" {
		// No checks defined: running cleanly is the whole exercise.
		return &model.EvaluationResult{
			Passed:        true,
			Score:         100,
			Feedback:      "The code ran without errors.",
			ConsoleOutput: console.String(),
			Suggestions:   suggestions,
		}, nil
	}
	_, checkErr := vm.RunString(checks)

	state, err := readCheckState(vm)
	if err != nil {
		return nil, &ServiceError{Err: err}
	}
	suggestions = append(suggestions, state.Suggestions...)

	if checkErr != nil || state.Failed {
		msg := state.Message
		if msg == "" {
			msg = exceptionMessage(checkErr)
		}
		sc := 0.0
		if state.Failed && state.Score > 0 {
			sc = state.Score // partial credit awarded before failing
		}
		return &model.EvaluationResult{
			Passed:        false,
			Score:         sc,
			Feedback:      msg,
			ConsoleOutput: console.String(),
			Suggestions:   suggestions,
		}, nil
	}

	// Checks completed without fail(): the submission passes, possibly
	// with an explicit partial score.
	sc := 100.0
	if state.Score >= 0 {
		sc = state.Score
	}
	return &model.EvaluationResult{
		Passed:        true,
		Score:         sc,
		Feedback:      "All checks passed.",
		ConsoleOutput: console.String(),
		Suggestions:   suggestions,
	}, nil
}

type checkState struct {
	Failed      bool     `json:"failed"`
	Message     string   `json:"message"`
	Score       float64  `json:"score"`
	Suggestions []string `json:"suggestions"`
}

func readCheckState(vm *goja.Runtime) (*checkState, error) {
	val, err := vm.RunString("JSON.stringify(__check)")
	if err != nil {
		return nil, fmt.Errorf("read check state: %w", err)
	}
	var state checkState
	if err := json.Unmarshal([]byte(val.String()), &state); err != nil {
		return nil, fmt.Errorf("decode check state: %w", err)
	}
	return &state, nil
}

// bindConsole installs a console.log that appends to out, plus a
// consoleOutput() accessor for checks scripts.
func bindConsole(vm *goja.Runtime, out *strings.Builder) error {
	log := func(call goja.FunctionCall) goja.Value {
		parts := make([]string, 0, len(call.Arguments))
		for _, a := range call.Arguments {
			parts = append(parts, fmt.Sprintf("%v", a.Export()))
		}
		out.WriteString(strings.Join(parts, " "))
		out.WriteByte('\n')
		return goja.Undefined()
	}

	console := vm.NewObject()
	if err := console.Set("log", log); err != nil {
		return err
	}
	if err := vm.Set("console", console); err != nil {
		return err
	}
	return vm.Set("consoleOutput", func() string { return out.String() })
}

// failedResult turns a student-code exception or interrupt into a verdict.
func failedResult(err error, consoleOut string, suggestions []string) *model.EvaluationResult {
	feedback := "The code failed to run."
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		feedback = "The code exceeded the evaluation time limit. Check for infinite loops."
	}
	return &model.EvaluationResult{
		Passed:        false,
		Score:         0,
		Feedback:      feedback,
		ConsoleOutput: strings.TrimRight(consoleOut+"\n"+exceptionMessage(err), "\n"),
		Suggestions:   suggestions,
	}
}

func exceptionMessage(err error) string {
	if err == nil {
		return ""
	}
	var exc *goja.Exception
	if errors.As(err, &exc) {
		return exc.Value().String()
	}
	return err.Error()
}

// lintSuggestions produces lightweight style notes on the raw source.
func lintSuggestions(code string) []string {
	var out []string
	if strings.Contains(code, "var ") {
		out = append(out, "Prefer const or let over var.")
	}
	if strings.Contains(code, "== ") && !strings.Contains(code, "=== ") {
		out = append(out, "Prefer strict equality (===) over ==.")
	}
	return out
}
