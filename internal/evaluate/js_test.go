package evaluate

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/me/codelab/pkg/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testEvaluator() *JSEvaluator {
	return NewJSEvaluator(2*time.Second, testLogger())
}

func evalCode(t *testing.T, ex *model.Exercise, code string) *model.EvaluationResult {
	t.Helper()
	res, err := testEvaluator().Evaluate(context.Background(), ex, code)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	return res
}

func TestEvaluateNoChecksCleanRun(t *testing.T) {
	ex := &model.Exercise{ID: "x"}
	res := evalCode(t, ex, `const a = 1 + 1;`)

	if !res.Passed || res.Score != 100 {
		t.Errorf("result = %+v, want passed with score 100", res)
	}
}

func TestEvaluateChecksPass(t *testing.T) {
	ex := &model.Exercise{
		ID: "sum",
		Checks: `
			if (typeof sum !== "function") fail("define a sum function");
			if (sum(2, 3) !== 5) fail("sum(2, 3) should be 5");
		`,
	}
	res := evalCode(t, ex, `function sum(a, b) { return a + b; }`)

	if !res.Passed {
		t.Fatalf("result = %+v, want passed", res)
	}
	if res.Score != 100 {
		t.Errorf("Score = %v, want 100", res.Score)
	}
}

func TestEvaluateChecksFail(t *testing.T) {
	ex := &model.Exercise{
		ID:     "sum",
		Checks: `if (sum(2, 3) !== 5) fail("sum(2, 3) should be 5");`,
	}
	res := evalCode(t, ex, `function sum(a, b) { return a - b; }`)

	if res.Passed {
		t.Fatalf("result = %+v, want failed", res)
	}
	if res.Score != 0 {
		t.Errorf("Score = %v, want 0", res.Score)
	}
	if !strings.Contains(res.Feedback, "sum(2, 3) should be 5") {
		t.Errorf("Feedback = %q, want the fail() message", res.Feedback)
	}
}

func TestEvaluatePartialCredit(t *testing.T) {
	ex := &model.Exercise{
		ID: "partial",
		Checks: `
			score(40);
			if (answer() !== 42) fail("wrong answer");
		`,
	}
	res := evalCode(t, ex, `function answer() { return 7; }`)

	if res.Passed {
		t.Fatal("want failed")
	}
	if res.Score != 40 {
		t.Errorf("Score = %v, want 40 (partial credit before fail)", res.Score)
	}
}

func TestEvaluateExplicitScoreOnPass(t *testing.T) {
	ex := &model.Exercise{
		ID:     "scored",
		Checks: `score(85);`,
	}
	res := evalCode(t, ex, `const ok = true;`)

	if !res.Passed || res.Score != 85 {
		t.Errorf("result = %+v, want passed with score 85", res)
	}
}

func TestEvaluateRuntimeError(t *testing.T) {
	ex := &model.Exercise{ID: "x"}
	res := evalCode(t, ex, `undefinedFn();`)

	if res.Passed || res.Score != 0 {
		t.Errorf("result = %+v, want failed with score 0", res)
	}
	if !strings.Contains(res.ConsoleOutput, "undefinedFn") {
		t.Errorf("ConsoleOutput = %q, want the exception message", res.ConsoleOutput)
	}
}

func TestEvaluateInfiniteLoopInterrupted(t *testing.T) {
	ev := NewJSEvaluator(200*time.Millisecond, testLogger())
	ex := &model.Exercise{ID: "loop"}

	start := time.Now()
	res, err := ev.Evaluate(context.Background(), ex, `while (true) {}`)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("interrupt took %v", elapsed)
	}

	if res.Passed {
		t.Fatal("want failed")
	}
	if !strings.Contains(res.Feedback, "time limit") {
		t.Errorf("Feedback = %q, want a time limit message", res.Feedback)
	}
}

func TestEvaluateContextCancellation(t *testing.T) {
	ev := NewJSEvaluator(time.Minute, testLogger())
	ex := &model.Exercise{ID: "loop"}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	res, err := ev.Evaluate(ctx, ex, `while (true) {}`)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Passed {
		t.Error("canceled run must not pass")
	}
}

func TestEvaluateConsoleCapture(t *testing.T) {
	ex := &model.Exercise{
		ID: "hello",
		Checks: `
			if (consoleOutput().indexOf("hello world") === -1) {
				fail("print hello world");
			}
		`,
	}
	res := evalCode(t, ex, `console.log("hello", "world");`)

	if !res.Passed {
		t.Fatalf("result = %+v, want passed", res)
	}
	if res.ConsoleOutput != "hello world\n" {
		t.Errorf("ConsoleOutput = %q", res.ConsoleOutput)
	}
}

func TestEvaluateSuggestions(t *testing.T) {
	ex := &model.Exercise{
		ID:     "style",
		Checks: `suggest("consider naming the constant");`,
	}
	res := evalCode(t, ex, `var x = 1;`)

	var hasVarNote, hasCheckNote bool
	for _, s := range res.Suggestions {
		if strings.Contains(s, "const or let") {
			hasVarNote = true
		}
		if strings.Contains(s, "naming the constant") {
			hasCheckNote = true
		}
	}
	if !hasVarNote {
		t.Errorf("Suggestions = %v, want a var lint note", res.Suggestions)
	}
	if !hasCheckNote {
		t.Errorf("Suggestions = %v, want the suggest() note", res.Suggestions)
	}
}
