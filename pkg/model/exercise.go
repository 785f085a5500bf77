package model

// Difficulty grades an exercise by seniority level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Junior"
	DifficultyMedium Difficulty = "Semi-Senior"
	DifficultyHard   Difficulty = "Senior"
)

// Category groups exercises by topic.
type Category string

const (
	CategoryLogic          Category = "Logic"
	CategoryAlgorithms     Category = "Algorithms"
	CategoryDataStructures Category = "Data Structures"
	CategoryConditionals   Category = "Conditionals"
	CategoryLoops          Category = "Loops"
)

// Exercise is one prompt from the catalog.
type Exercise struct {
	ID           string     `json:"id" yaml:"id"`
	Title        string     `json:"title" yaml:"title"`
	Description  string     `json:"description" yaml:"description"`
	Difficulty   Difficulty `json:"difficulty" yaml:"difficulty"`
	Category     Category   `json:"category" yaml:"category"`
	Language     string     `json:"language" yaml:"language"`
	Instructions string     `json:"instructions" yaml:"instructions"`
	InitialCode  string     `json:"initial_code" yaml:"initial_code"`
	Hints        []string   `json:"hints,omitempty" yaml:"hints,omitempty"`
	// Checks is JavaScript executed by the local evaluator after the
	// submission; it throws to fail and may award partial credit via
	// score(). Unused by remote evaluators.
	Checks string `json:"-" yaml:"checks,omitempty"`
}

// EvaluationResult is the outcome of evaluating a submission, whatever
// engine produced it.
type EvaluationResult struct {
	Passed        bool     `json:"passed"`
	Score         float64  `json:"score"` // 0-100
	Feedback      string   `json:"feedback"`
	ConsoleOutput string   `json:"console_output"`
	Suggestions   []string `json:"suggestions"`
}
