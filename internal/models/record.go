package models

import "fmt"

// Task identifies one of the four scoring pipelines.
type Task string

const (
	TaskAnalytic    Task = "analytic"
	TaskCitation    Task = "citation"
	TaskFactuality  Task = "factuality"
	TaskUncertainty Task = "uncertainty"
)

// ParseTask converts a string (e.g. from a suite file) to a Task.
func ParseTask(s string) (Task, error) {
	switch Task(s) {
	case TaskAnalytic, TaskCitation, TaskFactuality, TaskUncertainty:
		return Task(s), nil
	default:
		return "", fmt.Errorf("invalid task %q: must be analytic, citation, factuality, or uncertainty", s)
	}
}

// Category classifies a record within its task.
type Category string

const (
	CategoryFactual      Category = "factual"
	CategoryAmbiguous    Category = "ambiguous"
	CategoryUnanswerable Category = "unanswerable"

	CategoryMath          Category = "math"
	CategoryTranslation   Category = "translation"
	CategorySummarization Category = "summarization"
)

// EvaluationRecord is one scored unit: a single model response paired with
// its gold reference payload. Records are created when a response is
// received and never mutated afterwards.
type EvaluationRecord struct {
	ID          string   `json:"id"`
	ModelOutput string   `json:"model_output"`
	Category    Category `json:"category,omitempty"`
	Gold        Gold     `json:"gold"`

	// Structured holds the parsed payload for tasks where the model was
	// asked to emit JSON (answer/confidence/rationale). Nil when the task
	// expects free text.
	Structured *StructuredAnswer `json:"structured,omitempty"`
}

// Gold is the task-specific reference payload. Only the fields relevant to
// the record's task are populated; metric computers check the fields they
// need and skip records that are missing them.
type Gold struct {
	// Analytic operations
	Answer      string `json:"gold_answer,omitempty"`
	SourceText  string `json:"source_text,omitempty"`
	Translation string `json:"gold_translation,omitempty"`
	Summary     string `json:"gold_summary,omitempty"`

	// Factuality (reference-set comparison)
	TrueRefs  []string `json:"true_refs,omitempty"`
	FalseRefs []string `json:"false_refs,omitempty"`

	// Hallucination (known-answer comparison)
	RightAnswer        string `json:"right_answer,omitempty"`
	HallucinatedAnswer string `json:"hallucinated_answer,omitempty"`
	Knowledge          string `json:"knowledge,omitempty"`
}

// StructuredAnswer is the parsed form of a structured model payload.
// Presence flags are explicit so metric code never guesses whether a
// field was emitted or merely zero-valued.
type StructuredAnswer struct {
	Answer        string  `json:"answer,omitempty"`
	HasAnswer     bool    `json:"has_answer"`
	Confidence    float64 `json:"confidence,omitempty"`
	HasConfidence bool    `json:"has_confidence"`
	Label         string  `json:"confidence_label,omitempty"`
	HasLabel      bool    `json:"has_label"`
	Rationale     string  `json:"rationale,omitempty"`
	HasRationale  bool    `json:"has_rationale"`
}

// ConfidenceOrDefault returns the stated confidence, or def when the
// payload carried none.
func (s *StructuredAnswer) ConfidenceOrDefault(def float64) float64 {
	if s == nil || !s.HasConfidence {
		return def
	}
	return s.Confidence
}
