package providers

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/attribench/attribench/internal/models"
)

// structuredAnswerSchema validates the JSON payload models are asked to
// emit for the uncertainty task.
const structuredAnswerSchema = `{
  "type": "object",
  "properties": {
    "answer": {"type": ["string", "null"]},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "confidence_label": {"type": "string", "enum": ["low", "medium", "high"]},
    "rationale": {"type": "string"}
  },
  "required": ["answer"]
}`

var answerSchema *jsonschema.Schema

func init() {
	answerSchema = mustCompileSchema(structuredAnswerSchema, "structured_answer.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

var jsonBlockRE = regexp.MustCompile(`(?s)\{.*\}`)

// structuredWire mirrors the payload fields with pointers so presence can
// be distinguished from zero values.
type structuredWire struct {
	Answer     *string  `json:"answer"`
	Confidence *float64 `json:"confidence"`
	Label      *string  `json:"confidence_label"`
	Rationale  *string  `json:"rationale"`
}

// ParseStructuredAnswer recovers a structured payload from raw model
// output: markdown fences are stripped, the first JSON object located,
// and the result validated against the payload schema. Output that
// cannot be recovered or fails validation yields an answer with every
// presence flag cleared — parsing never fails the record.
func ParseStructuredAnswer(raw string) *models.StructuredAnswer {
	empty := &models.StructuredAnswer{}

	text := strings.ReplaceAll(raw, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	candidate := jsonBlockRE.FindString(text)
	if candidate == "" {
		return empty
	}

	var value any
	if err := json.Unmarshal([]byte(candidate), &value); err != nil {
		return empty
	}
	if err := answerSchema.Validate(value); err != nil {
		return empty
	}

	var wire structuredWire
	if err := json.Unmarshal([]byte(candidate), &wire); err != nil {
		return empty
	}

	out := &models.StructuredAnswer{}
	if wire.Answer != nil {
		out.Answer = *wire.Answer
		out.HasAnswer = true
	}
	if wire.Confidence != nil {
		out.Confidence = *wire.Confidence
		out.HasConfidence = true
	}
	if wire.Label != nil {
		out.Label = strings.ToLower(*wire.Label)
		out.HasLabel = true
	}
	if wire.Rationale != nil {
		out.Rationale = *wire.Rationale
		out.HasRationale = true
	}
	return out
}
