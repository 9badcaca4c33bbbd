package providers

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The adequacy and overlap scalars come from an LLM judge: a separate
// model rates each candidate on a 0–10 scale which is normalized to
// [0,1]. The judge model is any ModelClient, so tests substitute a fake.

const adequacyPromptTemplate = `You are evaluating the adequacy of a translation.

Source text: %s
Reference translation: %s
Candidate translation: %s

Rate how completely and accurately the candidate conveys the meaning of
the source, using the reference as a guide. Penalize omissions, additions,
and mistranslations; do not penalize stylistic differences.

End your response with: "SCORE: X" where X is a number from 0 to 10.`

const overlapPromptTemplate = `You are evaluating whether a summary is faithful to a reference summary.

Reference summary: %s
Candidate summary: %s

Rate how much of the reference's factual content the candidate preserves
without introducing facts the reference does not support.

End your response with: "SCORE: X" where X is a number from 0 to 10.`

// JudgeScorer implements the adequacy and overlap contracts with an LLM
// judge.
type JudgeScorer struct {
	judge ModelClient
}

// NewJudgeScorer creates a scorer backed by the given judge model.
func NewJudgeScorer(judge ModelClient) (*JudgeScorer, error) {
	if judge == nil {
		return nil, fmt.Errorf("judge scorer requires a model client")
	}
	return &JudgeScorer{judge: judge}, nil
}

// QualityScore rates a candidate translation in [0,1].
func (s *JudgeScorer) QualityScore(ctx context.Context, source, candidate, reference string) (float64, error) {
	prompt := fmt.Sprintf(adequacyPromptTemplate, source, reference, candidate)
	return s.rate(ctx, prompt)
}

// OverlapScore rates semantic overlap between candidate and reference
// summaries in [0,1].
func (s *JudgeScorer) OverlapScore(ctx context.Context, candidate, reference string) (float64, error) {
	prompt := fmt.Sprintf(overlapPromptTemplate, reference, candidate)
	return s.rate(ctx, prompt)
}

func (s *JudgeScorer) rate(ctx context.Context, prompt string) (float64, error) {
	response, err := s.judge.Complete(ctx, CompletionRequest{Prompt: prompt})
	if err != nil {
		return 0, fmt.Errorf("judge call failed: %w", err)
	}

	score, err := extractScore(response)
	if err != nil {
		return 0, fmt.Errorf("judge response unusable: %w", err)
	}
	return float64(score) / 10.0, nil
}

var scoreRE = regexp.MustCompile(`SCORE:\s*(\d+)`)

// extractScore pulls the 0–10 rating from a judge response.
func extractScore(response string) (int, error) {
	matches := scoreRE.FindStringSubmatch(response)
	if len(matches) < 2 {
		return 0, fmt.Errorf("no SCORE pattern in response %q", truncate(response, 80))
	}

	score, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid score value: %w", err)
	}
	if score < 0 || score > 10 {
		return 0, fmt.Errorf("score out of range: %d", score)
	}
	return score, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
