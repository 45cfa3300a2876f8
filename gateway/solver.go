// Long-form problem solving with extended model thinking.
//
// Information Hiding:
// - Thinking budget configuration
// - Continuation stitching when an answer exceeds one response

package gateway

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	// solverThinkingBudget caps the tokens the model may spend on
	// internal reasoning before it starts answering.
	solverThinkingBudget int32 = 8192

	// solverMaxContinuations bounds how many times a truncated answer
	// is asked to continue before the loop gives up.
	solverMaxContinuations = 4
)

// Solver handles long-form problems: proofs, multi-step math, deep
// analysis. Responses that hit the output-token ceiling are stitched
// together through continuation turns, so callers see one answer.
type Solver struct {
	client  *genai.Client
	model   string
	initErr error
}

// NewSolver creates a solver on the deep-think model.
func NewSolver(apiKey string) *Solver {
	client, err := newGeminiClient(apiKey)
	return &Solver{client: client, model: ModelGeminiDeepThink3, initErr: err}
}

// Solve works the problem to completion and returns the full answer.
func (s *Solver) Solve(ctx context.Context, problem string) (string, error) {
	if s.initErr != nil {
		return "", s.initErr
	}
	if strings.TrimSpace(problem) == "" {
		return "", fmt.Errorf("empty problem statement")
	}

	config := &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(solverThinkingBudget),
		},
	}

	contents := []*genai.Content{
		genai.NewContentFromText(problem, genai.RoleUser),
	}

	var answer strings.Builder
	for attempt := 0; ; attempt++ {
		response, err := s.client.Models.GenerateContent(ctx, s.model, contents, config)
		if err != nil {
			return "", fmt.Errorf("solve failed: %w", err)
		}

		text := response.Text()
		if text == "" && answer.Len() == 0 {
			return "", fmt.Errorf("empty answer from model")
		}
		answer.WriteString(text)

		if !truncated(response) || attempt >= solverMaxContinuations {
			break
		}

		contents = append(contents,
			genai.NewContentFromText(text, genai.RoleModel),
			genai.NewContentFromText("Continue exactly where you left off.", genai.RoleUser),
		)
	}

	return answer.String(), nil
}

// truncated reports whether the response stopped because it ran out of
// output tokens rather than finishing naturally.
func truncated(response *genai.GenerateContentResponse) bool {
	for _, candidate := range response.Candidates {
		if candidate != nil && candidate.FinishReason == genai.FinishReasonMaxTokens {
			return true
		}
	}
	return false
}
