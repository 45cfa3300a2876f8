package gateway

import (
	"testing"

	"google.golang.org/genai"
)

func TestTruncated(t *testing.T) {
	hit := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{FinishReason: genai.FinishReasonMaxTokens},
		},
	}
	if !truncated(hit) {
		t.Error("expected max-tokens finish to report truncated")
	}

	done := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{FinishReason: genai.FinishReasonStop},
		},
	}
	if truncated(done) {
		t.Error("natural stop should not report truncated")
	}

	empty := &genai.GenerateContentResponse{}
	if truncated(empty) {
		t.Error("response without candidates should not report truncated")
	}
}
