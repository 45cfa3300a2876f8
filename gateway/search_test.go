package gateway

import (
	"testing"

	"google.golang.org/genai"
)

func groundedResponse(chunks ...*genai.GroundingChunk) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				GroundingMetadata: &genai.GroundingMetadata{
					GroundingChunks: chunks,
				},
			},
		},
	}
}

func TestExtractCitations(t *testing.T) {
	response := groundedResponse(
		&genai.GroundingChunk{Web: &genai.GroundingChunkWeb{Title: "Example", URI: "https://example.com/a"}},
		&genai.GroundingChunk{Web: &genai.GroundingChunkWeb{Title: "Other", URI: "https://example.com/b"}},
	)

	citations := extractCitations(response)
	if len(citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(citations))
	}
	if citations[0].Title != "Example" || citations[0].URI != "https://example.com/a" {
		t.Errorf("unexpected first citation: %+v", citations[0])
	}
}

func TestExtractCitationsDeduplicates(t *testing.T) {
	response := groundedResponse(
		&genai.GroundingChunk{Web: &genai.GroundingChunkWeb{Title: "Dup", URI: "https://example.com/a"}},
		&genai.GroundingChunk{Web: &genai.GroundingChunkWeb{Title: "Dup again", URI: "https://example.com/a"}},
	)

	citations := extractCitations(response)
	if len(citations) != 1 {
		t.Fatalf("expected duplicate URI collapsed to 1 citation, got %d", len(citations))
	}
	if citations[0].Title != "Dup" {
		t.Errorf("expected first-seen title kept, got %q", citations[0].Title)
	}
}

func TestExtractCitationsSkipsNonWeb(t *testing.T) {
	response := groundedResponse(
		nil,
		&genai.GroundingChunk{},
		&genai.GroundingChunk{Web: &genai.GroundingChunkWeb{Title: "No URI"}},
	)

	if citations := extractCitations(response); len(citations) != 0 {
		t.Errorf("expected no citations from malformed chunks, got %d", len(citations))
	}
}

func TestExtractCitationsNoMetadata(t *testing.T) {
	response := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{}},
	}
	if citations := extractCitations(response); citations != nil {
		t.Errorf("expected nil citations without grounding metadata, got %v", citations)
	}
}
