// Grounded search: chat completion backed by the Google Search tool.
//
// Information Hiding:
// - Tool wiring for search grounding
// - Extraction of citations from grounding metadata

package gateway

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Searcher answers questions grounded in live web results. Unlike the
// plain chat providers it returns citations alongside the text.
type Searcher struct {
	client  *genai.Client
	model   string
	initErr error
}

// NewSearcher creates a grounded-search client on the default model.
func NewSearcher(apiKey string) *Searcher {
	client, err := newGeminiClient(apiKey)
	return &Searcher{client: client, model: ModelGeminiFlash3, initErr: err}
}

// Search runs a single grounded query. The reply text is the model's
// answer; Citations lists the web sources the answer drew on, which may
// be empty when the model answered without consulting search.
func (s *Searcher) Search(ctx context.Context, query string) (Reply, error) {
	if s.initErr != nil {
		return Reply{}, s.initErr
	}
	if query == "" {
		return Reply{}, fmt.Errorf("empty search query")
	}

	contents := []*genai.Content{
		genai.NewContentFromText(query, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	}

	response, err := s.client.Models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return Reply{}, fmt.Errorf("grounded search failed: %w", err)
	}

	text := response.Text()
	if text == "" {
		return Reply{}, fmt.Errorf("empty answer from model")
	}

	return Reply{
		Text:      text,
		Citations: extractCitations(response),
		Usage:     geminiUsage(response),
	}, nil
}

// extractCitations collects the web sources named in grounding
// metadata, deduplicated by URI in first-seen order.
func extractCitations(response *genai.GenerateContentResponse) []Citation {
	var citations []Citation
	seen := make(map[string]bool)

	for _, candidate := range response.Candidates {
		if candidate == nil || candidate.GroundingMetadata == nil {
			continue
		}
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			if seen[chunk.Web.URI] {
				continue
			}
			seen[chunk.Web.URI] = true
			citations = append(citations, Citation{
				Title: chunk.Web.Title,
				URI:   chunk.Web.URI,
			})
		}
	}
	return citations
}
