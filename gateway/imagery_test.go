package gateway

import (
	"bytes"
	"testing"

	"google.golang.org/genai"
)

func TestFirstInlineData(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4e, 0x47}
	response := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{Text: "here is your image"},
						{InlineData: &genai.Blob{MIMEType: "image/png", Data: payload}},
					},
				},
			},
		},
	}

	data, mime := firstInlineData(response)
	if !bytes.Equal(data, payload) {
		t.Errorf("expected inline payload returned, got %v", data)
	}
	if mime != "image/png" {
		t.Errorf("expected image/png, got %q", mime)
	}
}

func TestFirstInlineDataDefaultsMIME(t *testing.T) {
	response := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{InlineData: &genai.Blob{Data: []byte{1}}},
					},
				},
			},
		},
	}

	if _, mime := firstInlineData(response); mime != "image/png" {
		t.Errorf("expected default mime image/png, got %q", mime)
	}
}

func TestFirstInlineDataTextOnly(t *testing.T) {
	response := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: "no image"}}}},
			nil,
		},
	}

	if data, _ := firstInlineData(response); data != nil {
		t.Errorf("expected no inline data, got %d bytes", len(data))
	}
}
