// Image generation, editing, and analysis via the Gemini API.
//
// Information Hiding:
// - Which Gemini model serves each image operation
// - Inline-data encoding of image bytes on the wire

package gateway

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Imagery exposes the gateway's image operations. All three calls are
// stateless request/response; nothing here touches durable storage.
type Imagery struct {
	client  *genai.Client
	initErr error
}

// NewImagery creates the image client. A failed client init is deferred
// and reported on first use, matching the chat provider behavior.
func NewImagery(apiKey string) *Imagery {
	client, err := newGeminiClient(apiKey)
	return &Imagery{client: client, initErr: err}
}

// Generate produces one image from a text prompt via the Imagen model.
// Returns the raw image bytes and their MIME type.
func (im *Imagery) Generate(ctx context.Context, prompt string) ([]byte, string, error) {
	if im.initErr != nil {
		return nil, "", im.initErr
	}

	config := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	}

	response, err := im.client.Models.GenerateImages(ctx, ModelImagen, prompt, config)
	if err != nil {
		return nil, "", fmt.Errorf("image generation failed: %w", err)
	}
	if len(response.GeneratedImages) == 0 || response.GeneratedImages[0].Image == nil {
		return nil, "", fmt.Errorf("no image returned for prompt")
	}

	img := response.GeneratedImages[0].Image
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return img.ImageBytes, mime, nil
}

// Edit applies a text instruction to an existing image using the
// image-out Gemini model and returns the edited image bytes.
func (im *Imagery) Edit(ctx context.Context, instruction string, image []byte, mime string) ([]byte, string, error) {
	if im.initErr != nil {
		return nil, "", im.initErr
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mime),
			genai.NewPartFromText(instruction),
		}, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	response, err := im.client.Models.GenerateContent(ctx, ModelGeminiImage, contents, config)
	if err != nil {
		return nil, "", fmt.Errorf("image edit failed: %w", err)
	}

	data, outMime := firstInlineData(response)
	if len(data) == 0 {
		return nil, "", fmt.Errorf("no edited image in response")
	}
	return data, outMime, nil
}

// Describe answers a question about an image (vision analysis).
// An empty prompt asks for a general description.
func (im *Imagery) Describe(ctx context.Context, prompt string, image []byte, mime string) (string, error) {
	if im.initErr != nil {
		return "", im.initErr
	}

	if prompt == "" {
		prompt = "Describe this image in detail."
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mime),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	response, err := im.client.Models.GenerateContent(ctx, ModelGeminiFlash3, contents, nil)
	if err != nil {
		return "", fmt.Errorf("image analysis failed: %w", err)
	}

	text := response.Text()
	if text == "" {
		return "", fmt.Errorf("empty analysis from model")
	}
	return text, nil
}

// firstInlineData pulls the first inline blob out of a response. Used
// for both image-out and audio-out models.
func firstInlineData(response *genai.GenerateContentResponse) ([]byte, string) {
	for _, candidate := range response.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mime := part.InlineData.MIMEType
				if mime == "" {
					mime = "image/png"
				}
				return part.InlineData.Data, mime
			}
		}
	}
	return nil, ""
}
