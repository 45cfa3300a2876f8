// Speech synthesis and transcription.
//
// Information Hiding:
// - Which provider and model serve each audio direction
// - PCM-to-WAV container framing for raw model output

package gateway

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Synthesizer turns text into spoken audio.
type Synthesizer interface {
	// Synthesize returns playable audio bytes and their MIME type.
	Synthesize(ctx context.Context, text string) ([]byte, string, error)
}

// Transcriber turns spoken audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mime string) (string, error)
}

const (
	// DefaultVoice is the prebuilt Gemini voice used when none is set.
	DefaultVoice = "Kore"

	// geminiTTSSampleRate is the PCM sample rate of Gemini TTS output.
	geminiTTSSampleRate = 24000
)

// GeminiSpeech serves both audio directions through the Gemini API.
type GeminiSpeech struct {
	client  *genai.Client
	voice   string
	initErr error
}

var _ Synthesizer = (*GeminiSpeech)(nil)
var _ Transcriber = (*GeminiSpeech)(nil)

// NewGeminiSpeech creates the speech client. An empty voice selects
// DefaultVoice.
func NewGeminiSpeech(apiKey, voice string) *GeminiSpeech {
	if voice == "" {
		voice = DefaultVoice
	}
	client, err := newGeminiClient(apiKey)
	return &GeminiSpeech{client: client, voice: voice, initErr: err}
}

// Synthesize reads text aloud with the configured voice. Gemini returns
// raw 16-bit PCM, so the result is wrapped in a WAV container before it
// is handed back.
func (g *GeminiSpeech) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	if g.initErr != nil {
		return nil, "", g.initErr
	}
	if text == "" {
		return nil, "", fmt.Errorf("empty text for speech synthesis")
	}

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: g.voice,
				},
			},
		},
	}

	response, err := g.client.Models.GenerateContent(ctx, ModelGeminiTTS, contents, config)
	if err != nil {
		return nil, "", fmt.Errorf("speech synthesis failed: %w", err)
	}

	pcm, _ := firstInlineData(response)
	if len(pcm) == 0 {
		return nil, "", fmt.Errorf("no audio in response")
	}

	return wavFromPCM(pcm, geminiTTSSampleRate, 1, 16), "audio/wav", nil
}

// Transcribe converts recorded audio into text.
func (g *GeminiSpeech) Transcribe(ctx context.Context, audio []byte, mime string) (string, error) {
	if g.initErr != nil {
		return "", g.initErr
	}
	if len(audio) == 0 {
		return "", fmt.Errorf("empty audio for transcription")
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(audio, mime),
			genai.NewPartFromText("Transcribe this audio verbatim. Output only the transcript."),
		}, genai.RoleUser),
	}

	response, err := g.client.Models.GenerateContent(ctx, ModelGeminiFlash3, contents, nil)
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	text := response.Text()
	if text == "" {
		return "", fmt.Errorf("empty transcript from model")
	}
	return text, nil
}

// OpenAISpeech serves both audio directions through the OpenAI API,
// using tts-1 for synthesis and Whisper for transcription.
type OpenAISpeech struct {
	client *openai.Client
	voice  openai.SpeechVoice
}

var _ Synthesizer = (*OpenAISpeech)(nil)
var _ Transcriber = (*OpenAISpeech)(nil)

// NewOpenAISpeech creates the OpenAI speech client.
func NewOpenAISpeech(apiKey string) *OpenAISpeech {
	return &OpenAISpeech{
		client: openai.NewClient(apiKey),
		voice:  openai.VoiceAlloy,
	}
}

func (o *OpenAISpeech) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	if text == "" {
		return nil, "", fmt.Errorf("empty text for speech synthesis")
	}

	response, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          o.voice,
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		return nil, "", fmt.Errorf("speech synthesis failed: %w", err)
	}
	defer response.Close()

	audio, err := io.ReadAll(response)
	if err != nil {
		return nil, "", fmt.Errorf("reading synthesized audio: %w", err)
	}
	return audio, "audio/wav", nil
}

func (o *OpenAISpeech) Transcribe(ctx context.Context, audio []byte, mime string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("empty audio for transcription")
	}

	response, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   bytes.NewReader(audio),
		FilePath: "audio" + extensionForMIME(mime),
	})
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	return response.Text, nil
}

// extensionForMIME maps common audio MIME types to the file extension
// the Whisper endpoint keys its format detection on.
func extensionForMIME(mime string) string {
	switch mime {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	case "audio/flac":
		return ".flac"
	case "audio/webm":
		return ".webm"
	case "audio/mp4", "audio/m4a":
		return ".m4a"
	default:
		return ".wav"
	}
}

// wavFromPCM wraps raw little-endian PCM samples in a RIFF/WAV header.
func wavFromPCM(pcm []byte, sampleRate, channels, bitsPerSample int) []byte {
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}
