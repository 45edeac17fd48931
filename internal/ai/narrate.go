package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/matheuskafuri/lexis/internal/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// maxNarrationChars caps how much of an article is sent for speech.
const maxNarrationChars = 3000

// Narrator turns article text into speech. Audio is returned as base64
// encoded mono signed 16-bit little-endian PCM.
type Narrator interface {
	Narrate(ctx context.Context, text string) (string, error)
}

// NewNarrator returns nil when narration is disabled.
func NewNarrator(cfg *config.NarrationConfig, apiKey string) (Narrator, error) {
	if cfg == nil || cfg.Provider == "" || cfg.Provider == "none" {
		return nil, nil
	}
	switch cfg.Provider {
	case "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("narration not configured")
		}
		return newOpenAINarrator(apiKey, cfg.Model, cfg.Voice), nil
	default:
		return nil, fmt.Errorf("unknown narration provider: %q (valid: openai, none)", cfg.Provider)
	}
}

func narrationText(text string) string {
	r := []rune(text)
	if len(r) > maxNarrationChars {
		r = r[:maxNarrationChars]
	}
	return narrationPrompt + string(r)
}

type openaiNarrator struct {
	client *openai.Client
	model  openai.SpeechModel
	voice  openai.AudioSpeechNewParamsVoice
}

func newOpenAINarrator(apiKey, model, voice string, opts ...option.RequestOption) *openaiNarrator {
	if model == "" {
		model = "tts-1"
	}
	if voice == "" {
		voice = "alloy"
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	client := openai.NewClient(opts...)
	return &openaiNarrator{
		client: &client,
		model:  openai.SpeechModel(model),
		voice:  openai.AudioSpeechNewParamsVoice(voice),
	}
}

func (n *openaiNarrator) Narrate(ctx context.Context, text string) (string, error) {
	resp, err := n.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          n.model,
		Voice:          n.voice,
		Input:          narrationText(text),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatPCM,
	})
	if err != nil {
		return "", fmt.Errorf("openai speech error: %w", err)
	}
	defer resp.Body.Close()

	pcm, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading speech audio: %w", err)
	}
	if len(pcm) == 0 {
		return "", fmt.Errorf("no audio returned")
	}
	return base64.StdEncoding.EncodeToString(pcm), nil
}
