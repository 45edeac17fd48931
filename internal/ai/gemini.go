package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// --- Gemini provider ---

type geminiProvider struct {
	apiKey string
	model  string
}

func (g *geminiProvider) complete(ctx context.Context, req request) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	if req.system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.system)}}
	}
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = req.contract.schema()

	resp, err := model.GenerateContent(ctx, genai.Text(req.user))
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	return geminiText(resp)
}

func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty gemini response")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String(), nil
}

// schema converts the contract into a Gemini response schema.
func (c contract) schema() *genai.Schema {
	obj := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(c.fields)),
	}
	for _, f := range c.fields {
		prop := &genai.Schema{Type: genai.TypeString, Description: f.hint}
		if f.kind == listField {
			prop = &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: f.hint}
		}
		obj.Properties[f.name] = prop
		obj.Required = append(obj.Required, f.name)
	}
	if c.list {
		return &genai.Schema{Type: genai.TypeArray, Items: obj}
	}
	return obj
}
