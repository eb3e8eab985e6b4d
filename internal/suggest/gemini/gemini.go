// Package gemini implements suggest.Provider on Google's Gemini API.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/timewise/timewise/internal/suggest"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// Provider asks Gemini for suggestions constrained by a JSON response schema.
type Provider struct {
	client *genai.Client
	model  string
}

// Options tweak client construction. BaseURL is used by tests.
type Options struct {
	BaseURL string
}

// New creates a Gemini provider.
func New(ctx context.Context, apiKey, model string, opts Options) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Provider{client: client, model: model}, nil
}

func (p *Provider) Name() string { return "genai:" + p.model }

// responseSchema mirrors suggest.Output.
func responseSchema() *genai.Schema {
	list := &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"suggestedDescriptions":  list,
			"suggestedDocketNumbers": list,
		},
		Required: []string{"suggestedDescriptions", "suggestedDocketNumbers"},
	}
}

// Suggest generates suggestions for in.
func (p *Provider) Suggest(ctx context.Context, in suggest.Input) (suggest.Output, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(suggest.BuildPrompt(in), genai.RoleUser),
	}
	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	})
	if err != nil {
		return suggest.Output{}, fmt.Errorf("GenAI generate failed: %w", err)
	}
	return suggest.ParseOutput(result.Text())
}

// HealthPing implements health.HealthPinger by fetching the model's metadata.
func (p *Provider) HealthPing(ctx context.Context) error {
	if _, err := p.client.Models.Get(ctx, p.model, nil); err != nil {
		return fmt.Errorf("GenAI model %s unavailable: %w", p.model, err)
	}
	return nil
}
