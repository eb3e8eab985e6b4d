// Package ollama implements suggest.Provider on a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/timewise/timewise/internal/suggest"
)

// Provider calls Ollama's /api/generate endpoint in JSON mode.
type Provider struct {
	client *resty.Client
	model  string
}

// New creates a Provider for baseURL (scheme optional) and model.
func New(baseURL, model string) *Provider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(2 * time.Minute)

	return &Provider{client: c, model: model}
}

func (p *Provider) Name() string { return "ollama:" + p.model }

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Format string `json:"format"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

// Suggest sends the rendered prompt and decodes the model's JSON answer.
func (p *Provider) Suggest(ctx context.Context, in suggest.Input) (suggest.Output, error) {
	var out generateResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(&generateRequest{Model: p.model, Prompt: suggest.BuildPrompt(in), Format: "json"}).
		SetResult(&out).
		SetError(&out).
		Post("/api/generate")
	if err != nil {
		return suggest.Output{}, fmt.Errorf("ollama request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		if out.Error != "" {
			return suggest.Output{}, fmt.Errorf("ollama status %d: %s", resp.StatusCode(), out.Error)
		}
		return suggest.Output{}, fmt.Errorf("ollama status %d", resp.StatusCode())
	}
	if out.Error != "" {
		return suggest.Output{}, fmt.Errorf("ollama error: %s", out.Error)
	}
	return suggest.ParseOutput(out.Response)
}

// HealthPing implements health.HealthPinger. It checks /api/tags for the
// configured model.
func (p *Provider) HealthPing(ctx context.Context) error {
	var data struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	resp, err := p.client.R().SetContext(ctx).SetResult(&data).Get("/api/tags")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("ollama status %d", resp.StatusCode())
	}
	want := fullModelName(p.model)
	for _, m := range data.Models {
		if fullModelName(m.Name) == want {
			return nil
		}
	}
	return fmt.Errorf("model %s not found", want)
}

// fullModelName adds the ":latest" tag Ollama assumes for untagged names.
func fullModelName(name string) string {
	if strings.IndexByte(name, ':') < 0 {
		return name + ":latest"
	}
	return name
}
