// Package suggest proposes entry descriptions and docket numbers from a
// user's past entries using a language model. Suggestions are advisory:
// every failure is reported as an empty result.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Input is what a provider sees: rendered past entries and the text typed so far.
type Input struct {
	PastEntries  []string `json:"pastEntries"`
	CurrentEntry string   `json:"currentEntry"`
}

// Output carries the suggestions. Both slices are non-nil when produced by
// this package so they encode as JSON arrays.
type Output struct {
	SuggestedDescriptions  []string `json:"suggestedDescriptions"`
	SuggestedDocketNumbers []string `json:"suggestedDocketNumbers"`
}

// Empty returns an Output with no suggestions.
func Empty() Output {
	return Output{SuggestedDescriptions: []string{}, SuggestedDocketNumbers: []string{}}
}

// IsEmpty reports whether o carries no suggestions.
func (o Output) IsEmpty() bool {
	return len(o.SuggestedDescriptions) == 0 && len(o.SuggestedDocketNumbers) == 0
}

// Provider generates suggestions.
type Provider interface {
	Name() string
	Suggest(ctx context.Context, in Input) (Output, error)
}

// NopProvider is used when suggestions are disabled.
type NopProvider struct{}

func (NopProvider) Name() string                                   { return "none" }
func (NopProvider) Suggest(context.Context, Input) (Output, error) { return Empty(), nil }

// BuildPrompt renders the instruction sent to text-completion providers.
func BuildPrompt(in Input) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant that suggests descriptions and docket numbers for timeline entries based on past entries.\n\n")
	b.WriteString("Past Entries:\n")
	for _, p := range in.PastEntries {
		b.WriteString("- ")
		b.WriteString(p)
		b.WriteString("\n")
	}
	b.WriteString("\nCurrent Entry:\n")
	b.WriteString(in.CurrentEntry)
	b.WriteString("\n\nBased on the past entries and the current entry, suggest relevant descriptions and docket numbers.\n")
	b.WriteString("Return the suggestions as a JSON object with the following format:\n")
	b.WriteString(`{"suggestedDescriptions": ["suggestion1", "suggestion2"], "suggestedDocketNumbers": ["docket1", "docket2"]}`)
	b.WriteString("\n")
	return b.String()
}

// ParseOutput decodes a model's JSON answer. Markdown code fences around the
// object are tolerated. Blank and duplicate suggestions are dropped.
func ParseOutput(raw string) (Output, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if s == "" {
		return Output{}, fmt.Errorf("empty model response")
	}

	var out Output
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return Output{}, fmt.Errorf("decode suggestions: %w", err)
	}
	return Output{
		SuggestedDescriptions:  clean(out.SuggestedDescriptions),
		SuggestedDocketNumbers: clean(out.SuggestedDocketNumbers),
	}, nil
}

func clean(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
