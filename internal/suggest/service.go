package suggest

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/timewise/timewise/internal/metrics"
	"github.com/timewise/timewise/internal/model"
)

const (
	// MinCurrentLength is the shortest trimmed text that triggers a request.
	MinCurrentLength = 3
	// maxPastEntries bounds the prompt size; entries arrive newest first.
	maxPastEntries = 50
)

// Service turns a user's entries into a provider request and swallows failures.
type Service struct {
	provider Provider
	timeout  time.Duration
	log      zerolog.Logger
}

func NewService(p Provider, timeout time.Duration, log zerolog.Logger) *Service {
	if p == nil {
		p = NopProvider{}
	}
	return &Service{provider: p, timeout: timeout, log: log}
}

// Provider returns the configured provider.
func (s *Service) Provider() Provider { return s.provider }

// RenderPast formats entries as "<description> (Docket: <docket|N/A>)",
// skipping the entry with id excludeID.
func RenderPast(entries []model.TimelineEntry, excludeID string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if excludeID != "" && e.ID == excludeID {
			continue
		}
		docket := e.DocketNumber
		if docket == "" {
			docket = "N/A"
		}
		out = append(out, e.Description+" (Docket: "+docket+")")
		if len(out) == maxPastEntries {
			break
		}
	}
	return out
}

// Suggest returns suggestions for current given the user's entries. It never
// fails; provider errors, timeouts and too-short input all yield Empty().
func (s *Service) Suggest(ctx context.Context, entries []model.TimelineEntry, current, editingID string) Output {
	current = strings.TrimSpace(current)
	if utf8.RuneCountInString(current) < MinCurrentLength {
		metrics.SuggestionRequests.WithLabelValues(metrics.ResultSkipped).Inc()
		return Empty()
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	in := Input{PastEntries: RenderPast(entries, editingID), CurrentEntry: current}
	out, err := s.provider.Suggest(ctx, in)
	if err != nil {
		s.log.Warn().Err(err).Str("provider", s.provider.Name()).Msg("suggestion request failed")
		metrics.SuggestionRequests.WithLabelValues(metrics.ResultError).Inc()
		return Empty()
	}
	if out.SuggestedDescriptions == nil {
		out.SuggestedDescriptions = []string{}
	}
	if out.SuggestedDocketNumbers == nil {
		out.SuggestedDocketNumbers = []string{}
	}
	metrics.SuggestionRequests.WithLabelValues(metrics.ResultOK).Inc()
	return out
}
