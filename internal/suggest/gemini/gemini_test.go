package gemini

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/timewise/timewise/internal/suggest"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), "", "", Options{})
	assert.Error(t, err)
}

func TestResponseSchema(t *testing.T) {
	s := responseSchema()
	assert.Equal(t, genai.TypeObject, s.Type)
	require.Contains(t, s.Properties, "suggestedDescriptions")
	assert.Equal(t, genai.TypeArray, s.Properties["suggestedDocketNumbers"].Type)
	assert.ElementsMatch(t, []string{"suggestedDescriptions", "suggestedDocketNumbers"}, s.Required)
}

func TestSuggest(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"suggestedDescriptions\":[\"Reviewed office action\"],\"suggestedDocketNumbers\":[\"NFLX-12\"]}"}]}}]}`)
	}))
	defer srv.Close()

	p, err := New(context.Background(), "test-key", "", Options{BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "genai:"+DefaultModel, p.Name())

	out, err := p.Suggest(context.Background(), suggest.Input{
		PastEntries:  []string{"Reviewed office action (Docket: NFLX-12)"},
		CurrentEntry: "Revi",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Reviewed office action"}, out.SuggestedDescriptions)
	assert.Equal(t, []string{"NFLX-12"}, out.SuggestedDocketNumbers)
	assert.True(t, strings.Contains(body, "application/json"), "request asks for JSON output")
}

func TestSuggest_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`)
	}))
	defer srv.Close()

	p, err := New(context.Background(), "test-key", "gemini-test", Options{BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = p.Suggest(context.Background(), suggest.Input{CurrentEntry: "abc"})
	assert.Error(t, err)
}
