package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timewise/timewise/internal/suggest"
)

func TestSuggest(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(generateResponse{
			Response: `{"suggestedDescriptions":["Drafted claims"," ","Drafted claims"],"suggestedDocketNumbers":["ADI-001"]}`,
			Done:     true,
		})
	}))
	defer srv.Close()

	p := New(srv.URL, "llama3.2")
	out, err := p.Suggest(context.Background(), suggest.Input{
		PastEntries:  []string{"Drafted claims (Docket: ADI-001)"},
		CurrentEntry: "Draf",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Drafted claims"}, out.SuggestedDescriptions)
	assert.Equal(t, []string{"ADI-001"}, out.SuggestedDocketNumbers)

	assert.Equal(t, "llama3.2", got.Model)
	assert.Equal(t, "json", got.Format)
	assert.False(t, got.Stream)
	assert.Contains(t, got.Prompt, "- Drafted claims (Docket: ADI-001)")
	assert.Contains(t, got.Prompt, "Current Entry:\nDraf")
}

func TestSuggest_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model \"nope\" not found"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "nope").Suggest(context.Background(), suggest.Input{CurrentEntry: "abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSuggest_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"I think you should write more","done":true}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "llama3.2").Suggest(context.Background(), suggest.Input{CurrentEntry: "abc"})
	assert.Error(t, err)
}

func TestHealthPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.2:latest"}]}`))
	}))
	defer srv.Close()

	assert.NoError(t, New(srv.URL, "llama3.2").HealthPing(context.Background()))
	assert.Error(t, New(srv.URL, "mistral").HealthPing(context.Background()))
}

func TestNew_AddsScheme(t *testing.T) {
	p := New("localhost:11434", "m")
	assert.Equal(t, "http://localhost:11434", p.client.BaseURL)
}

func TestHealthPing_ComparesTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3:8b"},{"name":"mistral"}]}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	assert.NoError(t, New(srv.URL, "llama3:8b").HealthPing(ctx))
	assert.Error(t, New(srv.URL, "llama3:70b").HealthPing(ctx))
	assert.Error(t, New(srv.URL, "llama3").HealthPing(ctx), "untagged means llama3:latest")
	assert.NoError(t, New(srv.URL, "mistral:latest").HealthPing(ctx))
}
