package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timewise/timewise/internal/api"
	"github.com/timewise/timewise/internal/auth"
	"github.com/timewise/timewise/internal/lookup"
	"github.com/timewise/timewise/internal/services"
	"github.com/timewise/timewise/internal/store/memstore"
	"github.com/timewise/timewise/internal/suggest"
	"github.com/timewise/timewise/internal/timeline"
)

func newBackend(t *testing.T) string {
	t.Helper()
	st := memstore.New()
	reg := timeline.NewRegistry(st.Entries(), zerolog.Nop())
	tl := services.NewTimelineService(reg, lookup.Default(), suggest.NewService(nil, time.Second, zerolog.Nop()), time.UTC)
	srv := httptest.NewServer(api.NewRouter(api.Deps{
		Accounts: services.NewAccountService(st, time.Hour),
		Timeline: tl,
		Catalog:  lookup.Default(),
		Auth:     auth.NewDevAuthenticator(auth.NewSessionAuthenticator(st.Sessions())),
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCLI_LoginAndEntries(t *testing.T) {
	url := newBackend(t)

	out, err := run(t, "--server", url, "register", "--email", "kim@example.com", "--password", "secret1", "--username", "kim")
	require.NoError(t, err)
	assert.Contains(t, out, "Account created: kim")

	out, err = run(t, "--server", url, "login", "--email", "kim@example.com", "--password", "secret1")
	require.NoError(t, err)
	token := strings.TrimSpace(out)
	require.Len(t, token, 64)

	common := []string{"--server", url, "--token", token}
	out, err = run(t, append(common, "entries", "add", "--date", "2024-03-01", "--client", "client-1",
		"--task", "task-1", "--description", "drafting", "--time", "1:15")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Your timeline entry has been successfully added.")

	_, err = run(t, append(common, "entries", "add", "--client", "client-1")...)
	assert.Error(t, err)

	out, err = run(t, append(common, "entries", "list", "--from", "2024-03-01")...)
	require.NoError(t, err)
	assert.Contains(t, out, "drafting")
	assert.Contains(t, out, "2024-03-01")

	out, err = run(t, append(common, "whoami")...)
	require.NoError(t, err)
	assert.Contains(t, out, "kim <kim@example.com>")

	dest := filepath.Join(t.TempDir(), "out.csv")
	out, err = run(t, append(common, "export", "--format", "csv", "--out", dest)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+dest)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Date,Type,Name,Client,Task"))

	_, err = run(t, append(common, "logout")...)
	require.NoError(t, err)
	_, err = run(t, append(common, "whoami")...)
	assert.Error(t, err)
}

func TestCLI_DevModeCalendarAndLookups(t *testing.T) {
	url := newBackend(t)
	dev := []string{"--server", url, "--dev"}

	out, err := run(t, append(dev, "entries", "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "No entries.")

	out, err = run(t, append(dev, "calendar", "2024-03")...)
	require.NoError(t, err)
	assert.Contains(t, out, "2024-03: 0 entry days, 0 missed")

	out, err = run(t, append(dev, "clients")...)
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out))

	out, err = run(t, append(dev, "suggest", "ab")...)
	require.NoError(t, err)
	assert.Contains(t, out, "No suggestions.")
}
