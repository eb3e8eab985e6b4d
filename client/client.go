// Package client is a Go SDK for the TimeWise HTTP API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/timewise/timewise/internal/auth"
	"github.com/timewise/timewise/internal/lookup"
	"github.com/timewise/timewise/internal/model"
	"github.com/timewise/timewise/internal/suggest"
)

// Client talks to one TimeWise service. Login replaces the token, so a
// Client should not be shared across goroutines while logging in.
type Client struct {
	rest *resty.Client
}

// New constructs a Client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL cannot be empty")
	}
	c := &Client{
		rest: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(30 * time.Second).
			SetHeader("Accept", "application/json"),
	}
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// NewWithDevMode constructs a Client that authenticates with the local
// development token. Only a service running in dev mode accepts it.
func NewWithDevMode(baseURL string, opts ...Option) (*Client, error) {
	return New(baseURL, append([]Option{WithToken(auth.LocalDevToken)}, opts...)...)
}

func (c *Client) req(ctx context.Context) *resty.Request {
	return c.rest.R().SetContext(ctx).SetError(&errorBody{})
}

// check turns a non-2xx response into an *APIError.
func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsError() {
		return nil
	}
	apiErr := &APIError{StatusCode: resp.StatusCode()}
	if body, ok := resp.Error().(*errorBody); ok && body != nil {
		apiErr.Message = body.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(resp.Body()))
	}
	return apiErr
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, email, password, username string) (*model.User, error) {
	var out model.User
	resp, err := c.req(ctx).
		SetBody(map[string]string{"email": email, "password": password, "username": username}).
		SetResult(&out).
		Post("/api/register")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login opens a session and uses its token for subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) (*model.Session, error) {
	var out model.Session
	resp, err := c.req(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		Post("/api/login")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	c.rest.SetAuthToken(out.Token)
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return check(c.req(ctx).Post("/api/logout"))
}

// Me returns the identity behind the current token.
func (c *Client) Me(ctx context.Context) (*model.Session, error) {
	var out model.Session
	resp, err := c.req(ctx).SetResult(&out).Get("/api/me")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// EntryResult is the outcome of an entry operation together with the
// refreshed entry list.
type EntryResult struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Entry   *model.TimelineEntry  `json:"entry,omitempty"`
	Entries []model.TimelineEntry `json:"entries"`
}

func (c *Client) entryCall(r *resty.Request, method, path string) (*EntryResult, error) {
	var out EntryResult
	resp, err := r.SetResult(&out).Execute(method, path)
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListEntries returns the entries within [from, to]; zero dates leave a side open.
func (c *Client) ListEntries(ctx context.Context, from, to model.Date) ([]model.TimelineEntry, error) {
	r := c.req(ctx)
	setRange(r, from, to)
	res, err := c.entryCall(r, http.MethodGet, "/api/entries")
	if err != nil {
		return nil, err
	}
	return res.Entries, nil
}

func (c *Client) CreateEntry(ctx context.Context, d model.EntryDraft) (*EntryResult, error) {
	return c.entryCall(c.req(ctx).SetBody(d), http.MethodPost, "/api/entries")
}

func (c *Client) UpdateEntry(ctx context.Context, entryID string, d model.EntryDraft) (*EntryResult, error) {
	return c.entryCall(c.req(ctx).SetBody(d).SetPathParam("entryId", entryID), http.MethodPut, "/api/entries/{entryId}")
}

func (c *Client) DeleteEntry(ctx context.Context, entryID string) (*EntryResult, error) {
	return c.entryCall(c.req(ctx).SetPathParam("entryId", entryID), http.MethodDelete, "/api/entries/{entryId}")
}

// CalendarView is a month of calendar markings.
type CalendarView struct {
	Success bool `json:"success"`
	Month   struct {
		Year  int        `json:"year"`
		Month time.Month `json:"month"`
	} `json:"month"`
	HighlightedDays []model.Date `json:"highlightedDays"`
	MissedDays      []model.Date `json:"missedDays"`
	Today           model.Date   `json:"today"`
	Summary         struct {
		EntryDays  int `json:"entryDays"`
		MissedDays int `json:"missedDays"`
	} `json:"summary"`
}

// Calendar fetches the markings for month (YYYY-MM); empty means the current month.
func (c *Client) Calendar(ctx context.Context, month string) (*CalendarView, error) {
	var out CalendarView
	r := c.req(ctx).SetResult(&out)
	if month != "" {
		r.SetQueryParam("month", month)
	}
	resp, err := r.Get("/api/calendar")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Download is an exported file.
type Download struct {
	Filename string
	Body     []byte
}

// Export downloads the entries within [from, to] as "csv" or "tsv".
func (c *Client) Export(ctx context.Context, format string, from, to model.Date) (*Download, error) {
	r := c.req(ctx).SetQueryParam("format", format)
	setRange(r, from, to)
	resp, err := r.Get("/api/export")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &Download{
		Filename: filenameFrom(resp.Header().Get("Content-Disposition")),
		Body:     resp.Body(),
	}, nil
}

// Suggest asks for description and docket suggestions for the text typed so far.
func (c *Client) Suggest(ctx context.Context, current, editingID string) (*suggest.Output, error) {
	var out suggest.Output
	resp, err := c.req(ctx).
		SetBody(map[string]string{"currentEntry": current, "editingId": editingID}).
		SetResult(&out).
		Post("/api/suggestions")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Clients(ctx context.Context) ([]lookup.Client, error) {
	var out []lookup.Client
	resp, err := c.req(ctx).SetResult(&out).Get("/api/clients")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Tasks(ctx context.Context) ([]lookup.Task, error) {
	var out []lookup.Task
	resp, err := c.req(ctx).SetResult(&out).Get("/api/tasks")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

func setRange(r *resty.Request, from, to model.Date) {
	if !from.IsZero() {
		r.SetQueryParam("from", from.String())
	}
	if !to.IsZero() {
		r.SetQueryParam("to", to.String())
	}
}

// filenameFrom extracts the filename parameter of a Content-Disposition header.
func filenameFrom(cd string) string {
	const key = "filename="
	i := strings.Index(cd, key)
	if i < 0 {
		return ""
	}
	return strings.Trim(cd[i+len(key):], `"`)
}
