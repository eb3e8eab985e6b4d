package model

import "time"

// User is an account that owns timeline entries.
type User struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreationTime time.Time `json:"creationTime"`
}

// Session is the authenticated identity a request acts as.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// TimelineEntry is one timesheet record owned by one user.
type TimelineEntry struct {
	ID           string    `json:"id"`
	Date         Date      `json:"date"`
	UserID       string    `json:"userId"`
	UserName     string    `json:"userName"`
	Client       string    `json:"client"`
	Task         string    `json:"task"`
	DocketNumber string    `json:"docketNumber,omitempty"`
	Description  string    `json:"description"`
	TimeSpent    string    `json:"timeSpent"`
	CreationTime time.Time `json:"createdAt"`
	UpdateTime   time.Time `json:"updatedAt"`
}

// EntryDraft carries the user-editable fields of an entry as submitted by a form.
type EntryDraft struct {
	Date         Date   `json:"date"`
	Client       string `json:"client"`
	Task         string `json:"task"`
	DocketNumber string `json:"docketNumber,omitempty"`
	Description  string `json:"description"`
	TimeSpent    string `json:"timeSpent"`
}

// Apply copies the draft's mutable fields onto e, leaving identity and ownership intact.
func (d EntryDraft) Apply(e *TimelineEntry) {
	e.Date = d.Date
	e.Client = d.Client
	e.Task = d.Task
	e.DocketNumber = d.DocketNumber
	e.Description = d.Description
	e.TimeSpent = d.TimeSpent
}

// ListEntriesRequest captures filters used when listing entries.
// From and To are inclusive; zero values leave that side open.
type ListEntriesRequest struct {
	UserID string
	From   Date
	To     Date
}
