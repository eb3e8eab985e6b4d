package services

import (
	"bytes"
	"context"
	"time"

	"github.com/timewise/timewise/internal/calendar"
	"github.com/timewise/timewise/internal/export"
	"github.com/timewise/timewise/internal/lookup"
	"github.com/timewise/timewise/internal/model"
	"github.com/timewise/timewise/internal/suggest"
	"github.com/timewise/timewise/internal/timeline"
)

// TimelineService binds the entry store, calendar, export and suggestion
// collaborators to a session.
type TimelineService struct {
	registry *timeline.Registry
	catalog  *lookup.Catalog
	suggest  *suggest.Service
	loc      *time.Location
	now      func() time.Time
}

func NewTimelineService(reg *timeline.Registry, cat *lookup.Catalog, sug *suggest.Service, loc *time.Location) *TimelineService {
	if loc == nil {
		loc = time.UTC
	}
	return &TimelineService{registry: reg, catalog: cat, suggest: sug, loc: loc, now: time.Now}
}

// Today is the current calendar day in the service time zone.
func (s *TimelineService) Today() model.Date { return model.DateOf(s.now().In(s.loc)) }

// Load refreshes and returns the session user's entries.
func (s *TimelineService) Load(ctx context.Context, sess *model.Session) (timeline.Result, []model.TimelineEntry) {
	st := s.registry.For(sess)
	r := st.Load(ctx)
	return r, st.Entries()
}

func (s *TimelineService) Save(ctx context.Context, sess *model.Session, draft model.EntryDraft, editingID string) (timeline.Result, []model.TimelineEntry) {
	st := s.registry.For(sess)
	r := st.Save(ctx, draft, editingID)
	return r, st.Entries()
}

func (s *TimelineService) Delete(ctx context.Context, sess *model.Session, id string) (timeline.Result, []model.TimelineEntry) {
	st := s.registry.For(sess)
	r := st.Delete(ctx, id)
	return r, st.Entries()
}

// CalendarView is a month of annotations plus the counts shown beside it.
type CalendarView struct {
	calendar.Annotations
	Today   model.Date       `json:"today"`
	Summary calendar.Summary `json:"summary"`
}

// Calendar reloads the entries and annotates month against today.
func (s *TimelineService) Calendar(ctx context.Context, sess *model.Session, month calendar.Month) (timeline.Result, CalendarView) {
	r, entries := s.Load(ctx, sess)
	today := s.Today()
	a := calendar.Annotate(entries, month, today)
	return r, CalendarView{Annotations: a, Today: today, Summary: a.Summary()}
}

// Export is a rendered download.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Export renders the session user's entries within [from, to].
// It returns export.ErrNoEntries when nothing matches.
func (s *TimelineService) Export(ctx context.Context, sess *model.Session, f export.Format, from, to model.Date) (timeline.Result, *Export, error) {
	r, entries := s.Load(ctx, sess)
	if !r.Success {
		return r, nil, r.Err
	}
	entries = export.FilterRange(entries, from, to)

	var buf bytes.Buffer
	if err := export.Write(&buf, entries, f, s.catalog); err != nil {
		return r, nil, err
	}
	return r, &Export{
		Filename:    export.Filename(s.now().In(s.loc), sess.Username, f),
		ContentType: f.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}

// Suggest asks for suggestions based on the session user's current entries.
// It never fails.
func (s *TimelineService) Suggest(ctx context.Context, sess *model.Session, current, editingID string) suggest.Output {
	st := s.registry.For(sess)
	entries := st.Entries()
	if len(entries) == 0 && !st.Loading() {
		if r := st.Load(ctx); r.Success {
			entries = st.Entries()
		}
	}
	return s.suggest.Suggest(ctx, entries, current, editingID)
}

// Forget discards the cached entries of the session user, e.g. on sign-out.
func (s *TimelineService) Forget(sess *model.Session) {
	if sess != nil {
		s.registry.Forget(sess.UserID)
	}
}

// EvictIdle drops cached entry lists of users idle for longer than idle.
func (s *TimelineService) EvictIdle(idle time.Duration) int {
	return s.registry.EvictIdle(idle)
}
