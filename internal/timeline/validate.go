package timeline

import (
	"regexp"
	"strings"

	"github.com/timewise/timewise/internal/model"
)

// timeSpentPattern accepts H:MM or HH:MM with hours 0-23.
var timeSpentPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// DraftError lists every problem found in a draft. It matches model.ErrValidation.
type DraftError struct {
	Problems []string
}

func (e *DraftError) Error() string { return strings.Join(e.Problems, ", ") }
func (e *DraftError) Unwrap() error { return model.ErrValidation }

// ValidateDraft checks the required fields of a draft.
func ValidateDraft(d model.EntryDraft) error {
	var problems []string
	if d.Date.IsZero() {
		problems = append(problems, "Date is required.")
	}
	if strings.TrimSpace(d.Client) == "" {
		problems = append(problems, "Client is required.")
	}
	if strings.TrimSpace(d.Task) == "" {
		problems = append(problems, "Task is required.")
	}
	if strings.TrimSpace(d.Description) == "" {
		problems = append(problems, "Description is required.")
	}
	if !ValidTimeSpent(d.TimeSpent) {
		problems = append(problems, "Invalid time format (HH:MM). Example: 01:30 for 1 hour 30 mins.")
	}
	if len(problems) == 0 {
		return nil
	}
	return &DraftError{Problems: problems}
}

// ValidTimeSpent reports whether s is a duration of the form HH:MM.
func ValidTimeSpent(s string) bool {
	return timeSpentPattern.MatchString(s)
}
