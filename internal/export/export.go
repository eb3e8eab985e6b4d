// Package export renders timesheet entries as CSV or TSV for import into
// billing tools.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/timewise/timewise/internal/model"
)

// Format selects the field delimiter.
type Format string

const (
	CSV Format = "csv"
	TSV Format = "tsv"
)

// ErrNoEntries is returned when there is nothing to export.
var ErrNoEntries = errors.New("there are no entries to export")

// Header is the first row of every export.
var Header = []string{"Date", "Type", "Name", "Client", "Task", "Our Docket #", "Description", "Time Spent"}

const dateLayout = "01/02/2006"

// Names resolves client and task ids for display.
type Names interface {
	ClientName(id string) string
	TaskName(id string) string
}

// ParseFormat accepts "csv" or "tsv" (case-insensitive); empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return CSV, nil
	case "tsv", "txt":
		return TSV, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

func (f Format) delimiter() string {
	if f == TSV {
		return "\t"
	}
	return ","
}

// Extension is the file extension used for downloads.
func (f Format) Extension() string {
	if f == TSV {
		return "txt"
	}
	return "csv"
}

// ContentType is the MIME type of the rendered output.
func (f Format) ContentType() string {
	if f == TSV {
		return "text/tab-separated-values; charset=utf-8"
	}
	return "text/csv; charset=utf-8"
}

// Write renders entries in the given order. Rows are separated by a single
// newline with none after the last row. In CSV the description is always
// quoted with embedded quotes doubled; other fields are written as is.
func Write(w io.Writer, entries []model.TimelineEntry, f Format, names Names) error {
	if len(entries) == 0 {
		return ErrNoEntries
	}
	bw := bufio.NewWriter(w)
	delim := f.delimiter()

	if _, err := bw.WriteString(strings.Join(Header, delim)); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{
			e.Date.Format(dateLayout),
			"Time",
			e.UserName,
			names.ClientName(e.Client),
			names.TaskName(e.Task),
			e.DocketNumber,
			description(e.Description, f),
			e.TimeSpent,
		}
		if f == TSV {
			for i := range row {
				row[i] = flattenTSV(row[i])
			}
		}
		if _, err := bw.WriteString("\n" + strings.Join(row, delim)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func description(s string, f Format) string {
	if f == CSV {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

var tsvReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

func flattenTSV(s string) string { return tsvReplacer.Replace(s) }

// Filename returns "YYYY-MM-DD <user>.csv" or ".txt" for TSV.
func Filename(now time.Time, userName string, f Format) string {
	return fmt.Sprintf("%s %s.%s", now.Format("2006-01-02"), userName, f.Extension())
}

// FilterRange keeps entries whose date lies within [from, to]. A zero bound is open.
func FilterRange(entries []model.TimelineEntry, from, to model.Date) []model.TimelineEntry {
	if from.IsZero() && to.IsZero() {
		return entries
	}
	out := make([]model.TimelineEntry, 0, len(entries))
	for _, e := range entries {
		if !from.IsZero() && e.Date.Before(from) {
			continue
		}
		if !to.IsZero() && e.Date.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out
}
