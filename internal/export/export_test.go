package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timewise/timewise/internal/lookup"
	"github.com/timewise/timewise/internal/model"
)

func sampleEntries() []model.TimelineEntry {
	return []model.TimelineEntry{
		{
			Date: model.NewDate(2024, time.March, 6), UserName: "Rohit Singh",
			Client: "client-1", Task: "task-1", DocketNumber: "ADI-001",
			Description: `Drafted "independent" claims`, TimeSpent: "2:30",
		},
		{
			Date: model.NewDate(2024, time.March, 1), UserName: "Rohit Singh",
			Client: "client-999", Task: "task-19",
			Description: "Team\tsync\nnotes", TimeSpent: "0:45",
		},
	}
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleEntries(), CSV, lookup.Default()))

	want := strings.Join([]string{
		"Date,Type,Name,Client,Task,Our Docket #,Description,Time Spent",
		`03/06/2024,Time,Rohit Singh,Analog Devices,Specification Drafting,ADI-001,"Drafted ""independent"" claims",2:30`,
		"03/01/2024,Time,Rohit Singh,client-999,Firm - Internal,,\"Team\tsync\nnotes\",0:45",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestWrite_TSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleEntries(), TSV, lookup.Default()))

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date\tType\tName\tClient\tTask\tOur Docket #\tDescription\tTime Spent", lines[0])
	assert.Equal(t, "03/06/2024\tTime\tRohit Singh\tAnalog Devices\tSpecification Drafting\tADI-001\tDrafted \"independent\" claims\t2:30", lines[1])
	assert.Equal(t, "03/01/2024\tTime\tRohit Singh\tclient-999\tFirm - Internal\t\tTeam sync notes\t0:45", lines[2])
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Write(&buf, nil, CSV, lookup.Default()), ErrNoEntries)
	assert.Zero(t, buf.Len())
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, time.March, 8, 17, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-08 Rohit Singh.csv", Filename(now, "Rohit Singh", CSV))
	assert.Equal(t, "2024-03-08 Rohit Singh.txt", Filename(now, "Rohit Singh", TSV))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": CSV, "csv": CSV, "CSV": CSV, "tsv": TSV, "txt": TSV} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestFilterRange(t *testing.T) {
	entries := sampleEntries()
	assert.Len(t, FilterRange(entries, model.Date{}, model.Date{}), 2)

	got := FilterRange(entries, model.NewDate(2024, time.March, 2), model.Date{})
	require.Len(t, got, 1)
	assert.Equal(t, "2:30", got[0].TimeSpent)

	got = FilterRange(entries, model.NewDate(2024, time.March, 1), model.NewDate(2024, time.March, 1))
	require.Len(t, got, 1, "bounds are inclusive")
	assert.Equal(t, "0:45", got[0].TimeSpent)

	assert.Empty(t, FilterRange(entries, model.NewDate(2024, time.April, 1), model.Date{}))
}
