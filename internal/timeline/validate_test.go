package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timewise/timewise/internal/model"
)

func TestValidTimeSpent(t *testing.T) {
	cases := map[string]bool{
		"0:00":  true,
		"1:30":  true,
		"01:30": true,
		"09:05": true,
		"19:59": true,
		"23:59": true,
		"24:00": false,
		"25:00": false,
		"1:60":  false,
		"1:5":   false,
		"130":   false,
		"":      false,
		" 1:30": false,
		"1:300": false,
	}
	for in, want := range cases {
		assert.Equal(t, want, ValidTimeSpent(in), "input %q", in)
	}
}

func TestValidateDraft(t *testing.T) {
	good := model.EntryDraft{
		Date:        model.NewDate(2024, time.March, 1),
		Client:      "client-1",
		Task:        "task-1",
		Description: "Drafted claims",
		TimeSpent:   "1:00",
	}
	require.NoError(t, ValidateDraft(good))

	noDocket := good
	noDocket.DocketNumber = ""
	assert.NoError(t, ValidateDraft(noDocket), "docket number is optional")

	err := ValidateDraft(model.EntryDraft{Client: "  ", TimeSpent: "7"})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)

	var de *DraftError
	require.ErrorAs(t, err, &de)
	assert.Len(t, de.Problems, 5)
	assert.Contains(t, err.Error(), "Date is required.")
	assert.Contains(t, err.Error(), "Client is required.")
}
