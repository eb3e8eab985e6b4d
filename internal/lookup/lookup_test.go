package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.Len(t, c.Clients(), 46)
	require.Len(t, c.Tasks(), 19)

	assert.Equal(t, "Analog Devices", c.ClientName("client-1"))
	assert.Equal(t, "FOLY - Searches", c.ClientName("client-46"))
	assert.Equal(t, "Specification Drafting", c.TaskName("task-1"))
	assert.Equal(t, "Firm - Internal", c.TaskName("task-19"))
	assert.Equal(t, "client-1", c.Clients()[0].ID)
}

func TestNameFallsBackToID(t *testing.T) {
	c := Default()
	assert.Equal(t, "client-999", c.ClientName("client-999"))
	assert.Equal(t, "", c.TaskName(""))
}

func TestListsAreCopies(t *testing.T) {
	c := Default()
	cl := c.Clients()
	cl[0].Name = "changed"
	assert.Equal(t, "Analog Devices", c.Clients()[0].Name)
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte("clients:\n  - id: a\n    name: Acme\ntasks:\n  - id: t\n    name: Review\n"))
	require.NoError(t, err)
	assert.Equal(t, "Acme", c.ClientName("a"))
	assert.Equal(t, "Review", c.TaskName("t"))

	_, err = Parse([]byte("clients:\n  - id: a\n    name: A\n  - id: a\n    name: B\n"))
	assert.ErrorContains(t, err, "duplicate client id")

	_, err = Parse([]byte("tasks:\n  - name: nameless\n"))
	assert.ErrorContains(t, err, "has no id")

	_, err = Parse([]byte("clients: [unterminated"))
	assert.Error(t, err)
}
