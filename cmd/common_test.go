package cmd

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/illarion/sprintdeck/internal/storage"
	"github.com/illarion/sprintdeck/internal/tracker"
	"github.com/illarion/sprintdeck/internal/vault"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "", maskToken(""))
	assert.Equal(t, "***", maskToken("abc"))
	assert.Equal(t, "****", maskToken("abcd"))
	assert.Equal(t, "*****fghi", maskToken("abcdefghi"))
}

func TestFormatAge(t *testing.T) {
	assert.Equal(t, "42s", formatAge(42*time.Second))
	assert.Equal(t, "5m", formatAge(5*time.Minute+10*time.Second))
	assert.Equal(t, "1h00m", formatAge(time.Hour))
	assert.Equal(t, "2h05m", formatAge(2*time.Hour+5*time.Minute))
	assert.Equal(t, "30s", formatAge(-30*time.Second))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "1.0 KB", formatSize(1024))
	assert.Equal(t, "1.5 MB", formatSize(1536*1024))
}

func TestSelectionDiff(t *testing.T) {
	dev := &tracker.Project{ID: "1", Key: "DEV", Name: "Development"}
	ops := &tracker.Project{ID: "2", Key: "OPS", Name: "Operations"}

	assert.Empty(t, selectionDiff(dev, dev))

	d := selectionDiff(dev, ops)
	assert.Contains(t, d, `-   "key": "DEV",`)
	assert.Contains(t, d, `+   "key": "OPS",`)
	assert.Contains(t, d, "  {\n")

	first := selectionDiff(nil, dev)
	for _, line := range strings.Split(strings.TrimSuffix(first, "\n"), "\n") {
		assert.True(t, strings.HasPrefix(line, "+ "), "line %q", line)
	}
}

func TestPickSprint(t *testing.T) {
	sprints := []tracker.Sprint{
		{ID: 1, State: "future"},
		{ID: 2, State: "active"},
		{ID: 3, State: "active"},
	}

	require.NotNil(t, pickSprint(sprints, 0))
	assert.Equal(t, 2, pickSprint(sprints, 0).ID)
	assert.Equal(t, 1, pickSprint(sprints, 1).ID)
	assert.Nil(t, pickSprint(sprints, 9))
	assert.Nil(t, pickSprint(sprints[:1], 0))
}

func TestFindTransition(t *testing.T) {
	ts := []tracker.Transition{
		{ID: "11", Name: "Start work", To: tracker.Status{Name: "In Progress"}},
		{ID: "31", Name: "Finish", To: tracker.Status{Name: "Done"}},
	}

	assert.Equal(t, "31", findTransition(ts, "31").ID)
	assert.Equal(t, "11", findTransition(ts, "start WORK").ID)
	assert.Equal(t, "11", findTransition(ts, "in progress").ID)
	assert.Nil(t, findTransition(ts, "Blocked"))
}

func TestCounterValues(t *testing.T) {
	reg := prometheus.NewRegistry()
	v := vault.New(storage.NewMemoryStore(), vault.WithPassphrase("cmd-test"), vault.WithMetrics(reg))
	require.NoError(t, v.SetItem(context.Background(), "k", "v", vault.SetOptions{}))
	v.Cleanup(context.Background())

	values, err := counterValues(reg)
	require.NoError(t, err)
	assert.Equal(t, 1.0, values["sprintdeck_vault_writes_total{encrypted=false}"])
	assert.Equal(t, 1.0, values["sprintdeck_vault_sweeps_total"])
}
