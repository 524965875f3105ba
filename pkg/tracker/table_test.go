package tracker

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartFinish(t *testing.T) {
	table, err := NewTable(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)

	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	table.Start("write report", start)

	mins, ok := table.Finish("write report", start.Add(44*time.Minute+40*time.Second))
	assert.True(t, ok)
	assert.Equal(t, 45, mins)

	_, ok = table.Finish("write report", start)
	assert.False(t, ok)
}

func TestFinishMinimumOneMinute(t *testing.T) {
	table, err := NewTable(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)

	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	table.Start("quick", start)
	mins, ok := table.Finish("quick", start.Add(5*time.Second))
	assert.True(t, ok)
	assert.Equal(t, 1, mins)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", FileName)
	table, err := NewTable(path)
	require.NoError(t, err)

	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	table.Start("a", start)
	require.NoError(t, table.Save())

	reloaded, err := NewTable(path)
	require.NoError(t, err)
	got, ok := reloaded.Started("a")
	require.True(t, ok)
	assert.True(t, got.Equal(start))
}

func TestSweep(t *testing.T) {
	table, err := NewTable(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)

	now := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	table.Start("stale", now.Add(-30*time.Hour))
	table.Start("fresh", now.Add(-time.Hour))

	swept := table.Sweep(now, 24*time.Hour)
	require.Len(t, swept, 1)
	assert.Equal(t, "stale", swept[0].Task)
	_, ok := table.Started("fresh")
	assert.True(t, ok)
}
