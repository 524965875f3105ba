package colors

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorIDIsStable(t *testing.T) {
	cache, err := NewColorCache(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	a := cache.ColorID("Standup", now)
	b := cache.ColorID("1:1", now)
	assert.Equal(t, "1", a)
	assert.Equal(t, "2", b)
	assert.Equal(t, a, cache.ColorID("Standup", now.Add(time.Hour)))
	assert.Equal(t, Palette[0], cache.Color("Standup", now))
}

func TestEvictsLeastRecentlySeen(t *testing.T) {
	cache, err := NewColorCache(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	for i := 0; i < len(Palette); i++ {
		cache.ColorID(fmt.Sprintf("m%d", i), base.Add(time.Duration(i)*time.Minute))
	}
	// Touch m0 so m1 becomes the oldest.
	cache.ColorID("m0", base.Add(time.Hour))

	id := cache.ColorID("new", base.Add(2*time.Hour))
	assert.Equal(t, "2", id)
	_, stillThere := cache.Labels["m1"]
	assert.False(t, stillThere)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", FileName)
	cache, err := NewColorCache(path)
	require.NoError(t, err)
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	cache.ColorID("Standup", now)
	cache.ColorID("Review", now)
	require.NoError(t, cache.Save())

	reloaded, err := NewColorCache(path)
	require.NoError(t, err)
	assert.Equal(t, "2", reloaded.ColorID("Review", now))
}
