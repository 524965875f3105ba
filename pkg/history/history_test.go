package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/harrisonrobin/dayplan/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "data", FileName)),
		"sqlite": NewSQLiteStore(database),
	}
}

func TestPredictWithoutHistoryReturnsDefault(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			p := NewPredictor(store)
			assert.Equal(t, 50.0, p.PredictDuration(context.Background(), "Write report", 50))
		})
	}
}

func TestPredictIsMeanOfRecorded(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			p := NewPredictor(store)
			require.NoError(t, p.RecordCompletion(ctx, "Task1", 30))
			require.NoError(t, p.RecordCompletion(ctx, "Task1", 60))

			assert.Equal(t, 45.0, p.PredictDuration(ctx, "Task1", 50))
			assert.Equal(t, 50.0, p.PredictDuration(ctx, "task1", 50), "lookup is exact-match")
		})
	}
}

func TestPredictCanBeFractional(t *testing.T) {
	ctx := context.Background()
	p := NewPredictor(NewMemoryStore())
	require.NoError(t, p.RecordCompletion(ctx, "Review", 10))
	require.NoError(t, p.RecordCompletion(ctx, "Review", 15))

	assert.Equal(t, 12.5, p.PredictDuration(ctx, "Review", 50))
}

func TestRecordRejectsNonPositive(t *testing.T) {
	p := NewPredictor(NewMemoryStore())
	err := p.RecordCompletion(context.Background(), "Task1", 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)
	err = p.RecordCompletion(context.Background(), "Task1", -5)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestSamplesKeepInsertionOrder(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, m := range []int{20, 5, 40} {
				require.NoError(t, store.Record(ctx, "Email", m))
			}
			got, err := store.Durations(ctx, "Email")
			require.NoError(t, err)
			assert.Equal(t, []int{20, 5, 40}, got)
		})
	}
}

func TestFileStoreIsDurableAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	ctx := context.Background()
	require.NoError(t, NewFileStore(path).Record(ctx, "Task1", 30))

	got, err := NewFileStore(path).Durations(ctx, "Task1")
	require.NoError(t, err)
	assert.Equal(t, []int{30}, got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Task1":[30]}`, string(raw))
}

func TestFileStoreCorruptFileFailsOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))
	ctx := context.Background()
	p := NewPredictor(NewFileStore(path))

	assert.Equal(t, 50.0, p.PredictDuration(ctx, "Task1", 50))

	require.NoError(t, p.RecordCompletion(ctx, "Task1", 25))
	assert.Equal(t, 25.0, p.PredictDuration(ctx, "Task1", 50))
}

func TestFileStoreReadsLegacyFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"Task1": [30, 60], "Other": [10]}`), 0600))

	p := NewPredictor(NewFileStore(path))
	assert.Equal(t, 45.0, p.PredictDuration(context.Background(), "Task1", 50))
}

type failingStore struct{}

func (failingStore) Record(context.Context, string, int) error { return assert.AnError }
func (failingStore) Durations(context.Context, string) ([]int, error) {
	return nil, assert.AnError
}

func TestPredictFailsOpenOnStoreError(t *testing.T) {
	p := NewPredictor(failingStore{})
	assert.Equal(t, 50.0, p.PredictDuration(context.Background(), "Task1", 50))
	assert.ErrorIs(t, p.RecordCompletion(context.Background(), "Task1", 5), assert.AnError)
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]int{1, 2, 3}))
}
