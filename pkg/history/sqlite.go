package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQLiteStore keeps one row per observed completion.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore expects a database opened through db.Open.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Record(ctx context.Context, task string, minutes int) error {
	query := `INSERT INTO task_history (id, task, minutes, recorded_at) VALUES (?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		uuid.NewString(),
		task,
		minutes,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting task history: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Durations(ctx context.Context, task string) ([]int, error) {
	query := `SELECT minutes FROM task_history WHERE task = ? ORDER BY rowid`
	rows, err := s.db.QueryContext(ctx, query, task)
	if err != nil {
		return nil, fmt.Errorf("listing task history: %w", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var m int
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scanning task history: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
