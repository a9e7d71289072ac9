package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/ozzus/fan-predict/internal/domain/models"
)

var logColumns = []string{
	"kind",
	"provider",
	"endpoint",
	"status_code",
	"duration_ms",
	"message",
	"created_at",
}

func (r *Repository) InsertLogs(ctx context.Context, entries []models.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	_, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"provider_logs"},
		logColumns,
		pgx.CopyFromSlice(len(entries), func(i int) ([]any, error) {
			return logRow(entries[i]), nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy provider logs: %w", err)
	}

	return nil
}

func logRow(e models.LogEntry) []any {
	return []any{
		string(e.Kind),
		e.Provider,
		e.Endpoint,
		e.StatusCode,
		e.Duration.Milliseconds(),
		e.Message,
		e.At.UTC(),
	}
}
