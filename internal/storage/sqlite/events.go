package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chaintab/chaintab/internal/models"
)

// AppendEvent writes one notification record. The events table is
// append-only and never read by the core; it exists for off-core indexing.
func (s *SQLiteStore) AppendEvent(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt == 0 {
		event.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, kind, group_id, actor, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID, event.Kind, event.GroupID, event.Actor, event.Payload, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	return nil
}
