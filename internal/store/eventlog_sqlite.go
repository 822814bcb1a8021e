package store

import (
	"context"
	"database/sql"
	"strings"

	"helpr/internal/model"

	"github.com/google/uuid"
)

const defaultEventsLimit = 50

func (s *Store) appendEvent(ctx context.Context, tx *sql.Tx, action model.Action, zid, actorZID string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO events(event_id, action, zid, actor_id, at_unixms) VALUES(?, ?, ?, ?, ?)`,
		"evt-"+uuid.NewString(), string(action), strings.TrimSpace(zid), strings.TrimSpace(actorZID), s.now().UTC().UnixMilli())
	return err
}

// Events returns up to limit accepted mutations, newest first.
func (s *Store) Events(ctx context.Context, limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = defaultEventsLimit
	}
	rows, err := s.db.QueryContext(ctx, `SELECT event_id, action, zid, actor_id, at_unixms FROM events ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		var ev model.Event
		var action string
		if err := rows.Scan(&ev.ID, &action, &ev.ZID, &ev.ActorID, &ev.AtMs); err != nil {
			return nil, err
		}
		ev.Action = model.Action(action)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
