package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"helpr/internal/model"
	"helpr/internal/mutate"

	_ "modernc.org/sqlite"
)

// Options configures a queue store.
type Options struct {
	// AdminZID is the only identity allowed to end the session. Defaults to "admin".
	AdminZID string

	// Now is used for event timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Store is the service's authoritative queue. State lives in an in-memory SQLite
// database owned by this process; it does not survive a restart.
//
// All mutations run inside a transaction on a single connection, and every
// transition is a compare-and-set on the request's current status, so of two
// concurrent claims on the same waiting request exactly one succeeds.
type Store struct {
	db       *sql.DB
	adminZID string
	now      func() time.Time

	version atomic.Uint64
}

func Open(ctx context.Context, opts Options) (*Store, error) {
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Each connection to ":memory:" is its own database; pin to one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	adminZID := strings.TrimSpace(opts.AdminZID)
	if adminZID == "" {
		adminZID = model.DefaultAdminZID
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{db: db, adminZID: adminZID, now: now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) AdminZID() string { return s.adminZID }

// Version increases by one after every committed mutation.
func (s *Store) Version() uint64 { return s.version.Load() }

// Queue returns every request in service order.
func (s *Store) Queue(ctx context.Context) (model.Queue, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT zid, description, status FROM requests ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := model.Queue{}
	for rows.Next() {
		var r model.Request
		var st string
		if err := rows.Scan(&r.ZID, &r.Description, &st); err != nil {
			return nil, err
		}
		r.Status = model.Status(st)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MakeRequest appends a waiting request for zid.
func (s *Store) MakeRequest(ctx context.Context, zid, description string) error {
	zid = strings.TrimSpace(zid)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		have, err := currentStatus(ctx, tx, zid)
		if err != nil {
			return err
		}
		if err := mutate.ValidateSubmit(zid, description, have != ""); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO requests(zid, description, status, position, created_at_unixms)
			VALUES(?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM requests), ?)`,
			zid, description, string(model.StatusWaiting), s.now().UTC().UnixMilli()); err != nil {
			return err
		}
		return s.appendEvent(ctx, tx, model.ActionSubmit, zid, zid)
	})
}

// Transition applies help, cancel, resolve or revert to zid's request.
// actorZID is recorded in the event log only.
func (s *Store) Transition(ctx context.Context, action model.Action, zid, actorZID string) error {
	zid = strings.TrimSpace(zid)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		have, err := currentStatus(ctx, tx, zid)
		if err != nil {
			return err
		}
		to, err := mutate.Apply(action, zid, have)
		if err != nil {
			return err
		}

		var res sql.Result
		if to == "" {
			res, err = tx.ExecContext(ctx, `DELETE FROM requests WHERE zid = ? AND status = ?`, zid, string(have))
		} else {
			res, err = tx.ExecContext(ctx, `UPDATE requests SET status = ? WHERE zid = ? AND status = ?`, string(to), zid, string(have))
		}
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n != 1 {
			t, _ := mutate.TransitionFor(action)
			return &mutate.TransitionError{Action: action, ZID: zid, Want: t.From}
		}

		if action == model.ActionResolve {
			if _, err := tx.ExecContext(ctx, `INSERT INTO priorities(zid, resolved) VALUES(?, 1)
				ON CONFLICT(zid) DO UPDATE SET resolved = resolved + 1`, zid); err != nil {
				return err
			}
		}
		return s.appendEvent(ctx, tx, action, zid, actorZID)
	})
}

func (s *Store) Help(ctx context.Context, zid, actorZID string) error {
	return s.Transition(ctx, model.ActionHelp, zid, actorZID)
}

func (s *Store) Cancel(ctx context.Context, zid string) error {
	return s.Transition(ctx, model.ActionCancel, zid, zid)
}

func (s *Store) Resolve(ctx context.Context, zid, actorZID string) error {
	return s.Transition(ctx, model.ActionResolve, zid, actorZID)
}

func (s *Store) Revert(ctx context.Context, zid, actorZID string) error {
	return s.Transition(ctx, model.ActionRevert, zid, actorZID)
}

// Remaining returns how many waiting requests are ahead of zid's waiting request.
func (s *Store) Remaining(ctx context.Context, zid string) (int, error) {
	zid = strings.TrimSpace(zid)
	var pos int64
	err := s.db.QueryRowContext(ctx, `SELECT position FROM requests WHERE zid = ? AND status = ?`,
		zid, string(model.StatusWaiting)).Scan(&pos)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, mutate.NotFoundError{Kind: "waiting request", ID: zid}
	}
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM requests WHERE status = ? AND position < ?`,
		string(model.StatusWaiting), pos).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Reprioritise stably reorders the queue so identities with fewer resolved
// requests this session come first.
func (s *Store) Reprioritise(ctx context.Context, actorZID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT r.zid FROM requests r
			LEFT JOIN priorities p ON p.zid = r.zid
			ORDER BY COALESCE(p.resolved, 0) ASC, r.position ASC`)
		if err != nil {
			return err
		}
		var order []string
		for rows.Next() {
			var zid string
			if err := rows.Scan(&zid); err != nil {
				rows.Close()
				return err
			}
			order = append(order, zid)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		// Two passes so the UNIQUE index on position never sees a collision.
		if _, err := tx.ExecContext(ctx, `UPDATE requests SET position = -position`); err != nil {
			return err
		}
		for i, zid := range order {
			if _, err := tx.ExecContext(ctx, `UPDATE requests SET position = ? WHERE zid = ?`, i+1, zid); err != nil {
				return err
			}
		}
		return s.appendEvent(ctx, tx, model.ActionReprioritise, "", actorZID)
	})
}

// End removes every request and forgets resolved counts. Only the administrator may call it.
func (s *Store) End(ctx context.Context, actorZID string) error {
	if err := mutate.ValidateEnd(actorZID, s.adminZID); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM requests`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM priorities`); err != nil {
			return err
		}
		return s.appendEvent(ctx, tx, model.ActionEnd, "", actorZID)
	})
}

// Resolved returns the resolved count for zid in the current session.
func (s *Store) Resolved(ctx context.Context, zid string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT resolved FROM priorities WHERE zid = ?`, strings.TrimSpace(zid)).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.version.Add(1)
	return nil
}

func currentStatus(ctx context.Context, tx *sql.Tx, zid string) (model.Status, error) {
	var st string
	err := tx.QueryRowContext(ctx, `SELECT status FROM requests WHERE zid = ?`, zid).Scan(&st)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return model.Status(st), nil
}
