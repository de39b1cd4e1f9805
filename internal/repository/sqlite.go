package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/Shivanand-hulikatti/event-inscriptions/internal/model"
)

// sqlExecutor is satisfied by both *sql.DB and *sql.Tx.
type sqlExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLite is a Conn backed by database/sql and modernc.org/sqlite. The
// database must be opened with _txlock=immediate so every transaction holds
// the write lock from BEGIN; that lock is what serialises capacity checks.
type SQLite struct {
	db    sqlExecutor
	root  *sql.DB
	tx    *sql.Tx
	depth int
}

var (
	_ Conn = (*SQLite)(nil)
	_ Tx   = (*sqliteTx)(nil)
)

// NewSQLite wraps an open SQLite database as a store handle.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db, root: db}
}

// Begin starts a transaction, or a savepoint when s is already transactional.
func (s *SQLite) Begin(ctx context.Context) (Tx, error) {
	if s.tx == nil {
		tx, err := s.root.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		return &sqliteTx{SQLite: SQLite{db: tx, root: s.root, tx: tx}}, nil
	}

	depth := s.depth + 1
	name := fmt.Sprintf("sp_%d", depth)
	if _, err := s.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return nil, fmt.Errorf("savepoint: %w", err)
	}
	return &sqliteTx{
		SQLite:    SQLite{db: s.tx, root: s.root, tx: s.tx, depth: depth},
		savepoint: name,
	}, nil
}

type sqliteTx struct {
	SQLite
	savepoint string
	done      bool
}

func (t *sqliteTx) Commit(ctx context.Context) error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	if t.savepoint != "" {
		_, err := t.tx.ExecContext(ctx, "RELEASE "+t.savepoint)
		return err
	}
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback(ctx context.Context) error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	if t.savepoint != "" {
		if _, err := t.tx.ExecContext(ctx, "ROLLBACK TO "+t.savepoint); err != nil {
			return err
		}
		_, err := t.tx.ExecContext(ctx, "RELEASE "+t.savepoint)
		return err
	}
	return t.tx.Rollback()
}

func sqlitePlaceholder(int) string { return "?" }

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

func classifySQLite(err error) error {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return ErrConflict
		case sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY:
			return ErrMissingReference
		}
	}
	return err
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// LockEventCapacity reads the event's max players. The write lock is already
// held since BEGIN IMMEDIATE.
func (s *SQLite) LockEventCapacity(ctx context.Context, eventID string) (int, error) {
	var maxPlayers int
	err := s.db.QueryRowContext(ctx,
		`SELECT max_players FROM events WHERE id = ?`, eventID,
	).Scan(&maxPlayers)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("read event capacity: %w", err)
	}
	return maxPlayers, nil
}

func (s *SQLite) CountRegistrations(ctx context.Context, eventID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = ?`, eventID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

func (s *SQLite) RegistrationExists(ctx context.Context, userID, eventID string) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM registrations WHERE user_id = ? AND event_id = ?)`,
		userID, eventID,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}
	return exists, nil
}

func (s *SQLite) InsertRegistration(ctx context.Context, reg model.Registration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO registrations (id, user_id, event_id, created_at) VALUES (?, ?, ?, ?)`,
		reg.ID, reg.UserID, reg.EventID, toMillis(reg.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert registration: %w", classifySQLite(err))
	}
	return nil
}

func (s *SQLite) GetRegistration(ctx context.Context, id string) (model.Registration, error) {
	var (
		reg       model.Registration
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, event_id, created_at FROM registrations WHERE id = ?`, id,
	).Scan(&reg.ID, &reg.UserID, &reg.EventID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Registration{}, ErrNotFound
		}
		return model.Registration{}, fmt.Errorf("get registration: %w", err)
	}
	reg.CreatedAt = fromMillis(createdAt)
	return reg, nil
}

func (s *SQLite) DeleteRegistration(ctx context.Context, userID, eventID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM registrations WHERE user_id = ? AND event_id = ?`, userID, eventID)
	if err != nil {
		return false, fmt.Errorf("delete registration: %w", err)
	}
	n, err := rowsAffected(res)
	return n > 0, err
}

func (s *SQLite) DeleteRegistrationByID(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM registrations WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete registration by id: %w", err)
	}
	n, err := rowsAffected(res)
	return n > 0, err
}

func (s *SQLite) DeleteRegistrationsForEvent(ctx context.Context, eventID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM registrations WHERE event_id = ?`, eventID)
	if err != nil {
		return 0, fmt.Errorf("delete event registrations: %w", err)
	}
	return rowsAffected(res)
}

func (s *SQLite) ListEventIDsByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT event_id FROM registrations WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user events: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user event: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLite) ListRegistrationsByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, event_id, created_at
		   FROM registrations
		  WHERE event_id = ?
		  ORDER BY created_at ASC, rowid ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var (
			reg       model.Registration
			createdAt int64
		)
		if err := rows.Scan(&reg.ID, &reg.UserID, &reg.EventID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		reg.CreatedAt = fromMillis(createdAt)
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (s *SQLite) ListRegistrationDetails(ctx context.Context) ([]model.RegistrationDetail, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.user_id, r.event_id, r.created_at, u.first_name, u.surname, e.description
		   FROM registrations r
		   JOIN users u ON r.user_id = u.id
		   JOIN events e ON r.event_id = e.id
		  ORDER BY r.created_at ASC, r.rowid ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list registration details: %w", err)
	}
	defer rows.Close()

	var out []model.RegistrationDetail
	for rows.Next() {
		var (
			d         model.RegistrationDetail
			createdAt int64
		)
		if err := rows.Scan(&d.ID, &d.UserID, &d.EventID, &createdAt,
			&d.FirstName, &d.Surname, &d.EventDescription); err != nil {
			return nil, fmt.Errorf("scan registration detail: %w", err)
		}
		d.CreatedAt = fromMillis(createdAt)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLite) UpdateRegistration(ctx context.Context, id string, patch model.RegistrationPatch) (bool, error) {
	sets := registrationAssignments(patch)
	if len(sets) == 0 {
		return false, fmt.Errorf("update registration: empty patch")
	}
	query, args := updateStatement("registrations", sets, id, sqlitePlaceholder)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update registration: %w", classifySQLite(err))
	}
	n, err := rowsAffected(res)
	return n > 0, err
}

func (s *SQLite) CreateEvent(ctx context.Context, e model.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, creator_id, description, max_players, event_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatorID, e.Description, e.MaxPlayers, toMillis(e.EventDate), toMillis(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", classifySQLite(err))
	}
	return nil
}

const sqliteEventColumns = `e.id, e.creator_id, e.description, e.max_players, e.event_date, e.created_at,
		(SELECT COUNT(*) FROM registrations r WHERE r.event_id = e.id)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteEvent(row rowScanner) (model.Event, error) {
	var (
		e                    model.Event
		eventDate, createdAt int64
	)
	if err := row.Scan(&e.ID, &e.CreatorID, &e.Description, &e.MaxPlayers,
		&eventDate, &createdAt, &e.RegisteredCount); err != nil {
		return model.Event{}, err
	}
	e.EventDate = fromMillis(eventDate)
	e.CreatedAt = fromMillis(createdAt)
	return e, nil
}

func (s *SQLite) GetEvent(ctx context.Context, id string) (model.Event, error) {
	e, err := scanSQLiteEvent(s.db.QueryRowContext(ctx,
		`SELECT `+sqliteEventColumns+` FROM events e WHERE e.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Event{}, ErrNotFound
		}
		return model.Event{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (s *SQLite) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteEventColumns+` FROM events e ORDER BY e.created_at DESC, e.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanSQLiteEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *SQLite) EventExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE id = ?)`, id,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check event: %w", err)
	}
	return exists, nil
}

func (s *SQLite) UpdateEvent(ctx context.Context, id string, patch model.EventPatch) (bool, error) {
	sets := eventAssignments(patch, func(t time.Time) any { return toMillis(t) })
	if len(sets) == 0 {
		return false, fmt.Errorf("update event: empty patch")
	}
	query, args := updateStatement("events", sets, id, sqlitePlaceholder)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update event: %w", classifySQLite(err))
	}
	n, err := rowsAffected(res)
	return n > 0, err
}

func (s *SQLite) DeleteEvent(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete event: %w", classifySQLite(err))
	}
	n, err := rowsAffected(res)
	return n > 0, err
}

func (s *SQLite) CreateUser(ctx context.Context, u model.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, first_name, surname, email, is_admin, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.FirstName, u.Surname, u.Email, u.IsAdmin, toMillis(u.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", classifySQLite(err))
	}
	return nil
}

func (s *SQLite) GetUser(ctx context.Context, id string) (model.User, error) {
	var (
		u         model.User
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, first_name, surname, email, is_admin, created_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.FirstName, &u.Surname, &u.Email, &u.IsAdmin, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = fromMillis(createdAt)
	return u, nil
}

func (s *SQLite) UserExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)`, id,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return exists, nil
}
