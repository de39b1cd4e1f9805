package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/event-inscriptions/internal/model"
)

// pgxDB is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Postgres is a Conn backed by pgx.
type Postgres struct {
	db pgxDB
}

var (
	_ Conn = (*Postgres)(nil)
	_ Tx   = (*postgresTx)(nil)
)

// NewPostgres wraps a pgx pool as a store handle.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{db: pool}
}

// Begin starts a transaction, or a savepoint when p is already transactional.
func (p *Postgres) Begin(ctx context.Context) (Tx, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &postgresTx{Postgres: Postgres{db: tx}, tx: tx}, nil
}

type postgresTx struct {
	Postgres
	tx pgx.Tx
}

func (t *postgresTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *postgresTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

func pgPlaceholder(n int) string { return "$" + strconv.Itoa(n) }

func classifyPg(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return ErrConflict
		case "23503": // foreign_key_violation
			return ErrMissingReference
		}
	}
	return err
}

// LockEventCapacity takes a row-level exclusive lock on the event.
//
// Two joins that read the registration count without a lock can both see a
// free seat and both insert, overbooking the event. SELECT ... FOR UPDATE
// makes any other transaction running the same statement on this event block
// until we COMMIT or ROLLBACK, so count-check-insert runs one join at a time
// per event while joins on other events proceed in parallel.
func (p *Postgres) LockEventCapacity(ctx context.Context, eventID string) (int, error) {
	var maxPlayers int
	err := p.db.QueryRow(ctx,
		`SELECT max_players FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&maxPlayers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("lock event row: %w", err)
	}
	return maxPlayers, nil
}

func (p *Postgres) CountRegistrations(ctx context.Context, eventID string) (int, error) {
	var n int
	err := p.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1`,
		eventID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

func (p *Postgres) RegistrationExists(ctx context.Context, userID, eventID string) (bool, error) {
	var exists bool
	err := p.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM registrations WHERE user_id = $1 AND event_id = $2)`,
		userID, eventID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}
	return exists, nil
}

func (p *Postgres) InsertRegistration(ctx context.Context, reg model.Registration) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO registrations (id, user_id, event_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		reg.ID, reg.UserID, reg.EventID, reg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert registration: %w", classifyPg(err))
	}
	return nil
}

func (p *Postgres) GetRegistration(ctx context.Context, id string) (model.Registration, error) {
	var reg model.Registration
	err := p.db.QueryRow(ctx,
		`SELECT id, user_id, event_id, created_at FROM registrations WHERE id = $1`,
		id,
	).Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Registration{}, ErrNotFound
		}
		return model.Registration{}, fmt.Errorf("get registration: %w", err)
	}
	return reg, nil
}

func (p *Postgres) DeleteRegistration(ctx context.Context, userID, eventID string) (bool, error) {
	tag, err := p.db.Exec(ctx,
		`DELETE FROM registrations WHERE user_id = $1 AND event_id = $2`,
		userID, eventID,
	)
	if err != nil {
		return false, fmt.Errorf("delete registration: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (p *Postgres) DeleteRegistrationByID(ctx context.Context, id string) (bool, error) {
	tag, err := p.db.Exec(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete registration by id: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (p *Postgres) DeleteRegistrationsForEvent(ctx context.Context, eventID string) (int64, error) {
	tag, err := p.db.Exec(ctx, `DELETE FROM registrations WHERE event_id = $1`, eventID)
	if err != nil {
		return 0, fmt.Errorf("delete event registrations: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) ListEventIDsByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := p.db.Query(ctx,
		`SELECT event_id FROM registrations WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list user events: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan user events: %w", err)
	}
	return ids, nil
}

func (p *Postgres) ListRegistrationsByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, user_id, event_id, created_at
		 FROM registrations
		 WHERE event_id = $1
		 ORDER BY created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		if err := rows.Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (p *Postgres) ListRegistrationDetails(ctx context.Context) ([]model.RegistrationDetail, error) {
	rows, err := p.db.Query(ctx,
		`SELECT r.id, r.user_id, r.event_id, r.created_at, u.first_name, u.surname, e.description
		 FROM registrations r
		 JOIN users u ON r.user_id = u.id
		 JOIN events e ON r.event_id = e.id
		 ORDER BY r.created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list registration details: %w", err)
	}
	defer rows.Close()

	var out []model.RegistrationDetail
	for rows.Next() {
		var d model.RegistrationDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.EventID, &d.CreatedAt,
			&d.FirstName, &d.Surname, &d.EventDescription); err != nil {
			return nil, fmt.Errorf("scan registration detail: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdateRegistration(ctx context.Context, id string, patch model.RegistrationPatch) (bool, error) {
	sets := registrationAssignments(patch)
	if len(sets) == 0 {
		return false, fmt.Errorf("update registration: empty patch")
	}
	query, args := updateStatement("registrations", sets, id, pgPlaceholder)
	tag, err := p.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update registration: %w", classifyPg(err))
	}
	return tag.RowsAffected() > 0, nil
}

func (p *Postgres) CreateEvent(ctx context.Context, e model.Event) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO events (id, creator_id, description, max_players, event_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.CreatorID, e.Description, e.MaxPlayers, e.EventDate, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", classifyPg(err))
	}
	return nil
}

const pgEventColumns = `e.id, e.creator_id, e.description, e.max_players, e.event_date, e.created_at,
		(SELECT COUNT(*) FROM registrations r WHERE r.event_id = e.id)`

func scanPgEvent(row pgx.Row) (model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.CreatorID, &e.Description, &e.MaxPlayers, &e.EventDate, &e.CreatedAt, &e.RegisteredCount)
	return e, err
}

func (p *Postgres) GetEvent(ctx context.Context, id string) (model.Event, error) {
	e, err := scanPgEvent(p.db.QueryRow(ctx,
		`SELECT `+pgEventColumns+` FROM events e WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Event{}, ErrNotFound
		}
		return model.Event{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// ListEvents returns all events ordered by creation time descending.
func (p *Postgres) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+pgEventColumns+` FROM events e ORDER BY e.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanPgEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (p *Postgres) EventExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := p.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check event: %w", err)
	}
	return exists, nil
}

func (p *Postgres) UpdateEvent(ctx context.Context, id string, patch model.EventPatch) (bool, error) {
	sets := eventAssignments(patch, func(t time.Time) any { return t.UTC() })
	if len(sets) == 0 {
		return false, fmt.Errorf("update event: empty patch")
	}
	query, args := updateStatement("events", sets, id, pgPlaceholder)
	tag, err := p.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update event: %w", classifyPg(err))
	}
	return tag.RowsAffected() > 0, nil
}

func (p *Postgres) DeleteEvent(ctx context.Context, id string) (bool, error) {
	tag, err := p.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete event: %w", classifyPg(err))
	}
	return tag.RowsAffected() > 0, nil
}

func (p *Postgres) CreateUser(ctx context.Context, u model.User) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO users (id, first_name, surname, email, is_admin, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.FirstName, u.Surname, u.Email, u.IsAdmin, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", classifyPg(err))
	}
	return nil
}

func (p *Postgres) GetUser(ctx context.Context, id string) (model.User, error) {
	var u model.User
	err := p.db.QueryRow(ctx,
		`SELECT id, first_name, surname, email, is_admin, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.FirstName, &u.Surname, &u.Email, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (p *Postgres) UserExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := p.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return exists, nil
}
