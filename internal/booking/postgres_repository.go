package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrReservationNotFound is returned when a reservation ID is unknown.
var ErrReservationNotFound = errors.New("reservation not found")

// DB is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository reads and writes reservations in Postgres. The
// scheduling engine itself only calls FindOverlapping; the write helpers
// exist for the booking flow that owns the table.
type PostgresRepository struct {
	pool DB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("booking: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// NewPostgresRepositoryWithDB allows injecting mocks for tests.
func NewPostgresRepositoryWithDB(db DB) *PostgresRepository {
	return &PostgresRepository{pool: db}
}

// FindOverlapping returns the active reservations for a resource that
// intersect the half-open window [from, to). Terminal statuses are
// filtered in SQL so the engine never sees them.
func (r *PostgresRepository) FindOverlapping(ctx context.Context, resourceID string, from, to time.Time) ([]Reservation, error) {
	query := `
		SELECT id, resource_id, starts_at, ends_at, status
		FROM reservations
		WHERE resource_id = $1
		  AND starts_at < $3
		  AND ends_at > $2
		  AND status NOT IN ('cancelled', 'no_show')
		ORDER BY starts_at
	`
	rows, err := r.pool.Query(ctx, query, resourceID, from, to)
	if err != nil {
		return nil, fmt.Errorf("booking: find overlapping: %w", err)
	}
	defer rows.Close()

	var reservations []Reservation
	for rows.Next() {
		var res Reservation
		if err := rows.Scan(&res.ID, &res.ResourceID, &res.Start, &res.End, &res.Status); err != nil {
			return nil, fmt.Errorf("booking: scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("booking: iterate reservations: %w", err)
	}
	return reservations, nil
}

// Create inserts a reservation row and returns it with the generated ID.
func (r *PostgresRepository) Create(ctx context.Context, resourceID string, start, end time.Time, status Status) (*Reservation, error) {
	id := uuid.New()
	query := `
		INSERT INTO reservations (id, resource_id, starts_at, ends_at, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, query, id, resourceID, start, end, status).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("booking: insert reservation: %w", err)
	}
	return &Reservation{
		ID:         id.String(),
		ResourceID: resourceID,
		Start:      start,
		End:        end,
		Status:     status,
	}, nil
}

// Cancel marks a reservation cancelled, freeing its window.
func (r *PostgresRepository) Cancel(ctx context.Context, reservationID string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE reservations SET status = 'cancelled' WHERE id = $1`, reservationID)
	if err != nil {
		return fmt.Errorf("booking: cancel reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReservationNotFound
	}
	return nil
}
