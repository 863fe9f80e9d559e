package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"community-booking/internal/domain"
	"community-booking/internal/domain/model"
	"community-booking/internal/domain/ports/repository"
)

var _ repository.ReservationRepository = (*reservationRepo)(nil)

type reservationRepo struct {
	pool *pgxpool.Pool
}

func NewReservationRepo(pool *pgxpool.Pool) *reservationRepo {
	return &reservationRepo{pool: pool}
}

const reservationCols = `id, client_id, session_id, community_id, status, reserved_at, cancelled_at`

// Create inserts a fresh reservation. The partial unique index
// uq_reservations_client_session (client_id, session_id) WHERE status='confirmed'
// turns the loser of a duplicate-booking race into ErrAlreadyReserved.
func (r *reservationRepo) Create(ctx context.Context, tx repository.Tx, res *model.Reservation) error {
	const q = `
INSERT INTO reservations (id, client_id, session_id, community_id, status, reserved_at, cancelled_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);`

	_, err := execSQL(ctx, r.pool, tx, q,
		res.ID, res.ClientID, res.SessionID, res.CommunityID, string(res.Status), res.ReservedAt, res.CancelledAt)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return err
		default:
			if isPgErr(err, codeUniqueViolation) {
				return domain.ErrAlreadyReserved
			}
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *reservationRepo) Save(ctx context.Context, tx repository.Tx, res *model.Reservation) error {
	const q = `
UPDATE reservations SET status=$2, cancelled_at=$3 WHERE id=$1;`
	ct, err := execSQL(ctx, r.pool, tx, q, res.ID, string(res.Status), res.CancelledAt)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return err
		default:
			return domain.ErrOperationFailed
		}
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *reservationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE id=$1;`
	return r.queryOne(ctx, tx, q, id)
}

func (r *reservationRepo) FindConfirmed(ctx context.Context, tx repository.Tx, clientID, sessionID string) (*model.Reservation, error) {
	const q = `
SELECT ` + reservationCols + `
  FROM reservations
 WHERE client_id=$1 AND session_id=$2 AND status='confirmed'
 LIMIT 1;`
	return r.queryOne(ctx, tx, q, clientID, sessionID)
}

func (r *reservationRepo) CountConfirmedBySession(ctx context.Context, tx repository.Tx, sessionID string) (int, error) {
	const q = `SELECT COUNT(*) FROM reservations WHERE session_id=$1 AND status='confirmed';`
	row, err := pickRow(ctx, r.pool, tx, q, sessionID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

// HasOverlapping uses half-open interval intersection
// (a.start < b.end AND b.start < a.end) and is scoped to one community:
// simultaneous bookings across communities are allowed.
func (r *reservationRepo) HasOverlapping(ctx context.Context, tx repository.Tx, clientID, communityID string, start, end time.Time) (bool, error) {
	const q = `
SELECT EXISTS (
  SELECT 1
    FROM reservations r
    JOIN sessions s ON s.id = r.session_id
   WHERE r.client_id=$1
     AND r.community_id=$2
     AND r.status='confirmed'
     AND s.starts_at < $4
     AND $3 < s.ends_at
);`
	row, err := pickRow(ctx, r.pool, tx, q, clientID, communityID, start, end)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}

func (r *reservationRepo) ListByClient(ctx context.Context, tx repository.Tx, clientID string, limit int) ([]*model.Reservation, error) {
	const q = `
SELECT ` + reservationCols + `
  FROM reservations
 WHERE client_id=$1
 ORDER BY reserved_at DESC
 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, clientID, limit)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	var out []*model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *reservationRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.ReservationStatus]int, error) {
	const q = `SELECT status, COUNT(*) FROM reservations GROUP BY status;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	counts := make(map[model.ReservationStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		counts[model.ReservationStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return counts, nil
}

func (r *reservationRepo) queryOne(ctx context.Context, tx repository.Tx, sql string, args ...interface{}) (*model.Reservation, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}
	res, err := scanReservation(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return res, nil
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
	res := &model.Reservation{}
	var status string
	if err := row.Scan(&res.ID, &res.ClientID, &res.SessionID, &res.CommunityID,
		&status, &res.ReservedAt, &res.CancelledAt); err != nil {
		return nil, err
	}
	res.Status = model.ReservationStatus(status)
	return res, nil
}
