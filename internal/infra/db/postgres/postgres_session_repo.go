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

var _ repository.SessionRepository = (*sessionRepo)(nil)

type sessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *sessionRepo {
	return &sessionRepo{pool: pool}
}

const sessionCols = `id, service_id, community_id, kind, starts_at, ends_at, local_id, capacity, professional_id, meeting_url, created_at`

func (r *sessionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Session) error {
	const q = `
INSERT INTO sessions (
  id, service_id, community_id, kind, starts_at, ends_at, local_id, capacity, professional_id, meeting_url, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
  starts_at=$5, ends_at=$6, local_id=$7, capacity=$8, professional_id=$9, meeting_url=$10;`

	_, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.ServiceID, s.CommunityID, string(s.Kind), s.StartsAt, s.EndsAt,
		nullIfEmpty(s.LocalID), s.Capacity, nullIfEmpty(s.ProfessionalID), nullIfEmpty(s.MeetingURL), s.CreatedAt)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return err
		default:
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *sessionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Session, error) {
	const q = `SELECT ` + sessionCols + ` FROM sessions WHERE id=$1;`
	return r.queryOne(ctx, tx, q, id)
}

// FindByIDForUpdate locks the session row for the rest of the transaction.
// Presencial admission serializes on this lock before counting reservations.
func (r *sessionRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.Session, error) {
	const q = `SELECT ` + sessionCols + ` FROM sessions WHERE id=$1 FOR UPDATE;`
	return r.queryOne(ctx, tx, q, id)
}

func (r *sessionRepo) ListUpcoming(ctx context.Context, tx repository.Tx, communityID string, from time.Time, limit int) ([]*model.Session, error) {
	const q = `
SELECT ` + sessionCols + `
  FROM sessions
 WHERE community_id=$1 AND starts_at >= $2
 ORDER BY starts_at ASC
 LIMIT $3;`
	rows, err := queryRows(ctx, r.pool, tx, q, communityID, from, limit)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	var out []*model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *sessionRepo) queryOne(ctx context.Context, tx repository.Tx, sql string, args ...interface{}) (*model.Session, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}
	s, err := scanSession(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return s, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*model.Session, error) {
	s := &model.Session{}
	var kind string
	var localID, professionalID, meetingURL *string
	if err := row.Scan(&s.ID, &s.ServiceID, &s.CommunityID, &kind, &s.StartsAt, &s.EndsAt,
		&localID, &s.Capacity, &professionalID, &meetingURL, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Kind = model.SessionKind(kind)
	if localID != nil {
		s.LocalID = *localID
	}
	if professionalID != nil {
		s.ProfessionalID = *professionalID
	}
	if meetingURL != nil {
		s.MeetingURL = *meetingURL
	}
	return s, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
