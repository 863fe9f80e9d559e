package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"community-booking/internal/domain/model"
	"community-booking/internal/domain/ports/repository"
)

// SessionUseCase is the admin-side session catalog.
type SessionUseCase struct {
	sessions repository.SessionRepository
	log      *zerolog.Logger
}

func NewSessionUseCase(sessions repository.SessionRepository, logger *zerolog.Logger) *SessionUseCase {
	l := logger.With().Str("component", "SessionUseCase").Logger()
	return &SessionUseCase{sessions: sessions, log: &l}
}

func (uc *SessionUseCase) CreatePresencial(ctx context.Context, serviceID, communityID, localID string, capacity int, startsAt, endsAt time.Time) (*model.Session, error) {
	s, err := model.NewPresencialSession(uuid.NewString(), serviceID, communityID, localID, capacity, startsAt, endsAt)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Save(ctx, repository.NoTX, s); err != nil {
		return nil, err
	}
	uc.log.Info().Str("session_id", s.ID).Str("community_id", communityID).
		Int("capacity", capacity).Msg("presencial session created")
	return s, nil
}

func (uc *SessionUseCase) CreateVirtual(ctx context.Context, serviceID, communityID, professionalID, meetingURL string, startsAt, endsAt time.Time) (*model.Session, error) {
	s, err := model.NewVirtualSession(uuid.NewString(), serviceID, communityID, professionalID, meetingURL, startsAt, endsAt)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Save(ctx, repository.NoTX, s); err != nil {
		return nil, err
	}
	uc.log.Info().Str("session_id", s.ID).Str("community_id", communityID).Msg("virtual session created")
	return s, nil
}

func (uc *SessionUseCase) Get(ctx context.Context, id string) (*model.Session, error) {
	return uc.sessions.FindByID(ctx, repository.NoTX, id)
}
