package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"community-booking/internal/domain"
	"community-booking/internal/domain/model"
	"community-booking/internal/domain/ports/adapter"
	"community-booking/internal/domain/ports/repository"
	"community-booking/internal/infra/metrics"
	"community-booking/internal/infra/worker"
)

// BookingUseCase is the session admission controller. Both admission paths run
// as one transaction: guard re-reads happen after the relevant row lock is
// held, and any failure rolls the whole unit back so there is never a
// reservation without its credit, or vice versa.
type BookingUseCase struct {
	sessions     repository.SessionRepository
	reservations repository.ReservationRepository
	subs         repository.SubscriptionRepository
	ledger       *CreditLedger
	overlaps     *OverlapChecker
	txm          repository.TransactionManager
	notifier     adapter.Notifier
	identity     adapter.Identity
	pool         *worker.Pool
	log          *zerolog.Logger
}

func NewBookingUseCase(
	sessions repository.SessionRepository,
	reservations repository.ReservationRepository,
	subs repository.SubscriptionRepository,
	ledger *CreditLedger,
	overlaps *OverlapChecker,
	txm repository.TransactionManager,
	notifier adapter.Notifier,
	identity adapter.Identity,
	pool *worker.Pool,
	logger *zerolog.Logger,
) *BookingUseCase {
	l := logger.With().Str("component", "BookingUseCase").Logger()
	return &BookingUseCase{
		sessions:     sessions,
		reservations: reservations,
		subs:         subs,
		ledger:       ledger,
		overlaps:     overlaps,
		txm:          txm,
		notifier:     notifier,
		identity:     identity,
		pool:         pool,
		log:          &l,
	}
}

// ReservePresencial admits a client into a capacity-bounded session.
//
// The session row is locked first; the reservation count is taken while the
// lock is held, so of N concurrent requests for the last slot exactly one
// inserts and the rest see the full count and fail with ErrNoCapacity.
// Duplicate and overlap guards run before the insert, same as the virtual path.
func (uc *BookingUseCase) ReservePresencial(ctx context.Context, sessionID, clientID string) (*model.Reservation, error) {
	var (
		res  *model.Reservation
		sess *model.Session
	)
	err := uc.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		sess, err = uc.sessions.FindByIDForUpdate(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if sess.Kind != model.SessionKindPresencial {
			return domain.ErrInvalidArgument
		}

		count, err := uc.reservations.CountConfirmedBySession(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if count >= sess.Capacity {
			return domain.ErrNoCapacity
		}

		if _, err := uc.reservations.FindConfirmed(ctx, tx, clientID, sessionID); err == nil {
			return domain.ErrAlreadyReserved
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		conflict, err := uc.overlaps.HasOverlap(ctx, tx, clientID, sess.CommunityID, sess.StartsAt, sess.EndsAt)
		if err != nil {
			return err
		}
		if conflict {
			return domain.ErrTimeConflict
		}

		sub, err := uc.subs.FindActiveByClientAndCommunity(ctx, tx, clientID, sess.CommunityID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNoActiveSubscription
		}
		if err != nil {
			return err
		}

		res, err = model.NewReservation(ulid.Make().String(), clientID, sessionID, sess.CommunityID)
		if err != nil {
			return err
		}
		if err := uc.reservations.Create(ctx, tx, res); err != nil {
			return err
		}
		return uc.ledger.Consume(ctx, tx, sub.ID, clientID)
	})
	if err != nil {
		metrics.IncReservationRejected(string(model.SessionKindPresencial), rejectionReason(err))
		return nil, err
	}

	metrics.IncReservationCreated(string(model.SessionKindPresencial))
	uc.log.Info().Str("reservation_id", res.ID).Str("session_id", sessionID).
		Str("client_id", clientID).Msg("presencial reservation confirmed")
	uc.notifyAsync(ctx, res, sess, true)
	return res, nil
}

// ReserveVirtual admits a client into an unbounded virtual session, gated by
// duplicate, overlap and credit checks. The duplicate race is resolved by the
// partial unique index on (client, session): the loser's insert comes back as
// ErrAlreadyReserved rather than a second row.
func (uc *BookingUseCase) ReserveVirtual(ctx context.Context, sessionID, clientID, communityID string) (*model.Reservation, error) {
	var (
		res  *model.Reservation
		sess *model.Session
	)
	err := uc.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		sess, err = uc.sessions.FindByID(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if sess.Kind != model.SessionKindVirtual || sess.CommunityID != communityID {
			return domain.ErrInvalidArgument
		}

		if _, err := uc.reservations.FindConfirmed(ctx, tx, clientID, sessionID); err == nil {
			return domain.ErrAlreadyReserved
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		conflict, err := uc.overlaps.HasOverlap(ctx, tx, clientID, communityID, sess.StartsAt, sess.EndsAt)
		if err != nil {
			return err
		}
		if conflict {
			return domain.ErrTimeConflict
		}

		sub, err := uc.subs.FindActiveByClientAndCommunity(ctx, tx, clientID, communityID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNoActiveSubscription
		}
		if err != nil {
			return err
		}

		ok, err := uc.ledger.HasCredits(ctx, tx, sub.ID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInsufficientCredits
		}

		res, err = model.NewReservation(ulid.Make().String(), clientID, sessionID, communityID)
		if err != nil {
			return err
		}
		if err := uc.reservations.Create(ctx, tx, res); err != nil {
			return err
		}
		// Consume locks the credit row and re-checks; HasCredits above was
		// only a fast pre-check, this is the authoritative one.
		return uc.ledger.Consume(ctx, tx, sub.ID, clientID)
	})
	if err != nil {
		metrics.IncReservationRejected(string(model.SessionKindVirtual), rejectionReason(err))
		return nil, err
	}

	metrics.IncReservationCreated(string(model.SessionKindVirtual))
	uc.log.Info().Str("reservation_id", res.ID).Str("session_id", sessionID).
		Str("client_id", clientID).Msg("virtual reservation confirmed")
	uc.notifyAsync(ctx, res, sess, true)
	return res, nil
}

// CancelReservation flips the reservation to cancelled and restores the credit
// for credit-limited plans. Presencial capacity frees implicitly: the count
// query only sees confirmed rows. Cancelling twice is an ack, not an error.
func (uc *BookingUseCase) CancelReservation(ctx context.Context, reservationID, clientID string) error {
	var (
		res       *model.Reservation
		sess      *model.Session
		cancelled bool
	)
	err := uc.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		res, err = uc.reservations.FindByID(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		if res.ClientID != clientID {
			return domain.ErrNotOwner
		}
		if err := res.Cancel(); err != nil {
			// already cancelled: idempotent ack
			return nil
		}
		cancelled = true
		if err := uc.reservations.Save(ctx, tx, res); err != nil {
			return err
		}

		sess, err = uc.sessions.FindByID(ctx, tx, res.SessionID)
		if err != nil {
			return err
		}

		sub, err := uc.subs.FindActiveByClientAndCommunity(ctx, tx, clientID, res.CommunityID)
		if errors.Is(err, domain.ErrNotFound) {
			// Subscription no longer active (frozen or back in the funnel);
			// there is no live credit record to restore into.
			return nil
		}
		if err != nil {
			return err
		}
		return uc.ledger.Restore(ctx, tx, sub.ID, clientID)
	})
	if err != nil {
		return err
	}
	if !cancelled {
		return nil
	}

	metrics.IncReservationCancelled(string(sess.Kind))
	uc.log.Info().Str("reservation_id", reservationID).Str("client_id", clientID).Msg("reservation cancelled")
	uc.notifyAsync(ctx, res, sess, false)
	return nil
}

// ListReservations returns the client's reservations, newest first.
func (uc *BookingUseCase) ListReservations(ctx context.Context, clientID string, limit int) ([]*model.Reservation, error) {
	return uc.reservations.ListByClient(ctx, repository.NoTX, clientID, limit)
}

// ListUpcomingSessions returns the community's sessions starting at or after
// from, soonest first.
func (uc *BookingUseCase) ListUpcomingSessions(ctx context.Context, communityID string, from time.Time, limit int) ([]*model.Session, error) {
	return uc.sessions.ListUpcoming(ctx, repository.NoTX, communityID, from, limit)
}

// notifyAsync resolves the recipient while the request context (and its auth
// claims) is still alive, then hands the send off to the worker pool. Failures
// are logged by the pool and never reach the caller; the reservation is
// already committed.
func (uc *BookingUseCase) notifyAsync(ctx context.Context, res *model.Reservation, sess *model.Session, confirmed bool) {
	if uc.pool == nil || uc.notifier == nil {
		return
	}
	email, err := uc.identity.CurrentUserEmail(ctx)
	if err != nil {
		uc.log.Warn().Err(err).Str("reservation_id", res.ID).Msg("no recipient for notification")
		return
	}
	notice := adapter.ReservationNotice{
		ReservationID: res.ID,
		SessionKind:   string(sess.Kind),
		StartsAt:      sess.StartsAt,
		EndsAt:        sess.EndsAt,
		MeetingURL:    sess.MeetingURL,
	}
	task := func(ctx context.Context) error {
		if confirmed {
			return uc.notifier.NotifyReservationConfirmed(ctx, email, notice)
		}
		return uc.notifier.NotifyReservationCancelled(ctx, email, notice)
	}
	if err := uc.pool.Submit(task); err != nil {
		uc.log.Warn().Err(err).Str("reservation_id", res.ID).Msg("notification dropped")
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoCapacity):
		return "no_capacity"
	case errors.Is(err, domain.ErrInsufficientCredits):
		return "insufficient_credits"
	case errors.Is(err, domain.ErrAlreadyReserved):
		return "already_reserved"
	case errors.Is(err, domain.ErrTimeConflict):
		return "time_conflict"
	case errors.Is(err, domain.ErrNoActiveSubscription):
		return "no_subscription"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return "concurrency_conflict"
	default:
		return "error"
	}
}
