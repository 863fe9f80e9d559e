package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"community-booking/internal/domain"
	"community-booking/internal/domain/model"
)

// ===== Wire types =====

type subscriptionResponse struct {
	ID          string  `json:"id"`
	ClientID    string  `json:"client_id"`
	CommunityID string  `json:"community_id"`
	PlanID      *string `json:"plan_id,omitempty"`
	PaymentID   *string `json:"payment_id,omitempty"`
	State       string  `json:"state"`
	CreatedAt   string  `json:"created_at"`
}

func toSubscriptionResponse(s *model.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:          s.ID,
		ClientID:    s.ClientID,
		CommunityID: s.CommunityID,
		PlanID:      s.PlanID,
		PaymentID:   s.PaymentID,
		State:       s.State.String(),
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
	}
}

type reservationResponse struct {
	ID          string  `json:"id"`
	SessionID   string  `json:"session_id"`
	CommunityID string  `json:"community_id"`
	Status      string  `json:"status"`
	ReservedAt  string  `json:"reserved_at"`
	CancelledAt *string `json:"cancelled_at,omitempty"`
}

func toReservationResponse(r *model.Reservation) reservationResponse {
	resp := reservationResponse{
		ID:          r.ID,
		SessionID:   r.SessionID,
		CommunityID: r.CommunityID,
		Status:      string(r.Status),
		ReservedAt:  r.ReservedAt.Format(time.RFC3339),
	}
	if r.CancelledAt != nil {
		s := r.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &s
	}
	return resp
}

type sessionResponse struct {
	ID             string `json:"id"`
	ServiceID      string `json:"service_id"`
	CommunityID    string `json:"community_id"`
	Kind           string `json:"kind"`
	StartsAt       string `json:"starts_at"`
	EndsAt         string `json:"ends_at"`
	LocalID        string `json:"local_id,omitempty"`
	Capacity       int    `json:"capacity,omitempty"`
	ProfessionalID string `json:"professional_id,omitempty"`
	MeetingURL     string `json:"meeting_url,omitempty"`
}

func toSessionResponse(s *model.Session) sessionResponse {
	return sessionResponse{
		ID:             s.ID,
		ServiceID:      s.ServiceID,
		CommunityID:    s.CommunityID,
		Kind:           string(s.Kind),
		StartsAt:       s.StartsAt.Format(time.RFC3339),
		EndsAt:         s.EndsAt.Format(time.RFC3339),
		LocalID:        s.LocalID,
		Capacity:       s.Capacity,
		ProfessionalID: s.ProfessionalID,
		MeetingURL:     s.MeetingURL,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses. Everything else is a 500
// with a generic body; internals never leak to the client.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, "Invalid request", http.StatusBadRequest)
	case errors.Is(err, domain.ErrNoCapacity):
		http.Error(w, "Session is full", http.StatusConflict)
	case errors.Is(err, domain.ErrAlreadyReserved):
		http.Error(w, "Already reserved", http.StatusConflict)
	case errors.Is(err, domain.ErrTimeConflict):
		http.Error(w, "Conflicts with another reservation", http.StatusConflict)
	case errors.Is(err, domain.ErrAlreadyExists):
		http.Error(w, "Already exists", http.StatusConflict)
	case errors.Is(err, domain.ErrConcurrencyConflict):
		http.Error(w, "Try again", http.StatusConflict)
	case errors.Is(err, domain.ErrInsufficientCredits):
		http.Error(w, "No credits left", http.StatusPaymentRequired)
	case errors.Is(err, domain.ErrNoActiveSubscription):
		http.Error(w, "No active subscription", http.StatusForbidden)
	case errors.Is(err, domain.ErrNotOwner):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, domain.ErrNotActive), errors.Is(err, domain.ErrInvalidState):
		http.Error(w, "Illegal state transition", http.StatusUnprocessableEntity)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// ===== Enrollment / subscription =====

type enrollRequest struct {
	CommunityID string  `json:"community_id"`
	PlanID      *string `json:"plan_id,omitempty"`
	PaymentID   *string `json:"payment_id,omitempty"`
}

func (s *Server) enrollHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req enrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sub, err := s.subUC.Enroll(r.Context(), claims.Subject, req.CommunityID, req.PlanID, req.PaymentID, claims.Subject)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSubscriptionResponse(sub))
}

func (s *Server) markPaidHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	id := chi.URLParam(r, "id")

	sub, err := s.subUC.MarkPaid(r.Context(), id, claims.Subject)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriptionResponse(sub))
}

func (s *Server) subscriptionTransitionHandler(apply func(r *http.Request, id, actor string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := claimsFrom(r.Context())
		id := chi.URLParam(r, "id")
		if err := apply(r, id, claims.Subject); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) activeSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	communityID := r.URL.Query().Get("community_id")
	if communityID == "" {
		http.Error(w, "community_id is required", http.StatusBadRequest)
		return
	}

	sub, err := s.subUC.GetActive(r.Context(), claims.Subject, communityID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriptionResponse(sub))
}

func (s *Server) creditsHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	id := chi.URLParam(r, "id")

	sub, err := s.subUC.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if sub.ClientID != claims.Subject && claims.Role != "admin" {
		writeError(w, domain.ErrNotOwner)
		return
	}

	usage, err := s.ledger.Usage(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Available int  `json:"available"`
		Consumed  int  `json:"consumed"`
		Unlimited bool `json:"unlimited"`
	}{usage.Available, usage.Consumed, usage.Unlimited})
}

// ===== Sessions and reservations =====

func (s *Server) listSessionsHandler(w http.ResponseWriter, r *http.Request) {
	communityID := r.URL.Query().Get("community_id")
	if communityID == "" {
		http.Error(w, "community_id is required", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	sessions, err := s.bookingUC.ListUpcomingSessions(r.Context(), communityID, time.Now(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, toSessionResponse(sess))
	}
	writeJSON(w, http.StatusOK, struct {
		Data []sessionResponse `json:"data"`
	}{out})
}

type reserveRequest struct {
	Kind        string `json:"kind"` // presencial | virtual
	CommunityID string `json:"community_id"`
}

func (s *Server) reserveHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	sessionID := chi.URLParam(r, "id")

	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var (
		res *model.Reservation
		err error
	)
	switch model.SessionKind(req.Kind) {
	case model.SessionKindPresencial:
		res, err = s.bookingUC.ReservePresencial(r.Context(), sessionID, claims.Subject)
	case model.SessionKindVirtual:
		res, err = s.bookingUC.ReserveVirtual(r.Context(), sessionID, claims.Subject, req.CommunityID)
	default:
		http.Error(w, "Invalid session kind", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReservationResponse(res))
}

func (s *Server) cancelReservationHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.bookingUC.CancelReservation(r.Context(), id, claims.Subject); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listReservationsHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	reservations, err := s.bookingUC.ListReservations(r.Context(), claims.Subject, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]reservationResponse, 0, len(reservations))
	for _, res := range reservations {
		out = append(out, toReservationResponse(res))
	}
	writeJSON(w, http.StatusOK, struct {
		Data []reservationResponse `json:"data"`
	}{out})
}

// ===== Admin: plans, sessions, stats =====

type planCreateRequest struct {
	CommunityID string `json:"community_id"`
	Name        string `json:"name"`
	Credits     int    `json:"credits"`
	PriceCents  int64  `json:"price_cents"`
	Period      string `json:"period"` // monthly | annual
}

func (s *Server) planCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req planCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	plan, err := s.planUC.Create(r.Context(), req.CommunityID, req.Name, req.Credits, req.PriceCents, model.PlanPeriod(req.Period))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) planListHandler(w http.ResponseWriter, r *http.Request) {
	communityID := r.URL.Query().Get("community_id")
	if communityID == "" {
		http.Error(w, "community_id is required", http.StatusBadRequest)
		return
	}

	plans, err := s.planUC.ListByCommunity(r.Context(), communityID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data []*model.Plan `json:"data"`
	}{plans})
}

func (s *Server) planDeactivateHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.planUC.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sessionCreateRequest struct {
	ServiceID      string    `json:"service_id"`
	CommunityID    string    `json:"community_id"`
	Kind           string    `json:"kind"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	LocalID        string    `json:"local_id,omitempty"`
	Capacity       int       `json:"capacity,omitempty"`
	ProfessionalID string    `json:"professional_id,omitempty"`
	MeetingURL     string    `json:"meeting_url,omitempty"`
}

func (s *Server) sessionCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req sessionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var (
		sess *model.Session
		err  error
	)
	switch model.SessionKind(req.Kind) {
	case model.SessionKindPresencial:
		sess, err = s.sessionUC.CreatePresencial(r.Context(), req.ServiceID, req.CommunityID, req.LocalID, req.Capacity, req.StartsAt, req.EndsAt)
	case model.SessionKindVirtual:
		sess, err = s.sessionUC.CreateVirtual(r.Context(), req.ServiceID, req.CommunityID, req.ProfessionalID, req.MeetingURL, req.StartsAt, req.EndsAt)
	default:
		http.Error(w, "Invalid session kind", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(sess))
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := s.statsUC.Snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	subs := make(map[string]int, len(snap.SubscriptionsByState))
	for state, n := range snap.SubscriptionsByState {
		subs[state.String()] = n
	}
	reservations := make(map[string]int, len(snap.ReservationsByStatus))
	for status, n := range snap.ReservationsByStatus {
		reservations[string(status)] = n
	}

	writeJSON(w, http.StatusOK, struct {
		SubscriptionsByState map[string]int `json:"subscriptions_by_state"`
		ReservationsByStatus map[string]int `json:"reservations_by_status"`
		CreditsRemaining     int64          `json:"credits_remaining"`
	}{subs, reservations, snap.CreditsRemaining})
}
