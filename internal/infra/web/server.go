package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"community-booking/internal/config"
	red "community-booking/internal/infra/redis"
	"community-booking/internal/usecase"
)

type Server struct {
	subUC     *usecase.SubscriptionUseCase
	bookingUC *usecase.BookingUseCase
	planUC    *usecase.PlanUseCase
	sessionUC *usecase.SessionUseCase
	statsUC   *usecase.StatsUseCase
	ledger    *usecase.CreditLedger

	auth          *AuthManager
	limiter       *red.RateLimiter
	ratePerMinute int

	httpSrv *http.Server
	log     *zerolog.Logger
}

func NewServer(
	cfg *config.Config,
	subUC *usecase.SubscriptionUseCase,
	bookingUC *usecase.BookingUseCase,
	planUC *usecase.PlanUseCase,
	sessionUC *usecase.SessionUseCase,
	statsUC *usecase.StatsUseCase,
	ledger *usecase.CreditLedger,
	limiter *red.RateLimiter,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "web").Logger()
	s := &Server{
		subUC:         subUC,
		bookingUC:     bookingUC,
		planUC:        planUC,
		sessionUC:     sessionUC,
		statsUC:       statsUC,
		ledger:        ledger,
		auth:          NewAuthManager(cfg.HTTP.JWTSecret, 24*time.Hour),
		limiter:       limiter,
		ratePerMinute: cfg.Booking.RatePerMinute,
		log:           &l,
	}
	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      s.Router(cfg.HTTP.RequestTimeout),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HTTP.RequestTimeout + 5*time.Second,
	}
	return s
}

// Router builds the full route tree. Exposed separately so tests can exercise
// it without binding a port.
func (s *Server) Router(requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(traceMiddleware)
	r.Use(requestLogMiddleware(s.log))
	r.Use(recoverMiddleware(s.log))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Post("/enrollments", s.enrollHandler)
		r.Get("/subscriptions/active", s.activeSubscriptionHandler)
		r.Post("/subscriptions/{id}/payment", s.markPaidHandler)
		r.Get("/subscriptions/{id}/credits", s.creditsHandler)
		r.Post("/subscriptions/{id}/freeze", s.subscriptionTransitionHandler(func(r *http.Request, id, actor string) error {
			return s.subUC.Freeze(r.Context(), id, actor)
		}))
		r.Post("/subscriptions/{id}/reactivate", s.subscriptionTransitionHandler(func(r *http.Request, id, actor string) error {
			return s.subUC.Reactivate(r.Context(), id, actor)
		}))
		r.Post("/subscriptions/{id}/cancel", s.subscriptionTransitionHandler(func(r *http.Request, id, actor string) error {
			return s.subUC.Cancel(r.Context(), id, actor)
		}))

		r.Get("/sessions", s.listSessionsHandler)
		r.Get("/plans", s.planListHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimitMiddleware)
			r.Post("/sessions/{id}/reservations", s.reserveHandler)
		})
		r.Get("/reservations", s.listReservationsHandler)
		r.Delete("/reservations/{id}", s.cancelReservationHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.adminOnly)
			r.Post("/plans", s.planCreateHandler)
			r.Delete("/plans/{id}", s.planDeactivateHandler)
			r.Post("/sessions", s.sessionCreateHandler)
			r.Get("/stats", s.statsHandler)
		})
	})

	return r
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpSrv.Addr).Msg("http server listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
