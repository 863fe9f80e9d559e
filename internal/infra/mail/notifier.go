package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"community-booking/internal/config"
	"community-booking/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*Notifier)(nil)

// Notifier sends reservation mails over SMTP. Send failures are logged and
// swallowed: notification is best-effort and the reservation is already
// committed by the time we get here.
type Notifier struct {
	dialer *gomail.Dialer
	from   string
	log    *zerolog.Logger
}

func NewNotifier(cfg *config.MailConfig, log *zerolog.Logger) *Notifier {
	l := log.With().Str("component", "mail").Logger()
	return &Notifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		log:    &l,
	}
}

func (n *Notifier) NotifyReservationConfirmed(ctx context.Context, email string, notice adapter.ReservationNotice) error {
	subject := "Reserva confirmada"
	body := fmt.Sprintf(
		"Tu reserva está confirmada.\n\nInicio: %s\nFin: %s\n",
		notice.StartsAt.Format(time.RFC1123), notice.EndsAt.Format(time.RFC1123))
	if notice.MeetingURL != "" {
		body += fmt.Sprintf("Enlace: %s\n", notice.MeetingURL)
	}
	n.send(email, subject, body, notice.ReservationID)
	return nil
}

func (n *Notifier) NotifyReservationCancelled(ctx context.Context, email string, notice adapter.ReservationNotice) error {
	subject := "Reserva cancelada"
	body := fmt.Sprintf(
		"Tu reserva del %s fue cancelada.\n",
		notice.StartsAt.Format(time.RFC1123))
	n.send(email, subject, body, notice.ReservationID)
	return nil
}

func (n *Notifier) send(to, subject, body, reservationID string) {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		n.log.Warn().Err(err).
			Str("reservation_id", reservationID).
			Msg("failed to send reservation mail")
		return
	}
	n.log.Debug().Str("reservation_id", reservationID).Msg("reservation mail sent")
}
