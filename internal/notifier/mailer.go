package notifier

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/trekkingar/trekkingar-api/internal/config"
	"github.com/trekkingar/trekkingar-api/internal/models"
)

// Mailer delivers user-facing emails over SMTP.
type Mailer struct {
	addr string
	auth smtp.Auth
	from string
}

func NewMailer(cfg *config.Config) *Mailer {
	var auth smtp.Auth
	if cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return &Mailer{
		addr: cfg.SMTPHost + ":" + cfg.SMTPPort,
		auth: auth,
		from: cfg.SMTPFrom,
	}
}

func (m *Mailer) Send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")
	return smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg))
}

func (m *Mailer) NotifyReservation(user models.User, reservation models.Reservation, date models.TripDate) error {
	var subject, intro string
	switch reservation.Status {
	case models.ReservationPending:
		subject = "We received your reservation"
		intro = "Your reservation is registered and awaiting payment confirmation."
	case models.ReservationConfirmed:
		subject = "Your reservation is confirmed"
		intro = "Your payment was received and your seats are secured. See you on the trail!"
	case models.ReservationCancelled:
		subject = "Your reservation was cancelled"
		intro = "Your reservation has been cancelled and its seats released."
	case models.ReservationCompleted:
		subject = "Thanks for trekking with us"
		intro = "We hope you enjoyed the trip. We would love to hear your feedback."
	default:
		subject = "Reservation update"
		intro = "Your reservation status changed."
	}

	body := fmt.Sprintf("Hi %s,\n\n%s\n\nTrip: %s\nDates: %s - %s\nSeats: %d\nTotal: $%.2f\nReference: %s\n\nTrekkingAR",
		user.Name,
		intro,
		date.Trip.Name,
		date.StartDate.Format("2006-01-02"),
		date.EndDate.Format("2006-01-02"),
		reservation.Quantity,
		float64(reservation.TotalPriceCents)/100,
		reservation.Reference,
	)
	return m.Send(user.Email, subject, body)
}
