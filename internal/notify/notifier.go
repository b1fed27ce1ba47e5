// Package notify tells drivers about their reservation by e-mail and SMS.
package notify

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"log"
	"time"

	"greenpark/internal/db"
	"greenpark/internal/entities"
)

// Notifier is handed every committed reservation change.
type Notifier interface {
	Notify(ctx context.Context, res db.Reservation, category string) error
}

type Nop struct{}

func (Nop) Notify(context.Context, db.Reservation, string) error { return nil }

type Mailer interface {
	SendEmail(toEmail, toName, subject, plainText, html string) error
}

type Texter interface {
	SendSMS(toNumber, body string) error
}

//go:embed templates/reservation_email.html
var emailTemplateSource string

var emailTemplate = template.Must(template.New("reservation_email").Parse(emailTemplateSource))

// ReservationNotifier renders localized (en, es, it) messages and sends them
// through whichever channels are configured. Nil channels are skipped.
type ReservationNotifier struct {
	mailer Mailer
	texter Texter
	loc    *time.Location
}

func NewReservationNotifier(mailer Mailer, texter Texter, loc *time.Location) *ReservationNotifier {
	return &ReservationNotifier{mailer: mailer, texter: texter, loc: loc}
}

func (n *ReservationNotifier) Notify(ctx context.Context, res db.Reservation, category string) error {
	status := statusTranslation(string(res.Status), res.Language)
	var firstErr error

	if n.mailer != nil && res.DriverEmail != "" {
		data := n.emailData(res, category, status)
		subject, plain := emailText(data)
		var html bytes.Buffer
		if err := emailTemplate.Execute(&html, data); err != nil {
			log.Printf("notify: could not render e-mail for reservation %s: %v", res.Code, err)
		}
		if err := n.mailer.SendEmail(res.DriverEmail, res.DriverName, subject, plain, html.String()); err != nil {
			log.Printf("notify: e-mail for reservation %s failed: %v", res.Code, err)
			firstErr = err
		}
	}

	if n.texter != nil && res.DriverPhone != "" {
		body := smsText(res, status, n.loc)
		if err := n.texter.SendSMS(res.DriverPhone, body); err != nil {
			log.Printf("notify: SMS for reservation %s to %s failed: %v", res.Code, res.DriverPhone, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (n *ReservationNotifier) emailData(res db.Reservation, category, status string) entities.ReservationEmailData {
	return entities.ReservationEmailData{
		UserName:           res.DriverName,
		ReservationCode:    res.Code,
		Category:           category,
		VehicleModel:       res.VehicleModel,
		VehiclePlate:       res.VehiclePlate,
		StartTimeFormatted: res.CheckIn.In(n.loc).Format("02 Jan 2006 15:04 MST"),
		EndTimeFormatted:   res.CheckOut.In(n.loc).Format("02 Jan 2006 15:04 MST"),
		TotalFormatted:     formatCents(res.TotalPrice),
		CurrentYear:        time.Now().In(n.loc).Year(),
		Language:           res.Language,
		Status:             status,
	}
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s€%d.%02d", sign, cents/100, cents%100)
}
