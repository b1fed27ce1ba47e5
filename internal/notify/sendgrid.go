package notify

import (
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type SendGridMailer struct {
	client   *sendgrid.Client
	fromName string
	from     string
}

// NewSendGridMailer returns nil when the API key or sender address is missing.
func NewSendGridMailer(apiKey, fromEmail, fromName string) *SendGridMailer {
	if apiKey == "" || fromEmail == "" {
		log.Println("notify: SENDGRID_API_KEY or SENDGRID_FROM_EMAIL not set, e-mails disabled")
		return nil
	}
	if fromName == "" {
		fromName = "GreenPark"
	}
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey), fromName: fromName, from: fromEmail}
}

func (m *SendGridMailer) SendEmail(toEmail, toName, subject, plainText, html string) error {
	from := mail.NewEmail(m.fromName, m.from)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, html)

	response, err := m.client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s: %w", toEmail, err)
	}
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		log.Printf("notify: e-mail sent to %s (%q), status %d", toEmail, subject, response.StatusCode)
		return nil
	}
	return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
}
