package notify

import (
	"fmt"
	"log"
	"strings"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type TwilioTexter struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioTexter returns nil when any credential is missing.
func NewTwilioTexter(accountSID, authToken, fromNumber string) *TwilioTexter {
	if accountSID == "" || authToken == "" || fromNumber == "" {
		log.Println("notify: Twilio credentials not set, SMS disabled")
		return nil
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   accountSID,
		Password:   authToken,
		AccountSid: accountSID,
	})
	return &TwilioTexter{client: client, from: fromNumber}
}

func (t *TwilioTexter) SendSMS(toNumber, body string) error {
	if !strings.HasPrefix(toNumber, "+") {
		log.Printf("notify: %q is not E.164, SMS may fail", toNumber)
	}
	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(t.from)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send to %s: %w", toNumber, err)
	}
	if resp != nil && resp.Sid != nil {
		log.Printf("notify: SMS sent to %s, sid %s", toNumber, *resp.Sid)
	}
	return nil
}
