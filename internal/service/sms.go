package service

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"gamenight-backend/internal/logger"
)

type twilioSMSService struct {
	client *twilio.RestClient
	from   string
}

func NewSMSService(accountSID, authToken, fromNumber string) SMSService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &twilioSMSService{client: client, from: fromNumber}
}

func (s *twilioSMSService) SendGameInvitation(ctx context.Context, to, gameTitle, link string, signupRequired bool) error {
	var body string
	if signupRequired {
		body = fmt.Sprintf("You're invited to join %q. Sign up to accept: %s", gameTitle, link)
	} else {
		body = fmt.Sprintf("You're invited to join %q. Accept here: %s", gameTitle, link)
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	msg, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	if msg.Sid != nil {
		logger.Debug("SMS queued", "sid", *msg.Sid, "to", to)
	}
	return nil
}
