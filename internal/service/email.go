package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendGridEmailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &sendGridEmailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridEmailService) SendGameInvitation(ctx context.Context, to, name, gameTitle, link string, signupRequired bool) error {
	subject := fmt.Sprintf("You're invited to join %s", gameTitle)

	var body string
	if signupRequired {
		body = fmt.Sprintf("Hello %s,\n\nYou have been invited to join the game %q.\n\nCreate an account to accept your invitation:\n\n%s\n\nSee you at the table!", name, gameTitle, link)
	} else {
		body = fmt.Sprintf("Hello %s,\n\nYou have been invited to join the game %q.\n\nAccept your invitation here:\n\n%s\n\nSee you at the table!", name, gameTitle, link)
	}

	return s.send(ctx, to, name, subject, body)
}

func (s *sendGridEmailService) SendInviteReminder(ctx context.Context, to, name, gameTitle, link string) error {
	subject := fmt.Sprintf("Reminder: your invitation to %s", gameTitle)
	body := fmt.Sprintf("Hello %s,\n\nYour invitation to join the game %q is still waiting:\n\n%s\n\nIt will expire soon.", name, gameTitle, link)
	return s.send(ctx, to, name, subject, body)
}

func (s *sendGridEmailService) send(ctx context.Context, to, toName, subject, plainText string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}
