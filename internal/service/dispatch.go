package service

import (
	"context"
	"fmt"

	"gamenight-backend/internal/domain"
	"gamenight-backend/internal/logger"
)

// inviteDispatcher sends the email and/or SMS for one invitee. Delivery is
// best-effort: failures are logged and swallowed, never propagated into the
// issuance result.
type inviteDispatcher struct {
	email   EmailService
	sms     SMSService
	baseURL string
}

func newInviteDispatcher(email EmailService, sms SMSService, baseURL string) *inviteDispatcher {
	return &inviteDispatcher{email: email, sms: sms, baseURL: baseURL}
}

// Dispatch fires every available channel for the invitee and reports whether
// a notification attempt was made at all. External invitees get a link that
// requires signing up first; member invitees get a direct accept link.
func (d *inviteDispatcher) Dispatch(ctx context.Context, inv *domain.Invitation, game *domain.Game, email, phone string, signupRequired bool) bool {
	link := d.acceptLink(inv.ID)
	if signupRequired {
		link = d.signupLink(inv.ID)
	}

	attempted := false
	if email != "" {
		attempted = true
		logger.ExternalServiceCall("email", "SendGameInvitation", "invitation_id", inv.ID)
		err := d.email.SendGameInvitation(ctx, email, inv.DisplayName, game.Title, link, signupRequired)
		logger.ExternalServiceResult("email", "SendGameInvitation", err, "invitation_id", inv.ID)
	}
	if phone != "" {
		attempted = true
		logger.ExternalServiceCall("sms", "SendGameInvitation", "invitation_id", inv.ID)
		err := d.sms.SendGameInvitation(ctx, phone, game.Title, link, signupRequired)
		logger.ExternalServiceResult("sms", "SendGameInvitation", err, "invitation_id", inv.ID)
	}
	return attempted
}

func (d *inviteDispatcher) acceptLink(inviteID string) string {
	return fmt.Sprintf("%s/invites/%s/accept", d.baseURL, inviteID)
}

func (d *inviteDispatcher) signupLink(inviteID string) string {
	return fmt.Sprintf("%s/signup?invite=%s", d.baseURL, inviteID)
}
