package jobs

import (
	"context"
	"fmt"
	"time"

	"gamenight-backend/internal/logger"
)

// PurgeExpiredInvitations deletes unaccepted invitations whose expiry is past
// the configured retention window. Accepted invitations are kept forever as
// audit artifacts.
func (jr *JobRunner) PurgeExpiredInvitations() {
	jr.runWithRecovery("PurgeExpiredInvitations", func() {
		ctx := context.Background()

		retention := time.Duration(jr.config.Invites.PurgeRetentionDays) * 24 * time.Hour
		cutoff := time.Now().Add(-retention)

		purged, err := jr.store.InvitationRepository.PurgeExpired(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to purge expired invitations", "error", err)
			return
		}
		logger.Info("Purged expired invitations", "count", purged, "cutoff", cutoff.Format("2006-01-02"))
	})
}

// SendInviteReminders emails members with unaccepted, unexpired invitations.
// The consent gate applies here the same way it does at issuance.
func (jr *JobRunner) SendInviteReminders() {
	jr.runWithRecovery("SendInviteReminders", func() {
		ctx := context.Background()

		invites, err := jr.store.InvitationRepository.ListPendingMemberInvites(ctx, time.Now())
		if err != nil {
			logger.Error("Failed to list pending invitations", "error", err)
			return
		}

		count := 0
		for i := range invites {
			inv := &invites[i]
			memberID, ok := inv.Invitee.MemberID()
			if !ok {
				continue
			}

			member, err := jr.store.MemberRepository.GetByID(ctx, memberID)
			if err != nil {
				logger.Error("Failed to load member for reminder", "member_id", memberID, "error", err)
				continue
			}
			if !member.ContactConsent || member.Email == "" {
				continue
			}

			game, err := jr.store.GameRepository.GetByID(ctx, inv.GameID)
			if err != nil {
				logger.Error("Failed to load game for reminder", "game_id", inv.GameID, "error", err)
				continue
			}

			link := fmt.Sprintf("%s/invites/%s/accept", jr.config.Invites.BaseURL, inv.ID)
			if err := jr.services.Email.SendInviteReminder(ctx, member.Email, inv.DisplayName, game.Title, link); err != nil {
				logger.Error("Failed to send invite reminder", "invitation_id", inv.ID, "error", err)
				continue
			}
			count++
		}
		logger.Info("Sent invite reminders", "count", count)
	})
}
