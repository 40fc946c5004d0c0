package service

import (
	"context"

	"gamenight-backend/internal/domain"
)

// InviteeInput is one entry in an issuance request, before normalization.
type InviteeInput struct {
	DisplayName   string `json:"display_name"`
	GivenName     string `json:"given_name,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	ExpiresInDays int32  `json:"expires_in_days,omitempty"`
}

// SkippedInvitee describes an invitee that produced no invitation row.
type SkippedInvitee struct {
	DisplayName string `json:"display_name"`
	MemberID    int32  `json:"member_id,omitempty"`
	Reason      string `json:"reason"`
}

// IssueResult reports what one issuance batch created and skipped.
type IssueResult struct {
	Created  []*domain.Invitation
	External []*domain.Invitation
	Skipped  []SkippedInvitee
}

// AcceptResult reports the outcome of an acceptance, including the idempotent
// replay cases, which are successes with a distinguishing message.
type AcceptResult struct {
	GameID  int32
	Message string
}

type InviteService interface {
	IssueInvitations(ctx context.Context, gameID, gamemasterID, actorID int32, invitees []InviteeInput) (*IssueResult, error)
	AcceptInvitation(ctx context.Context, inviteID string, memberID int32) (*AcceptResult, error)
	ListGameInvitations(ctx context.Context, gameID, actorID int32) ([]domain.Invitation, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, memberID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, memberID, notificationID int32) error
}

type EmailService interface {
	SendGameInvitation(ctx context.Context, to, name, gameTitle, link string, signupRequired bool) error
	SendInviteReminder(ctx context.Context, to, name, gameTitle, link string) error
}

type SMSService interface {
	SendGameInvitation(ctx context.Context, to, gameTitle, link string, signupRequired bool) error
}
