package repository

import (
	"context"
	"time"

	"gamenight-backend/internal/domain"
)

type MemberRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Member, error)
	// FindByContacts fetches every member whose email or phone appears in the
	// given normalized lists, in a single batched query.
	FindByContacts(ctx context.Context, emails, phones []string) ([]domain.Member, error)
}

type GameRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Game, error)
}

type InvitationRepository interface {
	// CreateBatch persists a whole issuance batch: one multi-row insert for
	// member-linked invitations and one for external ones, in one transaction.
	CreateBatch(ctx context.Context, invites []*domain.Invitation) error
	GetByID(ctx context.Context, id string) (*domain.Invitation, error)
	ListByGame(ctx context.Context, gameID int32) ([]domain.Invitation, error)
	// Claim links an external invitation to a member account. The update is
	// conditional on the row not being linked yet; returns false when another
	// account holds the link.
	Claim(ctx context.Context, id string, memberID int32) (bool, error)
	MarkAccepted(ctx context.Context, id string, at time.Time) error
	// ListPendingMemberInvites returns unaccepted, unexpired invitations that
	// are linked to a member account, for reminder delivery.
	ListPendingMemberInvites(ctx context.Context, now time.Time) ([]domain.Invitation, error)
	// PurgeExpired deletes unaccepted invitations whose expiry is older than
	// the cutoff and returns how many rows were removed.
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type RegistrationRepository interface {
	// FilterRegistered returns the subset of memberIDs that already hold a
	// registration row for the game, regardless of status, in one query.
	FilterRegistered(ctx context.Context, gameID int32, memberIDs []int32) ([]int32, error)
	// CreateIfAbsent inserts the registration unless the (game, member) pair
	// already exists; returns whether a row was created.
	CreateIfAbsent(ctx context.Context, reg *domain.Registration) (bool, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, memberID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, memberID int32) error
}

type AuditRepository interface {
	Record(ctx context.Context, event *domain.AuditEvent) error
}
