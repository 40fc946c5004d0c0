package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gamenight-backend/internal/domain"
)

const testBaseURL = "https://club.example"

type inviteFixture struct {
	games   *MockGameRepo
	members *MockMemberRepo
	invites *MockInvitationRepo
	regs    *MockRegistrationRepo
	notes   *MockNotificationRepo
	audit   *MockAuditRepo
	email   *MockEmailService
	sms     *MockSMSService
	svc     InviteService
}

func newInviteFixture() *inviteFixture {
	f := &inviteFixture{
		games:   new(MockGameRepo),
		members: new(MockMemberRepo),
		invites: new(MockInvitationRepo),
		regs:    new(MockRegistrationRepo),
		notes:   new(MockNotificationRepo),
		audit:   new(MockAuditRepo),
		email:   new(MockEmailService),
		sms:     new(MockSMSService),
	}
	f.svc = NewInviteService(f.games, f.members, f.invites, f.regs, f.notes, f.audit, f.email, f.sms, testBaseURL, 7, "1")
	return f
}

func testGame() *domain.Game {
	return &domain.Game{ID: 10, Title: "Friday One-Shot", GamemasterID: 42}
}

func TestIssueInvitations_EmptyBatch(t *testing.T) {
	f := newInviteFixture()
	_, err := f.svc.IssueInvitations(context.Background(), 10, 0, 42, nil)
	assert.ErrorIs(t, err, ErrNoInvitees)
}

func TestIssueInvitations_GameNotFound(t *testing.T) {
	f := newInviteFixture()
	f.games.On("GetByID", mock.Anything, int32(10)).Return(nil, sql.ErrNoRows)

	_, err := f.svc.IssueInvitations(context.Background(), 10, 0, 42, []InviteeInput{{DisplayName: "Ann", Email: "a@x.com"}})
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestIssueInvitations_Forbidden(t *testing.T) {
	f := newInviteFixture()
	f.games.On("GetByID", mock.Anything, int32(10)).Return(testGame(), nil)
	f.members.On("GetByID", mock.Anything, int32(7)).Return(&domain.Member{ID: 7, Role: domain.MemberRoleMember}, nil)

	_, err := f.svc.IssueInvitations(context.Background(), 10, 0, 7, []InviteeInput{{DisplayName: "Ann", Email: "a@x.com"}})
	assert.ErrorIs(t, err, ErrNotGamemaster)
	f.invites.AssertNotCalled(t, "CreateBatch")
}

func TestIssueInvitations_AdminActsForGamemaster(t *testing.T) {
	f := newInviteFixture()
	f.games.On("GetByID", mock.Anything, int32(10)).Return(testGame(), nil)
	f.members.On("GetByID", mock.Anything, int32(99)).Return(&domain.Member{ID: 99, Role: domain.MemberRoleAdmin}, nil)
	f.members.On("FindByContacts", mock.Anything, mock.Anything, mock.Anything).Return([]domain.Member(nil), nil)
	f.email.On("SendGameInvitation", mock.Anything, "a@x.com", "Ann", "Friday One-Shot", mock.Anything, true).Return(nil)
	f.invites.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
	f.audit.On("Record", mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.IssueInvitations(context.Background(), 10, 42, 99, []InviteeInput{{DisplayName: "Ann", Email: "a@x.com"}})
	require.NoError(t, err)
	assert.Len(t, result.External, 1)
}

func TestIssueInvitations_MissingContact(t *testing.T) {
	f := newInviteFixture()
	f.games.On("GetByID", mock.Anything, int32(10)).Return(testGame(), nil)

	_, err := f.svc.IssueInvitations(context.Background(), 10, 0, 42, []InviteeInput{{DisplayName: "Ann"}})
	assert.ErrorIs(t, err, ErrMissingContact)
	f.invites.AssertNotCalled(t, "CreateBatch")
}

func TestIssueInvitations_ExternalInvite(t *testing.T) {
	f := newInviteFixture()
	f.games.On("GetByID", mock.Anything, int32(10)).Return(testGame(), nil)
	f.members.On("FindByContacts", mock.Anything, []string{"a@x.com"}, []string{"+14155552671"}).
		Return([]domain.Member(nil), nil).Once()

	var dispatched string
	f.email.On("SendGameInvitation", mock.Anything, "a@x.com", "Ann", "Friday One-Shot", mock.Anything, true).
		Run(func(args mock.Arguments) { dispatched = args.String(4) }).Return(nil).Once()
	f.sms.On("SendGameInvitation", mock.Anything, "+14155552671", "Friday One-Shot", mock.Anything, true).Return(nil).Once()

	var persisted []*domain.Invitation
	f.invites.On("CreateBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { persisted = args.Get(1).([]*domain.Invitation) }).Return(nil).Once()
	f.audit.On("Record", mock.Anything, mock.Anything).Return(nil)

	before := time.Now()
	result, err := f.svc.IssueInvitations(context.Background(), 10, 0, 42, []InviteeInput{
		{DisplayName: "Ann", Email: "A@X.com", Phone: "(415) 555-2671", ExpiresInDays: 7},
	})
	require.NoError(t, err)

	require.Len(t, result.External, 1)
	assert.Empty(t, result.Created)
	assert.Empty(t, result.Skipped)

	require.Len(t, persisted, 1)
	inv := persisted[0]
	assert.NotEmpty(t, inv.ID)
	assert.Equal(t, domain.InviteeKindExternal, inv.Invitee.Kind())
	assert.Equal(t, "a@x.com", inv.Invitee.Email())
	assert.Equal(t, "+14155552671", inv.Invitee.Phone())
	assert.True(t, inv.Notified)
	assert.WithinDuration(t, before.AddDate(0, 0, 7), inv.ExpiresOn, 2*time.Second)

	// External invitees must be routed through signup first.
	assert.Contains(t, dispatched, "/signup?invite="+inv.ID)

	f.email.AssertExpectations(t)
	f.sms.AssertExpectations(t)
	f.members.AssertNumberOfCalls(t, "FindByContacts", 1)
}

func TestIssueInvitations_MemberInviteWithConsent(t *testing.T) {
	f := newInviteFixture()
	member := domain.Member{ID: 5, Email: "alice@club.org", Phone: "+14155550001", DisplayName: "Alice", ContactConsent: true}

	f.games.On("GetByID", mock.Anything, int32(10)).Return(testGame(), nil)
	f.members.On("FindByContacts", mock.Anything, []string{"alice@club.org"}, []string(nil)).
		Return([]domain.Member{member}, nil).Once()
	f.regs.On("FilterRegistered", mock.Anything, int32(10), []int32{5}).Return([]int32(nil), nil).Once()

	var dispatched string
	// Channels come from the account's stored contacts, not the request.
	f.email.On("SendGameInvitation", mock.Anything, "alice@club.org", "Alice", "Friday One-Shot", mock.Anything, false).
		Run(func(args mock.Arguments) { dispatched = args.String(4) }).Return(nil).Once()
	f.sms.On("SendGameInvitation", mock.Anything, "+14155550001", "Friday One-Shot", mock.Anything, false).Return(nil).Once()

	var persisted []*domain.Invitation
	f.invites.On("CreateBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { persisted = args.Get(1).([]*domain.Invitation) }).Return(nil).Once()
	f.audit.On("Record", mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.IssueInvitations(context.Background(), 10, 0, 42, []InviteeInput{
		{DisplayName: "Alice", Email: "alice@club.org"},
	})
	require.NoError(t, err)

	require.Len(t, result.Created, 1)
	require.Len(t, persisted, 1)
	memberID, ok := persisted[0].Invitee.MemberID()
	require.True(t, ok)
	assert.Equal(t, int32(5), memberID)
	assert.True(t, persisted[0].Notified)
	assert.Contains(t, dispatched, "/invites/"+persisted[0].ID+"/accept")
	f.notes.AssertNotCalled(t, "Create")
}

func TestIssueInvitations_ConsentGate(t *testing.T) {
	f := newInviteFixture()
	member := domain.Member{ID: 5, Email: "alice@club.org", DisplayName: "Alice", ContactConsent: false}

	f.games.On("GetByID", mock.Anything, int32(10)).Return(testGame(), nil)
	f.members.On("FindByContacts", mock.Anything, mock.Anything, mock.Anything).Return([]domain.Member{member}, nil)
	f.regs.On("FilterRegistered", mock.Anything, int32(10), []int32{5}).Return([]int32(nil), nil)
	f.notes.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.MemberID == 5 && n.GameID == 10
	})).Return(nil).Once()

	var persisted []*domain.Invitation
	f.invites.On("CreateBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { persisted = args.Get(1).([]*domain.Invitation) }).Return(nil).Once()
	f.audit.On("Record", mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.IssueInvitations(context.Background(), 10, 0, 42, []InviteeInput{
		{DisplayName: "Alice", Email: "alice@club.org"},
	})
	require.NoError(t, err)

	// An invite row exists, but nothing email/SMS-reachable was attempted.
	require.Len(t, result.Created, 1)
	require.Len(t, persisted, 1)
	assert.False(t, persisted[0].Notified)
	f.email.AssertNotCalled(t, "SendGameInvitation")
	f.sms.AssertNotCalled(t, "SendGameInvitation")
	f.notes.AssertExpectations(t)
}

func TestIssueInvitations_SkipsAlreadyRegistered(t *testing.T) {
	f := newInviteFixture()
	member := domain.Member{ID: 5, Email: "alice@club.org", DisplayName: "Alice", ContactConsent: true}

	f.games.On("GetByID", mock.Anything, int32(10)).Return(testGame(), nil)
	f.members.On("FindByContacts", mock.Anything, mock.Anything, mock.Anything).Return([]domain.Member{member}, nil)
	f.regs.On("FilterRegistered", mock.Anything, int32(10), []int32{5}).Return([]int32{5}, nil).Once()
	f.invites.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
	f.audit.On("Record", mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.IssueInvitations(context.Background(), 10, 0, 42, []InviteeInput{
		{DisplayName: "Alice", Email: "alice@club.org"},
	})
	require.NoError(t, err)

	assert.Empty(t, result.Created)
	assert.Empty(t, result.External)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, int32(5), result.Skipped[0].MemberID)
	assert.Equal(t, "already registered", result.Skipped[0].Reason)

	// No invitation row and no dispatch for a skipped invitee.
	f.email.AssertNotCalled(t, "SendGameInvitation")
	f.sms.AssertNotCalled(t, "SendGameInvitation")
	f.regs.AssertNumberOfCalls(t, "FilterRegistered", 1)
}

func TestIssueInvitations_DispatchFailureDoesNotFailBatch(t *testing.T) {
	f := newInviteFixture()
	f.games.On("GetByID", mock.Anything, int32(10)).Return(testGame(), nil)
	f.members.On("FindByContacts", mock.Anything, mock.Anything, mock.Anything).Return([]domain.Member(nil), nil)
	f.email.On("SendGameInvitation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError)
	f.invites.On("CreateBatch", mock.Anything, mock.Anything).Return(nil).Once()
	f.audit.On("Record", mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.IssueInvitations(context.Background(), 10, 0, 42, []InviteeInput{
		{DisplayName: "Ann", Email: "a@x.com"},
	})
	require.NoError(t, err)
	require.Len(t, result.External, 1)
	// A failed attempt still counts as an attempt.
	assert.True(t, result.External[0].Notified)
	f.invites.AssertExpectations(t)
}

func pendingExternalInvite(id string) *domain.Invitation {
	invitee, _ := domain.ExternalInvitee("a@x.com", "")
	return &domain.Invitation{
		ID:           id,
		GameID:       10,
		GamemasterID: 42,
		Invitee:      invitee,
		DisplayName:  "Ann",
		ExpiresOn:    time.Now().Add(72 * time.Hour),
		CreatedOn:    time.Now().Add(-time.Hour),
	}
}

func TestAcceptInvitation_NotFound(t *testing.T) {
	f := newInviteFixture()
	f.invites.On("GetByID", mock.Anything, "missing").Return(nil, sql.ErrNoRows)

	_, err := f.svc.AcceptInvitation(context.Background(), "missing", 5)
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

func TestAcceptInvitation_Expired(t *testing.T) {
	f := newInviteFixture()
	inv := pendingExternalInvite("inv-1")
	inv.ExpiresOn = time.Now().Add(-time.Hour)
	f.invites.On("GetByID", mock.Anything, "inv-1").Return(inv, nil)

	// Expiry rejection is stable across repeated attempts.
	for i := 0; i < 3; i++ {
		_, err := f.svc.AcceptInvitation(context.Background(), "inv-1", 5)
		assert.ErrorIs(t, err, ErrInviteExpired)
	}
	f.invites.AssertNotCalled(t, "Claim")
	f.invites.AssertNotCalled(t, "MarkAccepted")
	f.regs.AssertNotCalled(t, "CreateIfAbsent")
}

func TestAcceptInvitation_ExternalClaimCreatesRegistration(t *testing.T) {
	f := newInviteFixture()
	inv := pendingExternalInvite("inv-1")
	f.invites.On("GetByID", mock.Anything, "inv-1").Return(inv, nil).Once()
	f.invites.On("Claim", mock.Anything, "inv-1", int32(5)).Return(true, nil).Once()
	f.invites.On("MarkAccepted", mock.Anything, "inv-1", mock.Anything).Return(nil).Once()
	f.regs.On("CreateIfAbsent", mock.Anything, mock.MatchedBy(func(r *domain.Registration) bool {
		return r.GameID == 10 && r.MemberID == 5 && r.Status == domain.RegistrationStatusApproved && r.Note != ""
	})).Return(true, nil).Once()
	f.audit.On("Record", mock.Anything, mock.MatchedBy(func(e *domain.AuditEvent) bool {
		return e.Action == "invitation.accepted" && e.ActorID == 5
	})).Return(nil).Once()

	result, err := f.svc.AcceptInvitation(context.Background(), "inv-1", 5)
	require.NoError(t, err)
	assert.Equal(t, int32(10), result.GameID)
	assert.Equal(t, "registration created", result.Message)
	f.invites.AssertExpectations(t)
	f.regs.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

func TestAcceptInvitation_AlreadyAcceptedShortCircuits(t *testing.T) {
	f := newInviteFixture()
	acceptedAt := time.Now().Add(-time.Hour)
	inv := &domain.Invitation{
		ID:         "inv-1",
		GameID:     10,
		Invitee:    domain.MemberInvitee(5),
		ExpiresOn:  time.Now().Add(72 * time.Hour),
		Accepted:   true,
		AcceptedAt: &acceptedAt,
	}
	f.invites.On("GetByID", mock.Anything, "inv-1").Return(inv, nil)
	f.regs.On("CreateIfAbsent", mock.Anything, mock.MatchedBy(func(r *domain.Registration) bool {
		return r.GameID == 10 && r.MemberID == 5
	})).Return(false, nil)

	// A double-submit returns success both times without re-accepting.
	for i := 0; i < 2; i++ {
		result, err := f.svc.AcceptInvitation(context.Background(), "inv-1", 5)
		require.NoError(t, err)
		assert.Equal(t, int32(10), result.GameID)
		assert.Equal(t, "invitation already accepted", result.Message)
	}
	f.invites.AssertNotCalled(t, "MarkAccepted")
}

func TestAcceptInvitation_RetryAfterFailedRegistrationInsert(t *testing.T) {
	// A crash between accepting the invitation and inserting the registration
	// must not strand the invitation: the retry replays the insert.
	f := newInviteFixture()
	inv := &domain.Invitation{
		ID:        "inv-1",
		GameID:    10,
		Invitee:   domain.MemberInvitee(5),
		ExpiresOn: time.Now().Add(72 * time.Hour),
	}
	accepted := &domain.Invitation{
		ID:        "inv-1",
		GameID:    10,
		Invitee:   domain.MemberInvitee(5),
		ExpiresOn: inv.ExpiresOn,
		Accepted:  true,
	}

	f.invites.On("GetByID", mock.Anything, "inv-1").Return(inv, nil).Once()
	f.invites.On("MarkAccepted", mock.Anything, "inv-1", mock.Anything).Return(nil).Once()
	f.regs.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(false, assert.AnError).Once()

	_, err := f.svc.AcceptInvitation(context.Background(), "inv-1", 5)
	require.Error(t, err)

	f.invites.On("GetByID", mock.Anything, "inv-1").Return(accepted, nil).Once()
	f.regs.On("CreateIfAbsent", mock.Anything, mock.MatchedBy(func(r *domain.Registration) bool {
		return r.GameID == 10 && r.MemberID == 5 && r.Status == domain.RegistrationStatusApproved
	})).Return(true, nil).Once()

	result, err := f.svc.AcceptInvitation(context.Background(), "inv-1", 5)
	require.NoError(t, err)
	assert.Equal(t, "invitation already accepted", result.Message)
	f.regs.AssertNumberOfCalls(t, "CreateIfAbsent", 2)
	f.invites.AssertNumberOfCalls(t, "MarkAccepted", 1)
}

func TestAcceptInvitation_ClaimRaceLostToOtherAccount(t *testing.T) {
	f := newInviteFixture()
	inv := pendingExternalInvite("inv-1")
	claimedByOther := &domain.Invitation{
		ID:        "inv-1",
		GameID:    10,
		Invitee:   domain.MemberInvitee(6),
		ExpiresOn: inv.ExpiresOn,
	}
	f.invites.On("GetByID", mock.Anything, "inv-1").Return(inv, nil).Once()
	f.invites.On("Claim", mock.Anything, "inv-1", int32(5)).Return(false, nil).Once()
	f.invites.On("GetByID", mock.Anything, "inv-1").Return(claimedByOther, nil).Once()

	_, err := f.svc.AcceptInvitation(context.Background(), "inv-1", 5)
	assert.ErrorIs(t, err, ErrInviteClaimed)
	f.regs.AssertNotCalled(t, "CreateIfAbsent")
}

func TestAcceptInvitation_ClaimRetryByOwnerCompletes(t *testing.T) {
	// A retried request after a partial failure: the claim update matches no
	// rows because this account already holds the link.
	f := newInviteFixture()
	inv := pendingExternalInvite("inv-1")
	claimedBySelf := &domain.Invitation{
		ID:        "inv-1",
		GameID:    10,
		Invitee:   domain.MemberInvitee(5),
		ExpiresOn: inv.ExpiresOn,
	}
	f.invites.On("GetByID", mock.Anything, "inv-1").Return(inv, nil).Once()
	f.invites.On("Claim", mock.Anything, "inv-1", int32(5)).Return(false, nil).Once()
	f.invites.On("GetByID", mock.Anything, "inv-1").Return(claimedBySelf, nil).Once()
	f.invites.On("MarkAccepted", mock.Anything, "inv-1", mock.Anything).Return(nil).Once()
	f.regs.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(true, nil).Once()
	f.audit.On("Record", mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.AcceptInvitation(context.Background(), "inv-1", 5)
	require.NoError(t, err)
	assert.Equal(t, "registration created", result.Message)
}

func TestAcceptInvitation_WrongMemberForInternalInvite(t *testing.T) {
	f := newInviteFixture()
	inv := &domain.Invitation{
		ID:        "inv-1",
		GameID:    10,
		Invitee:   domain.MemberInvitee(6),
		ExpiresOn: time.Now().Add(72 * time.Hour),
	}
	f.invites.On("GetByID", mock.Anything, "inv-1").Return(inv, nil)

	_, err := f.svc.AcceptInvitation(context.Background(), "inv-1", 5)
	assert.ErrorIs(t, err, ErrInviteClaimed)
	f.invites.AssertNotCalled(t, "Claim")
}

func TestAcceptInvitation_AlreadyRegisteredByAnotherPath(t *testing.T) {
	f := newInviteFixture()
	inv := &domain.Invitation{
		ID:        "inv-1",
		GameID:    10,
		Invitee:   domain.MemberInvitee(5),
		ExpiresOn: time.Now().Add(72 * time.Hour),
	}
	f.invites.On("GetByID", mock.Anything, "inv-1").Return(inv, nil)
	f.invites.On("MarkAccepted", mock.Anything, "inv-1", mock.Anything).Return(nil).Once()
	f.regs.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(false, nil).Once()
	f.audit.On("Record", mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.AcceptInvitation(context.Background(), "inv-1", 5)
	require.NoError(t, err)
	assert.Equal(t, "already registered for this game", result.Message)
}

func TestListGameInvitations_Forbidden(t *testing.T) {
	f := newInviteFixture()
	f.games.On("GetByID", mock.Anything, int32(10)).Return(testGame(), nil)
	f.members.On("GetByID", mock.Anything, int32(7)).Return(&domain.Member{ID: 7, Role: domain.MemberRoleMember}, nil)

	_, err := f.svc.ListGameInvitations(context.Background(), 10, 7)
	assert.ErrorIs(t, err, ErrNotGamemaster)
	f.invites.AssertNotCalled(t, "ListByGame")
}
