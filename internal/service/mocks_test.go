package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"gamenight-backend/internal/domain"
)

// MockMemberRepo
type MockMemberRepo struct {
	mock.Mock
}

func (m *MockMemberRepo) GetByID(ctx context.Context, id int32) (*domain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepo) FindByContacts(ctx context.Context, emails, phones []string) ([]domain.Member, error) {
	args := m.Called(ctx, emails, phones)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Member), args.Error(1)
}

// MockGameRepo
type MockGameRepo struct {
	mock.Mock
}

func (m *MockGameRepo) GetByID(ctx context.Context, id int32) (*domain.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Game), args.Error(1)
}

// MockInvitationRepo
type MockInvitationRepo struct {
	mock.Mock
}

func (m *MockInvitationRepo) CreateBatch(ctx context.Context, invites []*domain.Invitation) error {
	args := m.Called(ctx, invites)
	return args.Error(0)
}

func (m *MockInvitationRepo) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invitation), args.Error(1)
}

func (m *MockInvitationRepo) ListByGame(ctx context.Context, gameID int32) ([]domain.Invitation, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invitation), args.Error(1)
}

func (m *MockInvitationRepo) Claim(ctx context.Context, id string, memberID int32) (bool, error) {
	args := m.Called(ctx, id, memberID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvitationRepo) MarkAccepted(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockInvitationRepo) ListPendingMemberInvites(ctx context.Context, now time.Time) ([]domain.Invitation, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invitation), args.Error(1)
}

func (m *MockInvitationRepo) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockRegistrationRepo
type MockRegistrationRepo struct {
	mock.Mock
}

func (m *MockRegistrationRepo) FilterRegistered(ctx context.Context, gameID int32, memberIDs []int32) ([]int32, error) {
	args := m.Called(ctx, gameID, memberIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int32), args.Error(1)
}

func (m *MockRegistrationRepo) CreateIfAbsent(ctx context.Context, reg *domain.Registration) (bool, error) {
	args := m.Called(ctx, reg)
	return args.Bool(0), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNotificationRepo) List(ctx context.Context, memberID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, memberID, limit, offset)
	if args.Get(0) == nil {
		return nil, int32(args.Int(1)), args.Error(2)
	}
	return args.Get(0).([]domain.Notification), int32(args.Int(1)), args.Error(2)
}

func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, memberID int32) error {
	args := m.Called(ctx, id, memberID)
	return args.Error(0)
}

// MockAuditRepo
type MockAuditRepo struct {
	mock.Mock
}

func (m *MockAuditRepo) Record(ctx context.Context, event *domain.AuditEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendGameInvitation(ctx context.Context, to, name, gameTitle, link string, signupRequired bool) error {
	args := m.Called(ctx, to, name, gameTitle, link, signupRequired)
	return args.Error(0)
}

func (m *MockEmailService) SendInviteReminder(ctx context.Context, to, name, gameTitle, link string) error {
	args := m.Called(ctx, to, name, gameTitle, link)
	return args.Error(0)
}

// MockSMSService
type MockSMSService struct {
	mock.Mock
}

func (m *MockSMSService) SendGameInvitation(ctx context.Context, to, gameTitle, link string, signupRequired bool) error {
	args := m.Called(ctx, to, gameTitle, link, signupRequired)
	return args.Error(0)
}
