package postgres

import (
	"database/sql"

	"gamenight-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.MemberRepository
	repository.GameRepository
	repository.InvitationRepository
	repository.RegistrationRepository
	repository.NotificationRepository
	repository.AuditRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		MemberRepository:       NewMemberRepository(db),
		GameRepository:         NewGameRepository(db),
		InvitationRepository:   NewInvitationRepository(db),
		RegistrationRepository: NewRegistrationRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		AuditRepository:        NewAuditRepository(db),
	}
}
