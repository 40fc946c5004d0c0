package postgres

import (
	"context"
	"database/sql"
	"time"

	"gamenight-backend/internal/domain"
	"gamenight-backend/internal/repository"

	"github.com/lib/pq"
)

type memberRepository struct {
	db *sql.DB
}

func NewMemberRepository(db *sql.DB) repository.MemberRepository {
	return &memberRepository{db: db}
}

const memberColumns = `id, email, phone, given_name, family_name, display_name, contact_consent, role, created_on, updated_on`

func (r *memberRepository) GetByID(ctx context.Context, id int32) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	return scanMember(r.db.QueryRowContext(ctx, query, id))
}

func (r *memberRepository) FindByContacts(ctx context.Context, emails, phones []string) ([]domain.Member, error) {
	if len(emails) == 0 && len(phones) == 0 {
		return nil, nil
	}

	// One round trip for the whole issuance batch regardless of its size.
	query := `SELECT ` + memberColumns + ` FROM members WHERE email = ANY($1) OR phone = ANY($2)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(emails), pq.Array(phones))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*domain.Member, error) {
	m := &domain.Member{}
	var phone sql.NullString
	var createdOn, updatedOn time.Time
	err := row.Scan(&m.ID, &m.Email, &phone, &m.GivenName, &m.FamilyName, &m.DisplayName, &m.ContactConsent, &m.Role, &createdOn, &updatedOn)
	if err != nil {
		return nil, err
	}
	m.Phone = phone.String
	m.CreatedOn = createdOn.Format("2006-01-02")
	m.UpdatedOn = updatedOn.Format("2006-01-02")
	return m, nil
}
