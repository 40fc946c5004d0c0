package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gamenight-backend/internal/domain"
	"gamenight-backend/internal/logger"
	"gamenight-backend/internal/repository"
)

type invitationRepository struct {
	db *sql.DB
}

func NewInvitationRepository(db *sql.DB) repository.InvitationRepository {
	return &invitationRepository{db: db}
}

const invitationColumns = `id, game_id, gamemaster_id, member_id, external_email, external_phone, display_name, expires_on, notified, accepted, accepted_at, created_on`

func (r *invitationRepository) CreateBatch(ctx context.Context, invites []*domain.Invitation) error {
	if len(invites) == 0 {
		return nil
	}

	var member, external []*domain.Invitation
	for _, inv := range invites {
		if _, ok := inv.Invitee.MemberID(); ok {
			member = append(member, inv)
		} else {
			external = append(external, inv)
		}
	}

	// Both bulk inserts share one transaction so the issuance batch commits
	// or fails as a whole.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertMemberInvites(ctx, tx, member); err != nil {
		return err
	}
	if err := insertExternalInvites(ctx, tx, external); err != nil {
		return err
	}

	logger.DatabaseCall("INSERT", "invitations", "member_rows", len(member), "external_rows", len(external))
	return tx.Commit()
}

func insertMemberInvites(ctx context.Context, tx *sql.Tx, invites []*domain.Invitation) error {
	if len(invites) == 0 {
		return nil
	}
	var (
		values []string
		args   []any
	)
	for i, inv := range invites {
		memberID, _ := inv.Invitee.MemberID()
		base := i * 8
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args, inv.ID, inv.GameID, inv.GamemasterID, memberID, inv.DisplayName, inv.ExpiresOn, inv.Notified, inv.CreatedOn)
	}
	query := `INSERT INTO invitations (id, game_id, gamemaster_id, member_id, display_name, expires_on, notified, created_on) VALUES ` +
		strings.Join(values, ", ")
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

func insertExternalInvites(ctx context.Context, tx *sql.Tx, invites []*domain.Invitation) error {
	if len(invites) == 0 {
		return nil
	}
	var (
		values []string
		args   []any
	)
	for i, inv := range invites {
		base := i * 9
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9))
		args = append(args, inv.ID, inv.GameID, inv.GamemasterID,
			nullIfEmpty(inv.Invitee.Email()), nullIfEmpty(inv.Invitee.Phone()),
			inv.DisplayName, inv.ExpiresOn, inv.Notified, inv.CreatedOn)
	}
	query := `INSERT INTO invitations (id, game_id, gamemaster_id, external_email, external_phone, display_name, expires_on, notified, created_on) VALUES ` +
		strings.Join(values, ", ")
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`
	return scanInvitation(r.db.QueryRowContext(ctx, query, id))
}

func (r *invitationRepository) ListByGame(ctx context.Context, gameID int32) ([]domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE game_id = $1 ORDER BY created_on DESC`
	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvitations(rows)
}

func (r *invitationRepository) Claim(ctx context.Context, id string, memberID int32) (bool, error) {
	// Conditional on the row not being linked yet: a second claim from a
	// different account finds zero rows and cannot overwrite the link.
	query := `UPDATE invitations SET member_id = $1, external_email = NULL, external_phone = NULL
	          WHERE id = $2 AND member_id IS NULL`
	result, err := r.db.ExecContext(ctx, query, memberID, id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	logger.DatabaseResult("UPDATE", rows, nil, "invitation_id", id, "member_id", memberID)
	return rows == 1, nil
}

func (r *invitationRepository) MarkAccepted(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE invitations SET accepted = TRUE, accepted_at = $1 WHERE id = $2 AND accepted = FALSE`
	_, err := r.db.ExecContext(ctx, query, at, id)
	return err
}

func (r *invitationRepository) ListPendingMemberInvites(ctx context.Context, now time.Time) ([]domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations
	          WHERE member_id IS NOT NULL AND accepted = FALSE AND expires_on > $1`
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvitations(rows)
}

func (r *invitationRepository) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM invitations WHERE accepted = FALSE AND expires_on < $1`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func collectInvitations(rows *sql.Rows) ([]domain.Invitation, error) {
	var invites []domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, *inv)
	}
	return invites, rows.Err()
}

func scanInvitation(row rowScanner) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	var (
		memberID     sql.NullInt32
		email, phone sql.NullString
		acceptedAt   sql.NullTime
	)
	err := row.Scan(&inv.ID, &inv.GameID, &inv.GamemasterID, &memberID, &email, &phone,
		&inv.DisplayName, &inv.ExpiresOn, &inv.Notified, &inv.Accepted, &acceptedAt, &inv.CreatedOn)
	if err != nil {
		return nil, err
	}
	if memberID.Valid {
		inv.Invitee = domain.MemberInvitee(memberID.Int32)
	} else {
		invitee, err := domain.ExternalInvitee(email.String, phone.String)
		if err != nil {
			return nil, fmt.Errorf("invitation %s: %w", inv.ID, err)
		}
		inv.Invitee = invitee
	}
	if acceptedAt.Valid {
		inv.AcceptedAt = &acceptedAt.Time
	}
	return inv, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
