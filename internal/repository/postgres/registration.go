package postgres

import (
	"context"
	"database/sql"

	"gamenight-backend/internal/domain"
	"gamenight-backend/internal/logger"
	"gamenight-backend/internal/repository"

	"github.com/lib/pq"
)

type registrationRepository struct {
	db *sql.DB
}

func NewRegistrationRepository(db *sql.DB) repository.RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) FilterRegistered(ctx context.Context, gameID int32, memberIDs []int32) ([]int32, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}

	// Any status counts: a pending, rejected, or banned member must not be
	// re-invited either.
	query := `SELECT member_id FROM registrations WHERE game_id = $1 AND member_id = ANY($2)`
	rows, err := r.db.QueryContext(ctx, query, gameID, pq.Array(memberIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var registered []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		registered = append(registered, id)
	}
	return registered, rows.Err()
}

func (r *registrationRepository) CreateIfAbsent(ctx context.Context, reg *domain.Registration) (bool, error) {
	// The (game_id, member_id) primary key makes a repeated insert a no-op
	// instead of a duplicate.
	query := `INSERT INTO registrations (game_id, member_id, status, note, updated_by, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (game_id, member_id) DO NOTHING`
	result, err := r.db.ExecContext(ctx, query, reg.GameID, reg.MemberID, reg.Status, reg.Note, reg.UpdatedBy, reg.CreatedOn, reg.UpdatedOn)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	logger.DatabaseResult("INSERT", rows, nil, "game_id", reg.GameID, "member_id", reg.MemberID)
	return rows == 1, nil
}
