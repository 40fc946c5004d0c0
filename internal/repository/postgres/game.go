package postgres

import (
	"context"
	"database/sql"
	"time"

	"gamenight-backend/internal/domain"
	"gamenight-backend/internal/repository"
)

type gameRepository struct {
	db *sql.DB
}

func NewGameRepository(db *sql.DB) repository.GameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) GetByID(ctx context.Context, id int32) (*domain.Game, error) {
	g := &domain.Game{}
	var scheduledOn sql.NullTime
	var createdOn time.Time
	query := `SELECT id, title, description, gamemaster_id, scheduled_on, max_players, created_on FROM games WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&g.ID, &g.Title, &g.Description, &g.GamemasterID, &scheduledOn, &g.MaxPlayers, &createdOn)
	if err != nil {
		return nil, err
	}
	if scheduledOn.Valid {
		g.ScheduledOn = scheduledOn.Time.Format("2006-01-02")
	}
	g.CreatedOn = createdOn.Format("2006-01-02")
	return g, nil
}
