package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/match-engine/models"
)

var (
	ErrEventTeamNotFound  = errors.New("event team not found")
	ErrMembershipNotFound = errors.New("event team membership not found")
)

type EventTeamRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.EventTeam, error)
	// FindMemberTeam возвращает команду события, в составе которой числится
	// пользователь. Игрок может состоять максимум в одной команде события.
	FindMemberTeam(ctx context.Context, exec SQLExecutor, userID, eventID int) (*models.EventTeam, error)
}

type postgresEventTeamRepository struct {
	db *sql.DB
}

func NewPostgresEventTeamRepository(db *sql.DB) EventTeamRepository {
	return &postgresEventTeamRepository{db: db}
}

func (r *postgresEventTeamRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.EventTeam, error) {
	query := `
		SELECT id, event_id, team_id, name, created_at
		FROM event_teams
		WHERE id = $1`

	team := &models.EventTeam{}
	err := executor(exec, r.db).QueryRowContext(ctx, query, id).Scan(
		&team.ID,
		&team.EventID,
		&team.TeamID,
		&team.Name,
		&team.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan event team by id %d: %w", id, err)
	}
	return team, nil
}

func (r *postgresEventTeamRepository) FindMemberTeam(ctx context.Context, exec SQLExecutor, userID, eventID int) (*models.EventTeam, error) {
	query := `
		SELECT et.id, et.event_id, et.team_id, et.name, et.created_at
		FROM event_teams et
		JOIN event_team_members m ON m.event_team_id = et.id
		WHERE m.user_id = $1 AND et.event_id = $2`

	team := &models.EventTeam{}
	err := executor(exec, r.db).QueryRowContext(ctx, query, userID, eventID).Scan(
		&team.ID,
		&team.EventID,
		&team.TeamID,
		&team.Name,
		&team.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to find member team for user %d in event %d: %w", userID, eventID, err)
	}
	return team, nil
}
