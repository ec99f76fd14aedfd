package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/match-engine/models"
)

var (
	ErrTeamMatchNotFound       = errors.New("team match not found")
	ErrTeamMatchNumberConflict = errors.New("team match number already exists for this event")
)

type TeamMatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.TeamMatch) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.TeamMatch, error)
	ExistsByEventAndNumber(ctx context.Context, exec SQLExecutor, eventID, number int) (bool, error)
	ListByEvent(ctx context.Context, exec SQLExecutor, eventID int) ([]*models.TeamMatch, error)
	UpdateStatusWinner(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus, winner models.Winner) error
}

type postgresTeamMatchRepository struct {
	db *sql.DB
}

func NewPostgresTeamMatchRepository(db *sql.DB) TeamMatchRepository {
	return &postgresTeamMatchRepository{db: db}
}

func (r *postgresTeamMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.TeamMatch) error {
	query := `
		INSERT INTO team_matches (event_id, team_a_id, team_b_id, number, status, winner, match_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := executor(exec, r.db).QueryRowContext(ctx, query,
		match.EventID,
		match.TeamAID,
		match.TeamBID,
		match.Number,
		match.Status,
		match.Winner,
		match.MatchDate,
	).Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		// Уникальный индекс - последний рубеж против гонки на номере матча,
		// когда путь с блокировкой обойдён.
		if isUniqueViolation(err, "team_matches_event_id_number_key") {
			return ErrTeamMatchNumberConflict
		}
		return fmt.Errorf("failed to create team match: %w", err)
	}
	return nil
}

func (r *postgresTeamMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.TeamMatch, error) {
	query := `
		SELECT id, event_id, team_a_id, team_b_id, number, status, winner, match_date, created_at
		FROM team_matches
		WHERE id = $1`

	match := &models.TeamMatch{}
	err := executor(exec, r.db).QueryRowContext(ctx, query, id).Scan(
		&match.ID,
		&match.EventID,
		&match.TeamAID,
		&match.TeamBID,
		&match.Number,
		&match.Status,
		&match.Winner,
		&match.MatchDate,
		&match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan team match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresTeamMatchRepository) ExistsByEventAndNumber(ctx context.Context, exec SQLExecutor, eventID, number int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM team_matches WHERE event_id = $1 AND number = $2)`

	var exists bool
	err := executor(exec, r.db).QueryRowContext(ctx, query, eventID, number).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check team match existence for event %d number %d: %w", eventID, number, err)
	}
	return exists, nil
}

func (r *postgresTeamMatchRepository) ListByEvent(ctx context.Context, exec SQLExecutor, eventID int) ([]*models.TeamMatch, error) {
	query := `
		SELECT id, event_id, team_a_id, team_b_id, number, status, winner, match_date, created_at
		FROM team_matches
		WHERE event_id = $1
		ORDER BY number ASC`

	rows, err := executor(exec, r.db).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query team matches for event %d: %w", eventID, err)
	}
	defer rows.Close()

	matches := make([]*models.TeamMatch, 0)
	for rows.Next() {
		var match models.TeamMatch
		if scanErr := rows.Scan(
			&match.ID,
			&match.EventID,
			&match.TeamAID,
			&match.TeamBID,
			&match.Number,
			&match.Status,
			&match.Winner,
			&match.MatchDate,
			&match.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan team match row: %w", scanErr)
		}
		matches = append(matches, &match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during team match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresTeamMatchRepository) UpdateStatusWinner(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus, winner models.Winner) error {
	query := `UPDATE team_matches SET status = $1, winner = $2 WHERE id = $3`

	result, err := executor(exec, r.db).ExecContext(ctx, query, status, winner, id)
	if err != nil {
		return fmt.Errorf("failed to update team match %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrTeamMatchNotFound)
}
