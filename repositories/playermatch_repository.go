package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/match-engine/models"
)

var (
	ErrPlayerMatchNotFound       = errors.New("player match not found")
	ErrPlayerMatchNumberConflict = errors.New("player match number already exists in this team match")
)

type PlayerMatchRepository interface {
	// CreateBulk вставляет все встречи одним запросом и проставляет им ID.
	CreateBulk(ctx context.Context, exec SQLExecutor, matches []*models.PlayerMatch) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.PlayerMatch, error)
	ListByTeamMatch(ctx context.Context, exec SQLExecutor, teamMatchID int) ([]*models.PlayerMatch, error)
	UpdateStatusWinner(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus, winner models.Winner) error
}

type postgresPlayerMatchRepository struct {
	db *sql.DB
}

func NewPostgresPlayerMatchRepository(db *sql.DB) PlayerMatchRepository {
	return &postgresPlayerMatchRepository{db: db}
}

func (r *postgresPlayerMatchRepository) CreateBulk(ctx context.Context, exec SQLExecutor, matches []*models.PlayerMatch) error {
	if len(matches) == 0 {
		return nil
	}

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`INSERT INTO player_matches (team_match_id, number, format, requirement, status, winner) VALUES `)

	args := make([]interface{}, 0, len(matches)*6)
	for i, match := range matches {
		if i > 0 {
			queryBuilder.WriteString(", ")
		}
		base := i * 6
		queryBuilder.WriteString("($" + strconv.Itoa(base+1) + ", $" + strconv.Itoa(base+2) +
			", $" + strconv.Itoa(base+3) + ", $" + strconv.Itoa(base+4) +
			", $" + strconv.Itoa(base+5) + ", $" + strconv.Itoa(base+6) + ")")
		args = append(args, match.TeamMatchID, match.Number, match.Format, match.Requirement, match.Status, match.Winner)
	}
	queryBuilder.WriteString(" RETURNING id, created_at")

	rows, err := executor(exec, r.db).QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		if isUniqueViolation(err, "player_matches_team_match_id_number_key") {
			return ErrPlayerMatchNumberConflict
		}
		return fmt.Errorf("failed to bulk create player matches: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if i >= len(matches) {
			break
		}
		if scanErr := rows.Scan(&matches[i].ID, &matches[i].CreatedAt); scanErr != nil {
			return fmt.Errorf("failed to scan created player match id: %w", scanErr)
		}
		i++
	}
	return rows.Err()
}

func (r *postgresPlayerMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.PlayerMatch, error) {
	query := `
		SELECT id, team_match_id, number, format, requirement, status, winner, created_at
		FROM player_matches
		WHERE id = $1`

	match := &models.PlayerMatch{}
	err := executor(exec, r.db).QueryRowContext(ctx, query, id).Scan(
		&match.ID,
		&match.TeamMatchID,
		&match.Number,
		&match.Format,
		&match.Requirement,
		&match.Status,
		&match.Winner,
		&match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan player match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresPlayerMatchRepository) ListByTeamMatch(ctx context.Context, exec SQLExecutor, teamMatchID int) ([]*models.PlayerMatch, error) {
	query := `
		SELECT id, team_match_id, number, format, requirement, status, winner, created_at
		FROM player_matches
		WHERE team_match_id = $1
		ORDER BY number ASC`

	rows, err := executor(exec, r.db).QueryContext(ctx, query, teamMatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query player matches for team match %d: %w", teamMatchID, err)
	}
	defer rows.Close()

	matches := make([]*models.PlayerMatch, 0)
	for rows.Next() {
		var match models.PlayerMatch
		if scanErr := rows.Scan(
			&match.ID,
			&match.TeamMatchID,
			&match.Number,
			&match.Format,
			&match.Requirement,
			&match.Status,
			&match.Winner,
			&match.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan player match row: %w", scanErr)
		}
		matches = append(matches, &match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresPlayerMatchRepository) UpdateStatusWinner(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus, winner models.Winner) error {
	query := `UPDATE player_matches SET status = $1, winner = $2 WHERE id = $3`

	result, err := executor(exec, r.db).ExecContext(ctx, query, status, winner, id)
	if err != nil {
		return fmt.Errorf("failed to update player match %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerMatchNotFound)
}
