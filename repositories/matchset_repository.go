package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/match-engine/models"
)

type MatchSetRepository interface {
	// Upsert записывает счёт сета; повторная запись того же set_number
	// перезаписывает предыдущую (last-write-wins).
	Upsert(ctx context.Context, exec SQLExecutor, set *models.MatchSet) error
	ListByPlayerMatch(ctx context.Context, exec SQLExecutor, playerMatchID int) ([]models.MatchSet, error)
}

type postgresMatchSetRepository struct {
	db *sql.DB
}

func NewPostgresMatchSetRepository(db *sql.DB) MatchSetRepository {
	return &postgresMatchSetRepository{db: db}
}

func (r *postgresMatchSetRepository) Upsert(ctx context.Context, exec SQLExecutor, set *models.MatchSet) error {
	query := `
		INSERT INTO match_sets (player_match_id, set_number, score_a, score_b)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (player_match_id, set_number)
		DO UPDATE SET score_a = EXCLUDED.score_a, score_b = EXCLUDED.score_b
		RETURNING id, created_at`

	err := executor(exec, r.db).QueryRowContext(ctx, query,
		set.PlayerMatchID,
		set.SetNumber,
		set.ScoreA,
		set.ScoreB,
	).Scan(&set.ID, &set.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert set %d of player match %d: %w", set.SetNumber, set.PlayerMatchID, err)
	}
	return nil
}

func (r *postgresMatchSetRepository) ListByPlayerMatch(ctx context.Context, exec SQLExecutor, playerMatchID int) ([]models.MatchSet, error) {
	query := `
		SELECT id, player_match_id, set_number, score_a, score_b, created_at
		FROM match_sets
		WHERE player_match_id = $1
		ORDER BY set_number ASC`

	rows, err := executor(exec, r.db).QueryContext(ctx, query, playerMatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sets for player match %d: %w", playerMatchID, err)
	}
	defer rows.Close()

	sets := make([]models.MatchSet, 0)
	for rows.Next() {
		var set models.MatchSet
		if scanErr := rows.Scan(
			&set.ID,
			&set.PlayerMatchID,
			&set.SetNumber,
			&set.ScoreA,
			&set.ScoreB,
			&set.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match set row: %w", scanErr)
		}
		sets = append(sets, set)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match set rows iteration: %w", err)
	}
	return sets, nil
}
