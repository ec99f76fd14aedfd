package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/match-engine/models"
)

var ErrParticipantPlayerConflict = errors.New("player already participates in this match")

type ParticipantRepository interface {
	// Upsert занимает слот (player_match, side, position); повторная запись
	// того же слота заменяет его содержимое.
	Upsert(ctx context.Context, exec SQLExecutor, participant *models.PlayerMatchParticipant) error
	ListByPlayerMatch(ctx context.Context, exec SQLExecutor, playerMatchID int) ([]models.PlayerMatchParticipant, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) Upsert(ctx context.Context, exec SQLExecutor, participant *models.PlayerMatchParticipant) error {
	query := `
		INSERT INTO player_match_participants (player_match_id, player_id, guest_name, side, position)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (player_match_id, side, position)
		DO UPDATE SET player_id = EXCLUDED.player_id, guest_name = EXCLUDED.guest_name
		RETURNING id, created_at`

	err := executor(exec, r.db).QueryRowContext(ctx, query,
		participant.PlayerMatchID,
		participant.PlayerID,
		participant.GuestName,
		participant.Side,
		participant.Position,
	).Scan(&participant.ID, &participant.CreatedAt)
	if err != nil {
		// (player_match, player) уникальна: один игрок - один слот встречи.
		if isUniqueViolation(err, "player_match_participants_player_match_id_player_id_key") {
			return ErrParticipantPlayerConflict
		}
		return fmt.Errorf("failed to upsert participant for player match %d: %w", participant.PlayerMatchID, err)
	}
	return nil
}

func (r *postgresParticipantRepository) ListByPlayerMatch(ctx context.Context, exec SQLExecutor, playerMatchID int) ([]models.PlayerMatchParticipant, error) {
	query := `
		SELECT id, player_match_id, player_id, guest_name, side, position, created_at
		FROM player_match_participants
		WHERE player_match_id = $1
		ORDER BY side ASC, position ASC`

	rows, err := executor(exec, r.db).QueryContext(ctx, query, playerMatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants for player match %d: %w", playerMatchID, err)
	}
	defer rows.Close()

	participants := make([]models.PlayerMatchParticipant, 0)
	for rows.Next() {
		var p models.PlayerMatchParticipant
		if scanErr := rows.Scan(
			&p.ID,
			&p.PlayerMatchID,
			&p.PlayerID,
			&p.GuestName,
			&p.Side,
			&p.Position,
			&p.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", scanErr)
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during participant rows iteration: %w", err)
	}
	return participants, nil
}
