package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/match-engine/models"
)

var ErrMatchConfigNotFound = errors.New("event match configuration not found")

type MatchConfigRepository interface {
	// Upsert создаёт либо перезаписывает конфигурацию матчей события.
	Upsert(ctx context.Context, exec SQLExecutor, config *models.EventMatchConfig) error
	GetByEvent(ctx context.Context, exec SQLExecutor, eventID int) (*models.EventMatchConfig, error)
}

type postgresMatchConfigRepository struct {
	db *sql.DB
}

func NewPostgresMatchConfigRepository(db *sql.DB) MatchConfigRepository {
	return &postgresMatchConfigRepository{db: db}
}

func (r *postgresMatchConfigRepository) Upsert(ctx context.Context, exec SQLExecutor, config *models.EventMatchConfig) error {
	ruleJSON, err := json.Marshal(config.RuleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal rule config: %w", err)
	}

	query := `
		INSERT INTO event_match_configs (event_id, template_id, rule_config)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id)
		DO UPDATE SET template_id = EXCLUDED.template_id, rule_config = EXCLUDED.rule_config
		RETURNING id, created_at`

	err = executor(exec, r.db).QueryRowContext(ctx, query,
		config.EventID,
		config.TemplateID,
		ruleJSON,
	).Scan(&config.ID, &config.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert match config for event %d: %w", config.EventID, err)
	}
	return nil
}

func (r *postgresMatchConfigRepository) GetByEvent(ctx context.Context, exec SQLExecutor, eventID int) (*models.EventMatchConfig, error) {
	query := `
		SELECT id, event_id, template_id, rule_config, created_at
		FROM event_match_configs
		WHERE event_id = $1`

	config := &models.EventMatchConfig{}
	var ruleJSON []byte
	err := executor(exec, r.db).QueryRowContext(ctx, query, eventID).Scan(
		&config.ID,
		&config.EventID,
		&config.TemplateID,
		&ruleJSON,
		&config.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchConfigNotFound
		}
		return nil, fmt.Errorf("failed to scan match config for event %d: %w", eventID, err)
	}

	// RuleConfig.UnmarshalJSON подставит значения по умолчанию для отсутствующих ключей.
	if err := json.Unmarshal(ruleJSON, &config.RuleConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rule config for event %d: %w", eventID, err)
	}
	return config, nil
}
