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
	ErrTemplateNotFound           = errors.New("match template not found")
	ErrTemplateItemNumberConflict = errors.New("template item number already exists in this template")
)

type TemplateRepository interface {
	Create(ctx context.Context, exec SQLExecutor, template *models.MatchTemplate) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.MatchTemplate, error)
	UpdateName(ctx context.Context, exec SQLExecutor, id int, name string) error
	// ReplaceItems удаляет все элементы шаблона и вставляет новые одним запросом.
	ReplaceItems(ctx context.Context, exec SQLExecutor, templateID int, items []models.TemplateItem) error
}

type postgresTemplateRepository struct {
	db *sql.DB
}

func NewPostgresTemplateRepository(db *sql.DB) TemplateRepository {
	return &postgresTemplateRepository{db: db}
}

func (r *postgresTemplateRepository) Create(ctx context.Context, exec SQLExecutor, template *models.MatchTemplate) error {
	query := `
		INSERT INTO match_templates (name, creator_id)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := executor(exec, r.db).QueryRowContext(ctx, query,
		template.Name,
		template.CreatorID,
	).Scan(&template.ID, &template.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create match template: %w", err)
	}

	if len(template.Items) == 0 {
		return nil
	}
	return r.insertItems(ctx, exec, template.ID, template.Items)
}

func (r *postgresTemplateRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.MatchTemplate, error) {
	query := `
		SELECT id, name, creator_id, created_at
		FROM match_templates
		WHERE id = $1`

	e := executor(exec, r.db)

	template := &models.MatchTemplate{}
	err := e.QueryRowContext(ctx, query, id).Scan(
		&template.ID,
		&template.Name,
		&template.CreatorID,
		&template.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to scan match template by id %d: %w", id, err)
	}

	itemsQuery := `
		SELECT id, template_id, number, format, requirement
		FROM match_template_items
		WHERE template_id = $1
		ORDER BY number ASC`

	rows, err := e.QueryContext(ctx, itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query items for template %d: %w", id, err)
	}
	defer rows.Close()

	items := make([]models.TemplateItem, 0)
	for rows.Next() {
		var item models.TemplateItem
		if scanErr := rows.Scan(
			&item.ID,
			&item.TemplateID,
			&item.Number,
			&item.Format,
			&item.Requirement,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan template item row: %w", scanErr)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during template item rows iteration: %w", err)
	}

	template.Items = items
	return template, nil
}

func (r *postgresTemplateRepository) UpdateName(ctx context.Context, exec SQLExecutor, id int, name string) error {
	query := `UPDATE match_templates SET name = $1 WHERE id = $2`

	result, err := executor(exec, r.db).ExecContext(ctx, query, name, id)
	if err != nil {
		return fmt.Errorf("failed to update template %d name: %w", id, err)
	}
	return checkAffectedRows(result, ErrTemplateNotFound)
}

func (r *postgresTemplateRepository) ReplaceItems(ctx context.Context, exec SQLExecutor, templateID int, items []models.TemplateItem) error {
	e := executor(exec, r.db)

	if _, err := e.ExecContext(ctx, `DELETE FROM match_template_items WHERE template_id = $1`, templateID); err != nil {
		return fmt.Errorf("failed to delete items of template %d: %w", templateID, err)
	}
	if len(items) == 0 {
		return nil
	}
	return r.insertItems(ctx, exec, templateID, items)
}

func (r *postgresTemplateRepository) insertItems(ctx context.Context, exec SQLExecutor, templateID int, items []models.TemplateItem) error {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`INSERT INTO match_template_items (template_id, number, format, requirement) VALUES `)

	args := make([]interface{}, 0, len(items)*4)
	for i, item := range items {
		if i > 0 {
			queryBuilder.WriteString(", ")
		}
		base := i * 4
		queryBuilder.WriteString("($" + strconv.Itoa(base+1) + ", $" + strconv.Itoa(base+2) +
			", $" + strconv.Itoa(base+3) + ", $" + strconv.Itoa(base+4) + ")")
		args = append(args, templateID, item.Number, item.Format, item.Requirement)
	}

	_, err := executor(exec, r.db).ExecContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		if isUniqueViolation(err, "match_template_items_template_id_number_key") {
			return ErrTemplateItemNumberConflict
		}
		return fmt.Errorf("failed to bulk insert items for template %d: %w", templateID, err)
	}
	return nil
}
