package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Dosada05/match-engine/models"
	"github.com/Dosada05/match-engine/repositories"
)

// TemplateItemInput - входной элемент шаблона. Пустой формат трактуется как single.
type TemplateItemInput struct {
	Number      int                `json:"number"`
	Format      models.MatchFormat `json:"format,omitempty"`
	Requirement string             `json:"requirement,omitempty"`
}

type TemplateService interface {
	CreateMatchTemplate(ctx context.Context, name string, creatorID *int, items []TemplateItemInput) (*models.MatchTemplate, error)
	UpdateMatchTemplate(ctx context.Context, templateID int, name *string, items []TemplateItemInput) (*models.MatchTemplate, error)
	GetMatchTemplate(ctx context.Context, templateID int) (*models.MatchTemplate, error)
	// SetEventMatchConfig привязывает шаблон и правила к событию (upsert).
	SetEventMatchConfig(ctx context.Context, eventID, templateID int, ruleConfig models.RuleConfig) (*models.EventMatchConfig, error)
	// ValidateMatchFormat сверяет предложенный состав встреч с шаблоном события
	// поэлементно: количество, номер, формат, требование.
	ValidateMatchFormat(ctx context.Context, eventID int, items []TemplateItemInput) error
}

type templateService struct {
	tx           repositories.Transactor
	templateRepo repositories.TemplateRepository
	configRepo   repositories.MatchConfigRepository
}

func NewTemplateService(
	tx repositories.Transactor,
	templateRepo repositories.TemplateRepository,
	configRepo repositories.MatchConfigRepository,
) TemplateService {
	return &templateService{
		tx:           tx,
		templateRepo: templateRepo,
		configRepo:   configRepo,
	}
}

func (s *templateService) CreateMatchTemplate(ctx context.Context, name string, creatorID *int, items []TemplateItemInput) (*models.MatchTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTemplateNameRequired
	}

	templateItems, err := buildTemplateItems(items)
	if err != nil {
		return nil, err
	}

	template := &models.MatchTemplate{
		Name:      name,
		CreatorID: creatorID,
		Items:     templateItems,
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.templateRepo.Create(ctx, exec, template)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrTemplateItemNumberConflict) {
			return nil, ErrDuplicateItemNumber
		}
		return nil, fmt.Errorf("failed to create match template: %w", err)
	}
	return template, nil
}

func (s *templateService) UpdateMatchTemplate(ctx context.Context, templateID int, name *string, items []TemplateItemInput) (*models.MatchTemplate, error) {
	var templateItems []models.TemplateItem
	if items != nil {
		var err error
		templateItems, err = buildTemplateItems(items)
		if err != nil {
			return nil, err
		}
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if name != nil {
			trimmed := strings.TrimSpace(*name)
			if trimmed == "" {
				return ErrTemplateNameRequired
			}
			if err := s.templateRepo.UpdateName(ctx, exec, templateID, trimmed); err != nil {
				return err
			}
		}
		if items != nil {
			// Элементы заменяются целиком, как и в ручном редактировании шаблона.
			if err := s.templateRepo.ReplaceItems(ctx, exec, templateID, templateItems); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrTemplateNotFound):
			return nil, ErrTemplateNotFound
		case errors.Is(err, repositories.ErrTemplateItemNumberConflict):
			return nil, ErrDuplicateItemNumber
		case errors.Is(err, ErrTemplateNameRequired):
			return nil, err
		}
		return nil, fmt.Errorf("failed to update match template %d: %w", templateID, err)
	}

	return s.GetMatchTemplate(ctx, templateID)
}

func (s *templateService) GetMatchTemplate(ctx context.Context, templateID int) (*models.MatchTemplate, error) {
	template, err := s.templateRepo.GetByID(ctx, nil, templateID)
	if err != nil {
		if errors.Is(err, repositories.ErrTemplateNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get match template %d: %w", templateID, err)
	}
	return template, nil
}

func (s *templateService) SetEventMatchConfig(ctx context.Context, eventID, templateID int, ruleConfig models.RuleConfig) (*models.EventMatchConfig, error) {
	if err := validateRuleConfig(ruleConfig); err != nil {
		return nil, err
	}

	// Шаблон должен существовать до привязки.
	if _, err := s.GetMatchTemplate(ctx, templateID); err != nil {
		return nil, err
	}

	config := &models.EventMatchConfig{
		EventID:    eventID,
		TemplateID: templateID,
		RuleConfig: ruleConfig,
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.configRepo.Upsert(ctx, exec, config)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set match config for event %d: %w", eventID, err)
	}
	return config, nil
}

func (s *templateService) ValidateMatchFormat(ctx context.Context, eventID int, items []TemplateItemInput) error {
	config, err := s.configRepo.GetByEvent(ctx, nil, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchConfigNotFound) {
			return ErrNoMatchConfiguration
		}
		return fmt.Errorf("failed to load match config for event %d: %w", eventID, err)
	}

	template, err := s.GetMatchTemplate(ctx, config.TemplateID)
	if err != nil {
		return err
	}

	if len(items) != len(template.Items) {
		return fmt.Errorf("%w: expected %d matches, got %d", ErrTemplateShapeMismatch, len(template.Items), len(items))
	}

	sorted := make([]TemplateItemInput, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	for i, templateItem := range template.Items {
		input := sorted[i]
		if input.Number != templateItem.Number {
			return fmt.Errorf("%w: match number mismatch at position %d", ErrTemplateShapeMismatch, i+1)
		}
		if normalizeFormat(input.Format) != templateItem.Format {
			return fmt.Errorf("%w: format mismatch for match %d, expected %s", ErrTemplateShapeMismatch, templateItem.Number, templateItem.Format)
		}
		if input.Requirement != templateItem.Requirement {
			return fmt.Errorf("%w: requirement mismatch for match %d, expected %q", ErrTemplateShapeMismatch, templateItem.Number, templateItem.Requirement)
		}
	}
	return nil
}

func buildTemplateItems(items []TemplateItemInput) ([]models.TemplateItem, error) {
	seen := make(map[int]bool, len(items))
	result := make([]models.TemplateItem, 0, len(items))
	for _, item := range items {
		if seen[item.Number] {
			return nil, fmt.Errorf("%w: number %d", ErrDuplicateItemNumber, item.Number)
		}
		seen[item.Number] = true
		result = append(result, models.TemplateItem{
			Number:      item.Number,
			Format:      normalizeFormat(item.Format),
			Requirement: item.Requirement,
		})
	}
	return result, nil
}

func normalizeFormat(format models.MatchFormat) models.MatchFormat {
	if format == "" {
		return models.FormatSingle
	}
	return format
}

// validateRuleConfig отсекает бессмысленные значения на этапе настройки.
// На этапе записи счёта конфигурация принимается как есть.
func validateRuleConfig(cfg models.RuleConfig) error {
	if cfg.WinningSets < 1 || cfg.SetWinningPoints < 1 || cfg.TeamWinningPoints < 1 {
		return ErrInvalidRuleConfig
	}
	return nil
}
