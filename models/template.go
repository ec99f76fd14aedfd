package models

import "time"

// MatchFormat - формат одиночной встречи внутри командной.
type MatchFormat string

const (
	FormatSingle MatchFormat = "single"
	FormatDouble MatchFormat = "double"
)

// MatchTemplate - именованный шаблон командной встречи: упорядоченный набор
// слотов одиночных встреч. Шаблон копируется в момент создания матча,
// последующие правки шаблона уже созданные матчи не затрагивают.
type MatchTemplate struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatorID *int      `json:"creator_id,omitempty" db:"creator_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Items []TemplateItem `json:"items,omitempty" db:"-"`
}

// TemplateItem - один слот шаблона. Number уникален внутри шаблона.
type TemplateItem struct {
	ID          int         `json:"id" db:"id"`
	TemplateID  int         `json:"template_id" db:"template_id"`
	Number      int         `json:"number" db:"number"`
	Format      MatchFormat `json:"format" db:"format"`
	Requirement string      `json:"requirement" db:"requirement"`
}

// EventMatchConfig привязывает к событию шаблон и правила подсчёта очков.
type EventMatchConfig struct {
	ID         int        `json:"id" db:"id"`
	EventID    int        `json:"event_id" db:"event_id"`
	TemplateID int        `json:"template_id" db:"template_id"`
	RuleConfig RuleConfig `json:"rule_config" db:"rule_config"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
