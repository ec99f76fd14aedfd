package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrTeamMatchNotFound   = errors.New("team match not found")
	ErrPlayerMatchNotFound = errors.New("player match not found")
	ErrEventTeamNotFound   = errors.New("event team not found")
	ErrTemplateNotFound    = errors.New("match template not found")

	// Ошибки валидации и бизнес-правил (исправляет вызывающий, не ретраим)
	ErrSameTeam                  = errors.New("team A and team B must be different")
	ErrTeamsNotInSameEvent       = errors.New("both teams must belong to the same event")
	ErrDuplicateMatchNumber      = errors.New("match number is already assigned for this event")
	ErrTemplateNameRequired      = errors.New("template name is required")
	ErrDuplicateItemNumber       = errors.New("template item numbers must be unique")
	ErrTemplateShapeMismatch     = errors.New("match format does not match the event template")
	ErrInvalidSetNumber          = errors.New("set number must be positive")
	ErrInvalidSetScore           = errors.New("set scores must be non-negative")
	ErrInvalidPosition           = errors.New("participant position must be 1 or 2")
	ErrPlayerNotInEvent          = errors.New("player is not registered in this event")
	ErrPlayerNotInCompetingTeams = errors.New("player does not belong to either competing team")
	ErrGuestNameRequired         = errors.New("either player or guest name must be provided")
	ErrGuestSideRequired         = errors.New("side must be provided for guest players")
	ErrPlayerSlotConflict        = errors.New("player already participates in this match")
	ErrInvalidRuleConfig         = errors.New("rule config values are out of range")

	// Ошибки конфигурации: на этапе инициализации отсутствие настройки фатально
	ErrNoMatchConfiguration = errors.New("no match configuration found for this event")

	// Ошибки конкуренции
	ErrSystemBusy = errors.New("system is busy processing this match number, please try again")
)
