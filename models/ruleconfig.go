package models

import "encoding/json"

// Значения по умолчанию для правил подсчёта очков.
const (
	DefaultWinningSets       = 3
	DefaultSetWinningPoints  = 11
	DefaultTeamWinningPoints = 3
)

// RuleConfig - неизменяемый набор правил подсчёта очков события.
// Отсутствующие в JSON ключи получают значения по умолчанию, неизвестные
// ключи игнорируются.
type RuleConfig struct {
	// Сетов для победы в одиночной встрече (гоночный режим).
	WinningSets int `json:"winning_sets"`
	// Очков для победы в одном сете.
	SetWinningPoints int `json:"set_winning_points"`
	// Сет продолжается после цели, пока разрыв не станет >= 2.
	UseDeuce bool `json:"use_deuce"`
	// Побед в одиночных встречах для победы в командной (гоночный режим).
	TeamWinningPoints int `json:"team_winning_points"`
	// Играются все 2*winning_sets-1 сетов, ранний выход игнорируется.
	PlayAllSets bool `json:"play_all_sets"`
	// Играются все запланированные одиночные встречи.
	PlayAllMatches bool `json:"play_all_matches"`
	// Командный счёт считается по выигранным сетам, а не по победам во встречах.
	CountPointsBySets bool `json:"count_points_by_sets"`
}

// DefaultRuleConfig возвращает конфигурацию со всеми значениями по умолчанию.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		WinningSets:       DefaultWinningSets,
		SetWinningPoints:  DefaultSetWinningPoints,
		UseDeuce:          true,
		TeamWinningPoints: DefaultTeamWinningPoints,
	}
}

// UnmarshalJSON декодирует конфигурацию, подставляя значения по умолчанию
// для отсутствующих ключей.
func (c *RuleConfig) UnmarshalJSON(data []byte) error {
	aux := struct {
		WinningSets       *int  `json:"winning_sets"`
		SetWinningPoints  *int  `json:"set_winning_points"`
		UseDeuce          *bool `json:"use_deuce"`
		TeamWinningPoints *int  `json:"team_winning_points"`
		PlayAllSets       *bool `json:"play_all_sets"`
		PlayAllMatches    *bool `json:"play_all_matches"`
		CountPointsBySets *bool `json:"count_points_by_sets"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*c = DefaultRuleConfig()
	if aux.WinningSets != nil {
		c.WinningSets = *aux.WinningSets
	}
	if aux.SetWinningPoints != nil {
		c.SetWinningPoints = *aux.SetWinningPoints
	}
	if aux.UseDeuce != nil {
		c.UseDeuce = *aux.UseDeuce
	}
	if aux.TeamWinningPoints != nil {
		c.TeamWinningPoints = *aux.TeamWinningPoints
	}
	if aux.PlayAllSets != nil {
		c.PlayAllSets = *aux.PlayAllSets
	}
	if aux.PlayAllMatches != nil {
		c.PlayAllMatches = *aux.PlayAllMatches
	}
	if aux.CountPointsBySets != nil {
		c.CountPointsBySets = *aux.CountPointsBySets
	}
	return nil
}

// TotalSets - полная длина серии сетов (best-of) для режима play_all_sets.
func (c RuleConfig) TotalSets() int {
	return c.WinningSets*2 - 1
}
