package rules

import (
	"errors"
	"fmt"

	"github.com/Dosada05/match-engine/models"
)

var ErrNoStrategy = errors.New("no scoring strategy registered for match kind")

// MatchKind различает уровни иерархии матчей при выборе стратегии.
type MatchKind string

const (
	KindPlayerMatch MatchKind = "player_match"
	KindTeamMatch   MatchKind = "team_match"
)

// Snapshot - загруженное из хранилища состояние матча, по которому считается
// результат. Для одиночной встречи заполняются Sets, для командной - Children
// (по одному снимку на каждую запланированную одиночную встречу).
type Snapshot struct {
	Kind     MatchKind
	Sets     []models.MatchSet
	Children []Snapshot
}

// ScoreSummary - текущий счёт матча в единицах его уровня.
type ScoreSummary struct {
	ScoreA      int  `json:"score_a"`
	ScoreB      int  `json:"score_b"`
	TotalPlayed int  `json:"total_played"`
	TargetScore int  `json:"target_score"`
	PlayAll     bool `json:"play_all"`
}

// MatchResult - единый формат результата вычисления для обоих уровней.
type MatchResult struct {
	Winner      models.Winner `json:"winner"`
	IsCompleted bool          `json:"is_completed"`
	Summary     ScoreSummary  `json:"score_summary"`
}

// Strategy детерминированно выводит результат матча из снимка его данных.
// Вызов не имеет побочных эффектов: повторный вызов на том же снимке даёт
// тот же результат.
type Strategy interface {
	Evaluate(snap Snapshot) MatchResult
}

// Registry сопоставляет вид матча его стратегии. Вызывающий код никогда не
// ветвится по конкретному типу стратегии.
type Registry struct {
	ctors map[MatchKind]func(cfg models.RuleConfig, reg *Registry) Strategy
}

// NewRegistry возвращает реестр с обеими встроенными стратегиями.
func NewRegistry() *Registry {
	r := &Registry{ctors: make(map[MatchKind]func(models.RuleConfig, *Registry) Strategy)}
	r.ctors[KindPlayerMatch] = func(cfg models.RuleConfig, _ *Registry) Strategy {
		return &playerStrategy{cfg: cfg}
	}
	r.ctors[KindTeamMatch] = func(cfg models.RuleConfig, reg *Registry) Strategy {
		return &teamStrategy{cfg: cfg, registry: reg}
	}
	return r
}

// Strategy возвращает стратегию для вида матча, параметризованную cfg.
func (r *Registry) Strategy(kind MatchKind, cfg models.RuleConfig) (Strategy, error) {
	ctor, ok := r.ctors[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoStrategy, kind)
	}
	return ctor(cfg, r), nil
}

// determineWinner сравнивает финальные счёта. Равенство трактуется как ничья,
// допустимость ничьей решает вызывающая стратегия.
func determineWinner(scoreA, scoreB int) models.Winner {
	switch {
	case scoreA > scoreB:
		return models.WinnerA
	case scoreB > scoreA:
		return models.WinnerB
	default:
		return models.WinnerDraw
	}
}

// SetWinner возвращает сторону, выигравшую сет с сырым счётом (scoreA, scoreB)
// по правилам cfg, либо WinnerNone, если сет ещё не доигран. При use_deuce
// сет завершён, когда одна из сторон набрала set_winning_points и ведёт
// минимум на два очка; без deuce - в момент достижения цели любой стороной.
func SetWinner(cfg models.RuleConfig, scoreA, scoreB int) models.Winner {
	if scoreA == scoreB {
		return models.WinnerNone
	}

	hi, side := scoreA, models.WinnerA
	lo := scoreB
	if scoreB > scoreA {
		hi, lo, side = scoreB, scoreA, models.WinnerB
	}

	if hi < cfg.SetWinningPoints {
		return models.WinnerNone
	}
	if cfg.UseDeuce && hi-lo < 2 {
		return models.WinnerNone
	}
	return side
}
