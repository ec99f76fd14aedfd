package rules

import (
	"testing"

	"github.com/Dosada05/match-engine/models"
)

// wonChild - снимок одиночной встречи, завершённой указанным числом сетов.
func wonChild(cfg models.RuleConfig, setsA, setsB int) Snapshot {
	child := Snapshot{Kind: KindPlayerMatch}
	for i := 0; i < setsA; i++ {
		child.Sets = append(child.Sets, models.MatchSet{SetNumber: len(child.Sets) + 1, ScoreA: cfg.SetWinningPoints, ScoreB: 0})
	}
	for i := 0; i < setsB; i++ {
		child.Sets = append(child.Sets, models.MatchSet{SetNumber: len(child.Sets) + 1, ScoreA: 0, ScoreB: cfg.SetWinningPoints})
	}
	return child
}

func evaluateTeam(t *testing.T, cfg models.RuleConfig, snap Snapshot) MatchResult {
	t.Helper()
	strategy, err := NewRegistry().Strategy(KindTeamMatch, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return strategy.Evaluate(snap)
}

func TestTeamStrategy_RaceToTeamWinningPoints(t *testing.T) {
	cfg := models.DefaultRuleConfig() // team_winning_points=3, winning_sets=3

	snap := Snapshot{
		Kind: KindTeamMatch,
		Children: []Snapshot{
			wonChild(cfg, 3, 0),
			wonChild(cfg, 3, 1),
			wonChild(cfg, 0, 3),
			wonChild(cfg, 3, 2),
			{Kind: KindPlayerMatch}, // пятая встреча ещё не игралась
		},
	}

	res := evaluateTeam(t, cfg, snap)
	if !res.IsCompleted || res.Winner != models.WinnerA {
		t.Fatalf("three child wins should finish the team match for A, got winner=%q completed=%v", res.Winner, res.IsCompleted)
	}
	if res.Summary.ScoreA != 3 || res.Summary.ScoreB != 1 {
		t.Errorf("unexpected team score %d:%d", res.Summary.ScoreA, res.Summary.ScoreB)
	}
}

func TestTeamStrategy_IncompleteChildrenDoNotScore(t *testing.T) {
	cfg := models.DefaultRuleConfig()

	// Две доигранные встречи и одна в процессе: командная не завершена.
	snap := Snapshot{
		Kind: KindTeamMatch,
		Children: []Snapshot{
			wonChild(cfg, 3, 0),
			wonChild(cfg, 3, 0),
			wonChild(cfg, 2, 1), // 2:1 по сетам, встреча не доиграна
		},
	}

	res := evaluateTeam(t, cfg, snap)
	if res.IsCompleted {
		t.Fatalf("team match must stay open while a child is in progress, got winner=%q", res.Winner)
	}
	if res.Summary.ScoreA != 2 || res.Summary.ScoreB != 0 {
		t.Errorf("in-progress child must not score, got %d:%d", res.Summary.ScoreA, res.Summary.ScoreB)
	}
}

func TestTeamStrategy_PlayAllMatches(t *testing.T) {
	cfg := models.DefaultRuleConfig()
	cfg.PlayAllMatches = true

	children := []Snapshot{
		wonChild(cfg, 3, 0),
		wonChild(cfg, 3, 0),
		wonChild(cfg, 3, 0),
		{Kind: KindPlayerMatch},
	}

	res := evaluateTeam(t, cfg, Snapshot{Kind: KindTeamMatch, Children: children})
	if res.IsCompleted {
		t.Fatal("play_all_matches must wait for every scheduled child")
	}

	children[3] = wonChild(cfg, 0, 3)
	res = evaluateTeam(t, cfg, Snapshot{Kind: KindTeamMatch, Children: children})
	if !res.IsCompleted || res.Winner != models.WinnerA {
		t.Fatalf("all children finished, expected A to win 3:1, got winner=%q completed=%v", res.Winner, res.IsCompleted)
	}
}

func TestTeamStrategy_DrawOnlyWhenAllChildrenFinished(t *testing.T) {
	cfg := models.DefaultRuleConfig()
	cfg.TeamWinningPoints = 2

	// 1:1 при недоигранной третьей встрече - ещё не ничья.
	children := []Snapshot{
		wonChild(cfg, 3, 0),
		wonChild(cfg, 0, 3),
		wonChild(cfg, 1, 1),
	}
	res := evaluateTeam(t, cfg, Snapshot{Kind: KindTeamMatch, Children: children})
	if res.IsCompleted {
		t.Fatalf("tie with an open child must not complete, got winner=%q", res.Winner)
	}

	// Третья встреча доиграна, счёт победами 1:1... но победитель третьей
	// делает счёт 2:1, поэтому для ничьей нужен режим по сетам. Проверяем
	// ничью на чётном числе детей.
	children = []Snapshot{
		wonChild(cfg, 3, 0),
		wonChild(cfg, 0, 3),
	}
	res = evaluateTeam(t, cfg, Snapshot{Kind: KindTeamMatch, Children: children})
	if !res.IsCompleted || res.Winner != models.WinnerDraw {
		t.Fatalf("all children finished at 1:1, expected a draw, got winner=%q completed=%v", res.Winner, res.IsCompleted)
	}
}

func TestTeamStrategy_CountPointsBySets(t *testing.T) {
	cfg := models.DefaultRuleConfig()
	cfg.CountPointsBySets = true
	cfg.PlayAllMatches = true

	// Первая встреча 3:2 по сетам за A, вторая 1:3 за B: суммарно 4:5.
	children := []Snapshot{
		wonChild(cfg, 3, 2),
		wonChild(cfg, 1, 3),
	}

	res := evaluateTeam(t, cfg, Snapshot{Kind: KindTeamMatch, Children: children})
	if !res.IsCompleted || res.Winner != models.WinnerB {
		t.Fatalf("set tally 4:5 should give B the win, got winner=%q completed=%v", res.Winner, res.IsCompleted)
	}
	if res.Summary.ScoreA != 4 || res.Summary.ScoreB != 5 {
		t.Errorf("unexpected set tally %d:%d", res.Summary.ScoreA, res.Summary.ScoreB)
	}
}

func TestTeamStrategy_CountPointsBySetsIncludesOpenChildren(t *testing.T) {
	cfg := models.DefaultRuleConfig()
	cfg.CountPointsBySets = true
	cfg.TeamWinningPoints = 5

	// Недоигранная встреча тоже отдаёт свои выигранные сеты в общий зачёт.
	children := []Snapshot{
		wonChild(cfg, 3, 0),
		wonChild(cfg, 1, 1),
	}

	res := evaluateTeam(t, cfg, Snapshot{Kind: KindTeamMatch, Children: children})
	if res.IsCompleted {
		t.Fatalf("5 sets needed, only 4 on the board, got completed=%v winner=%q", res.IsCompleted, res.Winner)
	}
	if res.Summary.ScoreA != 4 || res.Summary.ScoreB != 1 {
		t.Errorf("open child sets must count, got %d:%d", res.Summary.ScoreA, res.Summary.ScoreB)
	}
}

func TestTeamStrategy_NoChildrenNeverCompletes(t *testing.T) {
	for _, playAll := range []bool{false, true} {
		cfg := models.DefaultRuleConfig()
		cfg.PlayAllMatches = playAll

		res := evaluateTeam(t, cfg, Snapshot{Kind: KindTeamMatch})
		if res.IsCompleted {
			t.Errorf("play_all_matches=%v: empty team match must never complete", playAll)
		}
	}
}
