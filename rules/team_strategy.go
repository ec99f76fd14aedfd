package rules

import "github.com/Dosada05/match-engine/models"

// teamStrategy считает результат командной встречи, рекурсивно прогоняя
// дочерние снимки через стратегию одиночных встреч из реестра.
//
// Счёт по умолчанию - количество выигранных дочерних встреч; при
// count_points_by_sets суммируются выигранные сеты всех дочерних встреч.
// Пустая встреча (ноль запланированных детей) не завершается никогда.
type teamStrategy struct {
	cfg      models.RuleConfig
	registry *Registry
}

func (s *teamStrategy) Evaluate(snap Snapshot) MatchResult {
	leaf, err := s.registry.Strategy(KindPlayerMatch, s.cfg)
	if err != nil {
		// Обе стратегии регистрируются в NewRegistry, сюда попасть нельзя.
		panic(err)
	}

	totalScheduled := len(snap.Children)

	var scoreA, scoreB, totalFinished int
	for _, child := range snap.Children {
		res := leaf.Evaluate(child)

		if res.IsCompleted {
			totalFinished++
		}

		if s.cfg.CountPointsBySets {
			scoreA += res.Summary.ScoreA
			scoreB += res.Summary.ScoreB
		} else if res.IsCompleted {
			switch res.Winner {
			case models.WinnerA:
				scoreA++
			case models.WinnerB:
				scoreB++
			}
		}
	}

	var completed bool
	var winner models.Winner

	allFinished := totalScheduled > 0 && totalFinished >= totalScheduled

	if s.cfg.PlayAllMatches {
		if allFinished {
			completed = true
			winner = determineWinner(scoreA, scoreB)
		}
	} else {
		switch {
		case totalScheduled > 0 && scoreA >= s.cfg.TeamWinningPoints:
			completed = true
			winner = models.WinnerA
		case totalScheduled > 0 && scoreB >= s.cfg.TeamWinningPoints:
			completed = true
			winner = models.WinnerB
		case allFinished:
			// Ничья возможна только когда доиграны все дочерние встречи.
			completed = true
			winner = determineWinner(scoreA, scoreB)
		}
	}

	return MatchResult{
		Winner:      winner,
		IsCompleted: completed,
		Summary: ScoreSummary{
			ScoreA:      scoreA,
			ScoreB:      scoreB,
			TotalPlayed: totalFinished,
			TargetScore: s.cfg.TeamWinningPoints,
			PlayAll:     s.cfg.PlayAllMatches,
		},
	}
}
