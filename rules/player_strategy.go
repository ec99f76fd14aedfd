package rules

import "github.com/Dosada05/match-engine/models"

// playerStrategy считает результат одиночной встречи по её сетам.
//
// Гоночный режим: встреча завершается в момент, когда одна из сторон набирает
// winning_sets выигранных сетов. Режим play_all_sets: встреча завершается
// только после 2*winning_sets-1 записанных сетов, победитель - по сравнению
// итоговых счётов (равенство даёт ничью).
type playerStrategy struct {
	cfg models.RuleConfig
}

func (s *playerStrategy) Evaluate(snap Snapshot) MatchResult {
	var scoreA, scoreB, totalPlayed int

	for _, set := range snap.Sets {
		totalPlayed++
		// Недоигранный по правилам сет входит в total_played,
		// но не приносит очка ни одной из сторон.
		switch SetWinner(s.cfg, set.ScoreA, set.ScoreB) {
		case models.WinnerA:
			scoreA++
		case models.WinnerB:
			scoreB++
		}
	}

	var completed bool
	var winner models.Winner

	if s.cfg.PlayAllSets {
		if totalPlayed >= s.cfg.TotalSets() {
			completed = true
			winner = determineWinner(scoreA, scoreB)
		}
	} else {
		switch {
		case scoreA >= s.cfg.WinningSets:
			completed = true
			winner = models.WinnerA
		case scoreB >= s.cfg.WinningSets:
			completed = true
			winner = models.WinnerB
		}
	}

	return MatchResult{
		Winner:      winner,
		IsCompleted: completed,
		Summary: ScoreSummary{
			ScoreA:      scoreA,
			ScoreB:      scoreB,
			TotalPlayed: totalPlayed,
			TargetScore: s.cfg.WinningSets,
			PlayAll:     s.cfg.PlayAllSets,
		},
	}
}
