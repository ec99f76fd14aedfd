package models

import "time"

// MatchStatus представляет статусы матча, соответствующие ENUM в БД.
type MatchStatus string

const (
	StatusScheduled  MatchStatus = "scheduled"
	StatusInProgress MatchStatus = "in_progress"
	StatusCompleted  MatchStatus = "completed"
	StatusCanceled   MatchStatus = "canceled"
)

// Winner обозначает сторону-победителя. Пустая строка - победитель не определён.
type Winner string

const (
	WinnerNone Winner = ""
	WinnerA    Winner = "A"
	WinnerB    Winner = "B"
	WinnerDraw Winner = "D"
)

type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// TeamMatch - командная встреча между двумя командами события.
// Status и Winner являются производными полями: их пересчитывают стратегии
// при каждой записи счёта, напрямую их никто не выставляет.
type TeamMatch struct {
	ID        int         `json:"id" db:"id"`
	EventID   int         `json:"event_id" db:"event_id"`
	TeamAID   int         `json:"team_a_id" db:"team_a_id"`
	TeamBID   int         `json:"team_b_id" db:"team_b_id"`
	Number    int         `json:"number" db:"number"`
	Status    MatchStatus `json:"status" db:"status"`
	Winner    Winner      `json:"winner" db:"winner"`
	MatchDate *time.Time  `json:"match_date,omitempty" db:"match_date"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	PlayerMatches []PlayerMatch `json:"player_matches,omitempty" db:"-"`
}

// PlayerMatch - одиночная встреча внутри командной, создаётся из элемента шаблона.
type PlayerMatch struct {
	ID          int         `json:"id" db:"id"`
	TeamMatchID int         `json:"team_match_id" db:"team_match_id"`
	Number      int         `json:"number" db:"number"`
	Format      MatchFormat `json:"format" db:"format"`
	Requirement string      `json:"requirement" db:"requirement"`
	Status      MatchStatus `json:"status" db:"status"`
	Winner      Winner      `json:"winner" db:"winner"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`

	Sets         []MatchSet               `json:"sets,omitempty" db:"-"`
	Participants []PlayerMatchParticipant `json:"participants,omitempty" db:"-"`
}

// MatchSet - один сыгранный сет одиночной встречи.
type MatchSet struct {
	ID            int       `json:"id" db:"id"`
	PlayerMatchID int       `json:"player_match_id" db:"player_match_id"`
	SetNumber     int       `json:"set_number" db:"set_number"`
	ScoreA        int       `json:"score_a" db:"score_a"`
	ScoreB        int       `json:"score_b" db:"score_b"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// PlayerMatchParticipant - игрок (или гость без аккаунта) на конкретной
// позиции одной из сторон встречи.
type PlayerMatchParticipant struct {
	ID            int       `json:"id" db:"id"`
	PlayerMatchID int       `json:"player_match_id" db:"player_match_id"`
	PlayerID      *int      `json:"player_id,omitempty" db:"player_id"`
	GuestName     string    `json:"guest_name,omitempty" db:"guest_name"`
	Side          Side      `json:"side" db:"side"`
	Position      int       `json:"position" db:"position"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
