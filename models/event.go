package models

import "time"

// Event - событие (лига, турнир), в рамках которого играются командные встречи.
// Управление событиями и составами живёт во внешнем сервисе, здесь только то,
// что нужно движку матчей.
type Event struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// EventTeam - команда, заявленная на событие.
type EventTeam struct {
	ID        int       `json:"id" db:"id"`
	EventID   int       `json:"event_id" db:"event_id"`
	TeamID    int       `json:"team_id" db:"team_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// EventTeamMember - игрок в составе команды события.
// (event, user) уникальна: игрок состоит не более чем в одной команде события.
type EventTeamMember struct {
	ID          int       `json:"id" db:"id"`
	EventTeamID int       `json:"event_team_id" db:"event_team_id"`
	UserID      int       `json:"user_id" db:"user_id"`
	IsPlayer    bool      `json:"is_player" db:"is_player"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
