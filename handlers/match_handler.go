package handlers

import (
	"net/http"
	"strconv"

	"github.com/Dosada05/match-engine/models"
	"github.com/Dosada05/match-engine/services"
	"github.com/go-chi/chi/v5"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

type initializeTeamMatchRequest struct {
	TeamAID     int                          `json:"team_a_id"`
	TeamBID     int                          `json:"team_b_id"`
	MatchNumber int                          `json:"match_number"`
	Lineups     []services.PlayerMatchLineup `json:"player_matches,omitempty"`
}

func (h *MatchHandler) CreateTeamMatch(w http.ResponseWriter, r *http.Request) {
	var req initializeTeamMatchRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.CreateTeamMatchFull(r.Context(), req.TeamAID, req.TeamBID, req.MatchNumber, req.Lineups)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"team_match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetTeamMatch(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	overview, err := h.matchService.GetTeamMatchOverview(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, overview, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListEventMatches(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListEventMatches(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team_matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) EvaluateTeamMatch(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.matchService.EvaluateTeamMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) EvaluatePlayerMatch(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.matchService.EvaluatePlayerMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type recordSetScoreRequest struct {
	SetNumber int `json:"set_number"`
	ScoreA    int `json:"score_a"`
	ScoreB    int `json:"score_b"`
}

func (h *MatchHandler) RecordSetScore(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req recordSetScoreRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.RecordSetScore(r.Context(), id, req.SetNumber, req.ScoreA, req.ScoreB); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type assignParticipantRequest struct {
	PlayerID  *int   `json:"player_id,omitempty"`
	GuestName string `json:"guest_name,omitempty"`
	Side      string `json:"side,omitempty"`
	Position  int    `json:"position"`
}

func (h *MatchHandler) AssignParticipant(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req assignParticipantRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.matchService.AssignPlayerToMatch(r.Context(), services.AssignPlayerInput{
		PlayerMatchID: id,
		PlayerID:      req.PlayerID,
		GuestName:     req.GuestName,
		Side:          models.Side(req.Side),
		Position:      req.Position,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func idParam(r *http.Request, name string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, name))
}
