package handlers

import (
	"net/http"

	"github.com/Dosada05/match-engine/models"
	"github.com/Dosada05/match-engine/services"
)

type TemplateHandler struct {
	templateService services.TemplateService
}

func NewTemplateHandler(templateService services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

type createTemplateRequest struct {
	Name      string                       `json:"name"`
	CreatorID *int                         `json:"creator_id,omitempty"`
	Items     []services.TemplateItemInput `json:"items"`
}

func (h *TemplateHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	template, err := h.templateService.CreateMatchTemplate(r.Context(), req.Name, req.CreatorID, req.Items)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"template": template}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type updateTemplateRequest struct {
	Name  *string                      `json:"name,omitempty"`
	Items []services.TemplateItemInput `json:"items,omitempty"`
}

func (h *TemplateHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req updateTemplateRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	template, err := h.templateService.UpdateMatchTemplate(r.Context(), id, req.Name, req.Items)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"template": template}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TemplateHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	template, err := h.templateService.GetMatchTemplate(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"template": template}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type setEventConfigRequest struct {
	TemplateID int                `json:"template_id"`
	RuleConfig *models.RuleConfig `json:"rule_config,omitempty"`
}

func (h *TemplateHandler) SetEventConfig(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req setEventConfigRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Отсутствующий rule_config означает правила по умолчанию.
	ruleConfig := models.DefaultRuleConfig()
	if req.RuleConfig != nil {
		ruleConfig = *req.RuleConfig
	}

	config, err := h.templateService.SetEventMatchConfig(r.Context(), eventID, req.TemplateID, ruleConfig)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"config": config}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type validateFormatRequest struct {
	Items []services.TemplateItemInput `json:"items"`
}

func (h *TemplateHandler) ValidateFormat(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req validateFormatRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.templateService.ValidateMatchFormat(r.Context(), eventID, req.Items); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"valid": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
