package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/user/webstat/internal/adapter/api/middleware"
	"github.com/user/webstat/internal/domain"
	"github.com/user/webstat/internal/usecase"
)

// SitesHandler serves site listing and explicit provisioning.
type SitesHandler struct {
	useCase *usecase.SitesUseCase
	logger  *slog.Logger
}

// NewSitesHandler creates a new SitesHandler.
func NewSitesHandler(uc *usecase.SitesUseCase, logger *slog.Logger) *SitesHandler {
	return &SitesHandler{useCase: uc, logger: logger}
}

// List handles GET /api/sites.
func (h *SitesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sites, err := h.useCase.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list sites", "error", err, "user_id", userID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if sites == nil {
		sites = []domain.Site{}
	}
	writeJSON(w, http.StatusOK, sites)
}

type provisionRequest struct {
	Domain string `json:"domain"`
	Name   string `json:"name"`
}

// Provision handles POST /api/sites.
func (h *SitesHandler) Provision(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req provisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	site, err := h.useCase.Provision(r.Context(), userID, req.Domain, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidDomain):
			http.Error(w, "Bad Request: invalid domain", http.StatusBadRequest)
		case errors.Is(err, usecase.ErrDomainTaken):
			http.Error(w, "Conflict: domain already registered", http.StatusConflict)
		default:
			h.logger.Error("failed to provision site", "error", err, "user_id", userID)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, site)
}
