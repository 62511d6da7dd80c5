package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/narvaro/internal/app"
	"github.com/shrimpsizemoose/narvaro/internal/models"
)

// resetConfirmPhrase must be typed back verbatim before the year reset runs.
const resetConfirmPhrase = "RESET YEAR DATA"

type AdminHandler struct {
	service *app.Service
	tokens  *app.TokenManager
}

func NewAdminHandler(service *app.Service, tokens *app.TokenManager) *AdminHandler {
	return &AdminHandler{
		service: service,
		tokens:  tokens,
	}
}

func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) *models.User {
	user, err := h.service.CurrentUser(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil
	}
	if user.Role != models.RoleAdmin {
		http.Error(w, "Admin role required", http.StatusForbidden)
		return nil
	}
	return user
}

// HandleYearReset clears attendance and assessments for the new academic
// year. Students, groups and accounts stay.
func (h *AdminHandler) HandleYearReset(w http.ResponseWriter, r *http.Request) {
	user := h.requireAdmin(w, r)
	if user == nil {
		return
	}

	var req struct {
		Confirm string `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Confirm != resetConfirmPhrase {
		http.Error(w, "Confirmation phrase mismatch", http.StatusBadRequest)
		return
	}

	if err := h.service.Store.ClearYearData(); err != nil {
		logger.Error.Printf("Year reset failed: %v", err)
		http.Error(w, "Failed to reset year data", http.StatusInternalServerError)
		return
	}

	logger.Info.Printf("Academic year data reset by %s", user.Username)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reset": true,
	})
}

// HandleIssueToken mints or refreshes a trainer's API token.
func (h *AdminHandler) HandleIssueToken(w http.ResponseWriter, r *http.Request) {
	user := h.requireAdmin(w, r)
	if user == nil {
		return
	}

	if h.tokens == nil {
		http.Error(w, "Token management requires auth to be enabled", http.StatusConflict)
		return
	}

	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}

	target, err := h.service.Store.GetUser(req.Username)
	if err != nil {
		logger.Error.Printf("Failed to look up user %s: %v", req.Username, err)
		http.Error(w, "Failed to look up user", http.StatusInternalServerError)
		return
	}
	if target == nil {
		http.Error(w, "Unknown user", http.StatusNotFound)
		return
	}

	info, created, err := h.tokens.FetchOrCreateToken(r.Context(), req.Username)
	if err != nil {
		logger.Error.Printf("Failed to issue token for %s: %v", req.Username, err)
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, info)
}

// HandleCreateUser registers an operator account.
func (h *AdminHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := user.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.Store.CreateUser(&user); err != nil {
		logger.Error.Printf("Failed to create user: %v", err)
		http.Error(w, "Failed to save user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}
