package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/narvaro/internal/app"
	"github.com/shrimpsizemoose/narvaro/internal/models"
	"github.com/shrimpsizemoose/narvaro/internal/scope"
)

type GroupHandler struct {
	service *app.Service
}

func NewGroupHandler(service *app.Service) *GroupHandler {
	return &GroupHandler{
		service: service,
	}
}

func (h *GroupHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.CurrentUser(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groups, err := h.service.Store.ListGroups()
	if err != nil {
		logger.Error.Printf("Failed to list groups: %v", err)
		http.Error(w, "Failed to fetch groups", http.StatusInternalServerError)
		return
	}

	visible := scope.Groups(groups, scope.ViewerFor(user), parseSelection(r))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rows": visible,
	})
}

func (h *GroupHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.CurrentUser(r); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var group models.Group
	if err := json.NewDecoder(r.Body).Decode(&group); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := group.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.Store.CreateGroup(&group); err != nil {
		logger.Error.Printf("Failed to create group: %v", err)
		http.Error(w, "Failed to save group", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, group)
}

func (h *GroupHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.CurrentUser(r); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id := r.PathValue("id")
	existing, err := h.service.Store.GetGroup(id)
	if err != nil {
		logger.Error.Printf("Failed to get group %s: %v", id, err)
		http.Error(w, "Failed to fetch group", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		http.Error(w, "Group not found", http.StatusNotFound)
		return
	}

	updated := *existing
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	updated.ID = existing.ID
	if err := updated.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.Store.UpdateGroup(&updated); err != nil {
		logger.Error.Printf("Failed to update group %s: %v", id, err)
		http.Error(w, "Failed to save group", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *GroupHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.CurrentUser(r); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id := r.PathValue("id")
	if err := h.service.Store.DeleteGroup(id); err != nil {
		logger.Error.Printf("Failed to delete group %s: %v", id, err)
		http.Error(w, "Failed to delete group", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
