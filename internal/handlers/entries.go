package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/narvaro/internal/app"
	"github.com/shrimpsizemoose/narvaro/internal/entry"
	"github.com/shrimpsizemoose/narvaro/internal/metrics"
	"github.com/shrimpsizemoose/narvaro/internal/scope"
)

type EntryHandler struct {
	service *app.Service
}

func NewEntryHandler(service *app.Service) *EntryHandler {
	return &EntryHandler{
		service: service,
	}
}

// HandleSave persists a combined attendance/assessment entry form. If an
// exported assessment already sits on the same (group, week, unit) the save
// is answered with 409 until the client retries with ?force=true; duplicate
// weeks are allowed, just not silently.
func (h *EntryHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		metrics.APIRequestDuration.WithLabelValues(
			r.URL.Path,
			r.Method,
			"200",
		).Observe(duration)
	}()

	user, err := h.service.CurrentUser(r)
	if err != nil {
		logger.Error.Printf("Auth failed: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var session entry.Session
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	session.TrainerID = user.Username

	if err := session.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	reconciler := entry.NewReconciler(h.service.Store)

	if r.URL.Query().Get("force") != "true" {
		duplicate, err := reconciler.HasExportedDuplicate(&session)
		if err != nil {
			logger.Error.Printf("Duplicate check failed: %v", err)
			http.Error(w, "Failed to check for duplicates", http.StatusInternalServerError)
			return
		}
		if duplicate {
			writeJSON(w, http.StatusConflict, map[string]interface{}{
				"warning": "an exported assessment already exists for this group/week/unit; repeat with force=true to proceed",
			})
			return
		}
	}

	students, err := h.service.Store.ListStudents()
	if err != nil {
		logger.Error.Printf("Failed to list students: %v", err)
		http.Error(w, "Failed to fetch students", http.StatusInternalServerError)
		return
	}
	groups, err := h.service.Store.ListGroups()
	if err != nil {
		logger.Error.Printf("Failed to list groups: %v", err)
		http.Error(w, "Failed to fetch groups", http.StatusInternalServerError)
		return
	}

	sel := scope.Selection{Year: session.Year, Group: session.GroupID, Unit: session.Unit}
	roster := scope.Students(students, groups, scope.ViewerFor(user), sel)

	result, err := reconciler.Save(&session, roster)
	if err != nil {
		var vErr *entry.ValidationError
		if errors.As(err, &vErr) {
			logger.Debug.Printf("Entry save blocked: %v", vErr)
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":  vErr.Error(),
				"saved":  result,
				"rolled": false,
			})
			return
		}
		logger.Error.Printf("Entry save failed: %v", err)
		http.Error(w, "Failed to save entries", http.StatusInternalServerError)
		return
	}

	metrics.RecordsSavedTotal.WithLabelValues("attendance").Add(float64(result.AttendanceSaved))
	metrics.RecordsSavedTotal.WithLabelValues("assessment").Add(float64(result.AssessmentsSaved))

	writeJSON(w, http.StatusOK, result)
}

// HandleAttendanceByDate lists what is already marked for a day so the form
// can preload existing statuses.
func (h *EntryHandler) HandleAttendanceByDate(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.CurrentUser(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "Missing date parameter", http.StatusBadRequest)
		return
	}

	records, err := h.service.Store.ListAttendanceByDate(date)
	if err != nil {
		logger.Error.Printf("Failed to list attendance for %s: %v", date, err)
		http.Error(w, "Failed to fetch attendance", http.StatusInternalServerError)
		return
	}

	visible := scope.Attendance(records, scope.ViewerFor(user), parseSelection(r))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rows": visible,
	})
}
