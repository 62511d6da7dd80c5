package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/narvaro/internal/app"
	"github.com/shrimpsizemoose/narvaro/internal/excel"
	"github.com/shrimpsizemoose/narvaro/internal/metrics"
	"github.com/shrimpsizemoose/narvaro/internal/models"
	"github.com/shrimpsizemoose/narvaro/internal/scope"
)

type StudentHandler struct {
	service *app.Service
}

func NewStudentHandler(service *app.Service) *StudentHandler {
	return &StudentHandler{
		service: service,
	}
}

func (h *StudentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.CurrentUser(r)
	if err != nil {
		logger.Error.Printf("Auth failed: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
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

	visible := scope.Students(students, groups, scope.ViewerFor(user), parseSelection(r))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rows": visible,
	})
}

func (h *StudentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.CurrentUser(r); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var student models.Student
	if err := json.NewDecoder(r.Body).Decode(&student); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := student.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.Store.CreateStudent(&student); err != nil {
		logger.Error.Printf("Failed to create student: %v", err)
		http.Error(w, "Failed to save student", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, student)
}

func (h *StudentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.CurrentUser(r); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id := r.PathValue("id")
	existing, err := h.service.Store.GetStudent(id)
	if err != nil {
		logger.Error.Printf("Failed to get student %s: %v", id, err)
		http.Error(w, "Failed to fetch student", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		http.Error(w, "Student not found", http.StatusNotFound)
		return
	}

	// Partial update: decode over the stored record so omitted fields keep
	// their values.
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

	if err := h.service.Store.UpdateStudent(&updated); err != nil {
		logger.Error.Printf("Failed to update student %s: %v", id, err)
		http.Error(w, "Failed to save student", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *StudentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.CurrentUser(r); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id := r.PathValue("id")
	if err := h.service.Store.DeleteStudent(id); err != nil {
		logger.Error.Printf("Failed to delete student %s: %v", id, err)
		http.Error(w, "Failed to delete student", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleImport accepts a multipart roster workbook. Malformed rows are
// collected and reported next to the added/skipped counts, never failing the
// whole upload.
func (h *StudentHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.CurrentUser(r); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing uploaded file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	logger.Info.Printf("Importing roster from %s", header.Filename)

	groups, err := h.service.Store.ListGroups()
	if err != nil {
		logger.Error.Printf("Failed to list groups: %v", err)
		http.Error(w, "Failed to fetch groups", http.StatusInternalServerError)
		return
	}

	students, rowErrs, err := excel.ParseStudents(file, groups)
	if err != nil {
		logger.Error.Printf("Failed to parse roster %s: %v", header.Filename, err)
		http.Error(w, "Failed to parse workbook", http.StatusBadRequest)
		return
	}

	result, err := h.service.Store.BulkAddStudents(students)
	if err != nil {
		logger.Error.Printf("Bulk add failed: %v", err)
		http.Error(w, "Failed to import students", http.StatusInternalServerError)
		return
	}

	metrics.ImportRowsTotal.WithLabelValues("imported").Add(float64(result.Added))
	metrics.ImportRowsTotal.WithLabelValues("skipped").Add(float64(result.Skipped))
	metrics.ImportRowsTotal.WithLabelValues("error").Add(float64(len(rowErrs) + len(result.Errors)))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"added":      result.Added,
		"skipped":    result.Skipped,
		"errors":     result.Errors,
		"row_errors": rowErrs,
	})
}
