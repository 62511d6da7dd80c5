package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/narvaro/internal/app"
	"github.com/shrimpsizemoose/narvaro/internal/excel"
	"github.com/shrimpsizemoose/narvaro/internal/metrics"
	"github.com/shrimpsizemoose/narvaro/internal/models"
	"github.com/shrimpsizemoose/narvaro/internal/report"
	"github.com/shrimpsizemoose/narvaro/internal/scope"
)

type ReportHandler struct {
	service *app.Service
}

func NewReportHandler(service *app.Service) *ReportHandler {
	return &ReportHandler{
		service: service,
	}
}

// gather pulls all three collections, applies viewer scope plus the page
// selection, and hides unexported assessments from admins. Trainers see
// their own drafts.
func (h *ReportHandler) gather(r *http.Request, user *models.User) ([]models.Student, []models.AttendanceRecord, []models.AssessmentRecord, error) {
	students, err := h.service.Store.ListStudents()
	if err != nil {
		return nil, nil, nil, err
	}
	groups, err := h.service.Store.ListGroups()
	if err != nil {
		return nil, nil, nil, err
	}
	attendance, err := h.service.Store.ListAttendance()
	if err != nil {
		return nil, nil, nil, err
	}
	assessments, err := h.service.Store.ListAssessments()
	if err != nil {
		return nil, nil, nil, err
	}

	viewer := scope.ViewerFor(user)
	sel := parseSelection(r)

	visibleAssessments := scope.Assessments(assessments, viewer, sel)
	if user.Role == models.RoleAdmin {
		visibleAssessments = report.AdminVisible(visibleAssessments)
	}

	return scope.Students(students, groups, viewer, sel),
		scope.Attendance(attendance, viewer, sel),
		visibleAssessments,
		nil
}

func (h *ReportHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.CurrentUser(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	students, attendance, assessments, err := h.gather(r, user)
	if err != nil {
		logger.Error.Printf("Failed to gather dashboard data: %v", err)
		http.Error(w, "Failed to fetch records", http.StatusInternalServerError)
		return
	}

	summary := report.Overview(students, attendance, assessments)
	metrics.AttendanceRateGauge.WithLabelValues("dashboard").Set(float64(summary.AttendanceRate))

	writeJSON(w, http.StatusOK, summary)
}

// HandleDetailed serves the per-student breakdown. Unlike the dashboard its
// average is the percentage-of-total-possible formula.
func (h *ReportHandler) HandleDetailed(w http.ResponseWriter, r *http.Request) {
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
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	students, attendance, assessments, err := h.gather(r, user)
	if err != nil {
		logger.Error.Printf("Failed to gather report data: %v", err)
		http.Error(w, "Failed to fetch records", http.StatusInternalServerError)
		return
	}

	rows := report.PerStudent(students, attendance, assessments)
	grand := report.Summary{
		Students:        len(students),
		AttendanceTotal: len(attendance),
		AttendanceRate:  report.AttendanceRate(attendance),
		Assessments:     len(assessments),
		AverageScore:    report.WeightedAverage(assessments),
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"summary": grand,
		"rows":    rows,
	})
}

// HandleExport streams the detailed report as an xlsx attachment.
func (h *ReportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.CurrentUser(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	students, attendance, assessments, err := h.gather(r, user)
	if err != nil {
		logger.Error.Printf("Failed to gather export data: %v", err)
		http.Error(w, "Failed to fetch records", http.StatusInternalServerError)
		return
	}

	summary := report.Summary{
		Students:        len(students),
		AttendanceTotal: len(attendance),
		AttendanceRate:  report.AttendanceRate(attendance),
		Assessments:     len(assessments),
		AverageScore:    report.WeightedAverage(assessments),
	}
	rows := report.PerStudent(students, attendance, assessments)

	title := h.service.Config.Export.Title
	if title == "" {
		title = "Attendance and assessment report"
	}

	f, err := excel.ReportWorkbook(title, summary, rows)
	if err != nil {
		logger.Error.Printf("Failed to build workbook: %v", err)
		http.Error(w, "Failed to build workbook", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("report-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := f.Write(w); err != nil {
		logger.Error.Printf("Failed to stream workbook: %v", err)
	}
}

// HandleMarkExported flips exportedToAdmin on a (group, week, unit) batch,
// publishing a trainer's draft scores into admin reports.
func (h *ReportHandler) HandleMarkExported(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.CurrentUser(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		GroupID string `json:"group_id"`
		Week    int    `json:"week"`
		Unit    string `json:"unit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.GroupID == "" || req.Week < 1 || req.Week > 10 {
		http.Error(w, "group_id and week 1..10 are required", http.StatusBadRequest)
		return
	}

	if !scope.ViewerFor(user).AllowsGroup(req.GroupID) {
		http.Error(w, "Group outside assigned scope", http.StatusForbidden)
		return
	}

	n, err := h.service.Store.MarkWeekExported(req.GroupID, req.Week, req.Unit)
	if err != nil {
		logger.Error.Printf("Failed to mark week exported: %v", err)
		http.Error(w, "Failed to export week", http.StatusInternalServerError)
		return
	}

	logger.Info.Printf("User %s exported %d assessments for group=%s week=%d unit=%s",
		user.Username, n, req.GroupID, req.Week, req.Unit)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"exported": n,
	})
}
