package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/narvaro/internal/app"
	"github.com/shrimpsizemoose/narvaro/internal/handlers"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	var tokens *app.TokenManager
	if redis := service.Auth.Redis(); redis != nil {
		tokens = app.NewTokenManager(redis, service.Config.Auth.TokenKeyTemplate)
	}

	studentHandler := handlers.NewStudentHandler(service)
	groupHandler := handlers.NewGroupHandler(service)
	entryHandler := handlers.NewEntryHandler(service)
	reportHandler := handlers.NewReportHandler(service)
	adminHandler := handlers.NewAdminHandler(service, tokens)

	http.HandleFunc("GET /api/v1/students", studentHandler.HandleList)
	http.HandleFunc("POST /api/v1/students", studentHandler.HandleCreate)
	http.HandleFunc("PUT /api/v1/students/{id}", studentHandler.HandleUpdate)
	http.HandleFunc("DELETE /api/v1/students/{id}", studentHandler.HandleDelete)
	http.HandleFunc("POST /api/v1/students/import", studentHandler.HandleImport)

	http.HandleFunc("GET /api/v1/groups", groupHandler.HandleList)
	http.HandleFunc("POST /api/v1/groups", groupHandler.HandleCreate)
	http.HandleFunc("PUT /api/v1/groups/{id}", groupHandler.HandleUpdate)
	http.HandleFunc("DELETE /api/v1/groups/{id}", groupHandler.HandleDelete)

	http.HandleFunc("POST /api/v1/entries", entryHandler.HandleSave)
	http.HandleFunc("GET /api/v1/attendance", entryHandler.HandleAttendanceByDate)

	http.HandleFunc("GET /api/v1/reports/dashboard", reportHandler.HandleDashboard)
	http.HandleFunc("GET /api/v1/reports/detailed", reportHandler.HandleDetailed)
	http.HandleFunc("GET /api/v1/reports/export", reportHandler.HandleExport)
	http.HandleFunc("POST /api/v1/assessments/export", reportHandler.HandleMarkExported)

	http.HandleFunc("POST /api/v1/admin/reset", adminHandler.HandleYearReset)
	http.HandleFunc("POST /api/v1/admin/tokens", adminHandler.HandleIssueToken)
	http.HandleFunc("POST /api/v1/admin/users", adminHandler.HandleCreateUser)

	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting narvaro server on %s", service.Config.Server.Port)
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Narvaro server failed: %v", err)
	}
}
