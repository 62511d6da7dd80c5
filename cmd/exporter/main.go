package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/narvaro/internal/app"
	"github.com/shrimpsizemoose/narvaro/internal/excel"
	"github.com/shrimpsizemoose/narvaro/internal/report"
)

// The exporter drops a dated admin report workbook into export.dir on the
// configured cron schedule. Only exported-to-admin assessments feed it.
func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	if service.Config.Export.Dir == "" || service.Config.Export.Schedule == "" {
		logger.Error.Fatalf("export.dir and export.schedule must be set")
	}

	scheduler := gocron.NewScheduler(time.UTC)
	_, err = scheduler.Cron(service.Config.Export.Schedule).Do(func() {
		if err := exportOnce(service); err != nil {
			logger.Error.Printf("Export failed: %v", err)
		}
	})
	if err != nil {
		logger.Error.Fatalf("Failed to schedule export: %v", err)
	}

	scheduler.StartAsync()
	logger.Info.Printf("Exporter running, schedule %q, dir %s", service.Config.Export.Schedule, service.Config.Export.Dir)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	scheduler.Stop()
	logger.Info.Println("Exporter stopped")
}

func exportOnce(service *app.Service) error {
	students, err := service.Store.ListStudents()
	if err != nil {
		return fmt.Errorf("failed to list students: %w", err)
	}
	attendance, err := service.Store.ListAttendance()
	if err != nil {
		return fmt.Errorf("failed to list attendance: %w", err)
	}
	assessments, err := service.Store.ListAssessments()
	if err != nil {
		return fmt.Errorf("failed to list assessments: %w", err)
	}

	visible := report.AdminVisible(assessments)

	summary := report.Summary{
		Students:        len(students),
		AttendanceTotal: len(attendance),
		AttendanceRate:  report.AttendanceRate(attendance),
		Assessments:     len(visible),
		AverageScore:    report.WeightedAverage(visible),
	}
	rows := report.PerStudent(students, attendance, visible)

	title := service.Config.Export.Title
	if title == "" {
		title = "Attendance and assessment report"
	}

	f, err := excel.ReportWorkbook(title, summary, rows)
	if err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	defer f.Close()

	path := filepath.Join(
		service.Config.Export.Dir,
		fmt.Sprintf("report-%s.xlsx", time.Now().UTC().Format("2006-01-02")),
	)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	logger.Info.Printf("Exported %d student rows to %s", len(rows), path)
	return nil
}
