package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
	"github.com/mrt-platform/maintenance-tracker/internal/core/ports"
)

func TestReportService_CRUD(t *testing.T) {
	env := newTestEnv(t)
	manager := env.seedUser(t, "manager@example.com", "manager123", domain.RoleManager)
	svc := env.reportService()
	ctx := context.Background()

	date := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	report, err := svc.Create(ctx, manager, ports.CreateReportInput{Title: "Boiler check", Description: "Annual", Date: date})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if report.Type != domain.ReportMaintenance || !report.Date.Equal(date) || report.CreatedBy != manager.ID {
		t.Fatalf("unexpected report: %+v", report)
	}

	repair := domain.ReportRepair
	updated, err := svc.Update(ctx, report.ID, ports.UpdateReportInput{Type: &repair})
	if err != nil || updated.Type != domain.ReportRepair {
		t.Fatalf("Update: %v %+v", err, updated)
	}

	list, _ := svc.List(ctx)
	if len(list) != 1 {
		t.Fatalf("expected 1 report, got %d", len(list))
	}

	if err := svc.Delete(ctx, report.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, report.ID); !errors.Is(err, domain.ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound, got %v", err)
	}
}

func TestReportService_Create_DefaultsDateAndValidates(t *testing.T) {
	env := newTestEnv(t)
	manager := env.seedUser(t, "manager@example.com", "manager123", domain.RoleManager)
	svc := env.reportService()

	report, err := svc.Create(context.Background(), manager, ports.CreateReportInput{Title: "t", Description: "d"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !report.Date.Equal(env.clock) {
		t.Fatalf("expected date to default to now, got %v", report.Date)
	}

	if _, err := svc.Create(context.Background(), manager, ports.CreateReportInput{Title: "t", Description: "d", Type: "audit"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func seedIssuesAcrossMonths(t *testing.T, env *testEnv) {
	t.Helper()
	manager := env.seedUser(t, "manager@example.com", "manager123", domain.RoleManager)
	svc := env.issueService()

	seed := []struct {
		at     time.Time
		title  string
		status domain.IssueStatus
	}{
		{time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), "jan-1", domain.IssuePending},
		{time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC), "jan-2", domain.IssueSolved},
		{time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), "mar-1", domain.IssueSolved},
	}
	for _, s := range seed {
		env.clock = s.at
		if _, err := svc.Create(context.Background(), manager, ports.CreateIssueInput{Title: s.title, Description: "d", Status: s.status}); err != nil {
			t.Fatalf("seed %s: %v", s.title, err)
		}
	}
}

func TestReportService_Monthly(t *testing.T) {
	env := newTestEnv(t)
	seedIssuesAcrossMonths(t, env)

	got, err := env.reportService().Monthly(context.Background())
	if err != nil {
		t.Fatalf("Monthly: %v", err)
	}
	want := []domain.MonthlySummary{
		{Month: "2024-03", Total: 1, Pending: 0, Solved: 1},
		{Month: "2024-01", Total: 2, Pending: 1, Solved: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d months, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("month %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReportService_ExportIssues(t *testing.T) {
	env := newTestEnv(t)
	seedIssuesAcrossMonths(t, env)
	svc := env.reportService()

	var buf bytes.Buffer
	n, err := svc.ExportIssues(context.Background(), &buf, domain.IssueSolved)
	if err != nil {
		t.Fatalf("ExportIssues: %v", err)
	}
	if n != 2 {
		t.Fatalf("exported %d rows, want 2", n)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[0][0] != "ID" || records[0][7] != "Updated At" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][1] != "jan-2" || records[1][4] != "solved" || records[1][6] != "2024-01-20T10:00:00Z" {
		t.Fatalf("unexpected first row: %v", records[1])
	}
}

func TestReportService_ExportIssues_AllAndInvalid(t *testing.T) {
	env := newTestEnv(t)
	seedIssuesAcrossMonths(t, env)
	svc := env.reportService()

	var buf bytes.Buffer
	n, err := svc.ExportIssues(context.Background(), &buf, "")
	if err != nil || n != 3 {
		t.Fatalf("export all: n=%d err=%v", n, err)
	}

	if _, err := svc.ExportIssues(context.Background(), &bytes.Buffer{}, "archived"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
