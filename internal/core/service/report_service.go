package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
	"github.com/mrt-platform/maintenance-tracker/internal/core/ports"
)

var exportHeader = []string{"ID", "Title", "Description", "Category", "Status", "Priority", "Created At", "Updated At"}

type ReportService struct {
	reports ports.ResourceStore[domain.Report]
	issues  ports.ResourceStore[domain.Issue]
	logger  zerolog.Logger
	now     func() time.Time
}

func NewReportService(reports ports.ResourceStore[domain.Report], issues ports.ResourceStore[domain.Issue], logger zerolog.Logger) *ReportService {
	return &ReportService{reports: reports, issues: issues, logger: logger, now: time.Now}
}

func (s *ReportService) List(ctx context.Context) ([]domain.Report, error) {
	reports, err := s.reports.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

func (s *ReportService) Get(ctx context.Context, id string) (*domain.Report, error) {
	r, err := s.reports.Get(ctx, id)
	if err != nil {
		return nil, reportStoreErr(err)
	}
	return &r, nil
}

func (s *ReportService) Create(ctx context.Context, actor *domain.User, in ports.CreateReportInput) (*domain.Report, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, domain.Required("title")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, domain.Required("description")
	}

	now := s.now().UTC()
	report := domain.Report{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Type:        in.Type,
		Date:        in.Date.UTC(),
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if report.Type == "" {
		report.Type = domain.ReportMaintenance
	}
	if in.Date.IsZero() {
		report.Date = now
	}
	if !report.Type.Valid() {
		return nil, domain.Invalid("type", "must be maintenance, repair, inspection or other")
	}

	if err := s.reports.Insert(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	s.logger.Info().Str("report_id", report.ID).Str("user_id", actor.ID).Msg("report created")
	return &report, nil
}

func (s *ReportService) Update(ctx context.Context, id string, in ports.UpdateReportInput) (*domain.Report, error) {
	updated, err := s.reports.Update(ctx, id, func(r *domain.Report) error {
		if in.Title != nil {
			if strings.TrimSpace(*in.Title) == "" {
				return domain.Required("title")
			}
			r.Title = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			r.Description = *in.Description
		}
		if in.Type != nil {
			if !in.Type.Valid() {
				return domain.Invalid("type", "must be maintenance, repair, inspection or other")
			}
			r.Type = *in.Type
		}
		if in.Date != nil {
			r.Date = in.Date.UTC()
		}
		r.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, reportStoreErr(err)
	}
	return &updated, nil
}

func (s *ReportService) Delete(ctx context.Context, id string) error {
	return reportStoreErr(s.reports.Delete(ctx, id))
}

func (s *ReportService) Monthly(ctx context.Context) ([]domain.MonthlySummary, error) {
	issues, err := s.issues.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("monthly report: %w", err)
	}

	byMonth := make(map[string]*domain.MonthlySummary)
	for _, i := range issues {
		key := i.CreatedAt.UTC().Format("2006-01")
		m, ok := byMonth[key]
		if !ok {
			m = &domain.MonthlySummary{Month: key}
			byMonth[key] = m
		}
		m.Total++
		if i.Status == domain.IssuePending {
			m.Pending++
		} else {
			m.Solved++
		}
	}

	out := make([]domain.MonthlySummary, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Month > out[b].Month })
	return out, nil
}

func (s *ReportService) ExportIssues(ctx context.Context, w io.Writer, status domain.IssueStatus) (int, error) {
	if status != "" && !status.Valid() {
		return 0, domain.Invalid("status", "must be pending or solved")
	}
	issues, err := s.issues.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("export issues: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, err
	}
	n := 0
	for _, i := range issues {
		if status != "" && i.Status != status {
			continue
		}
		row := []string{
			i.ID,
			i.Title,
			i.Description,
			string(i.Category),
			string(i.Status),
			string(i.Priority),
			i.CreatedAt.UTC().Format(time.RFC3339),
			i.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return n, err
		}
		n++
	}
	cw.Flush()
	return n, cw.Error()
}

func reportStoreErr(err error) error {
	if errors.Is(err, domain.ErrRecordNotFound) {
		return domain.ErrReportNotFound
	}
	return err
}
