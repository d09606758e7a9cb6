package ports

import (
	"context"
	"io"
	"time"

	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
)

type CreateReportInput struct {
	Title       string
	Description string
	Type        domain.ReportType
	Date        time.Time
}

type UpdateReportInput struct {
	Title       *string
	Description *string
	Type        *domain.ReportType
	Date        *time.Time
}

type ReportService interface {
	List(ctx context.Context) ([]domain.Report, error)
	Get(ctx context.Context, id string) (*domain.Report, error)
	Create(ctx context.Context, actor *domain.User, in CreateReportInput) (*domain.Report, error)
	Update(ctx context.Context, id string, in UpdateReportInput) (*domain.Report, error)
	Delete(ctx context.Context, id string) error
	// Monthly aggregates issues by creation month, newest month first.
	Monthly(ctx context.Context) ([]domain.MonthlySummary, error)
	// ExportIssues writes the issues matching status (all when empty) as CSV.
	ExportIssues(ctx context.Context, w io.Writer, status domain.IssueStatus) (int, error)
}
