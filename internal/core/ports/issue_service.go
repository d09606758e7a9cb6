package ports

import (
	"context"

	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
)

// CreateIssueInput carries the fields of a new issue. Empty Status and
// Priority fall back to pending and medium.
type CreateIssueInput struct {
	Title       string
	Description string
	Category    domain.IssueCategory
	Status      domain.IssueStatus
	Priority    domain.IssuePriority
	AssignedTo  string
}

// UpdateIssueInput is a partial update. Nil fields are left unchanged.
type UpdateIssueInput struct {
	Title       *string
	Description *string
	Category    *domain.IssueCategory
	Status      *domain.IssueStatus
	Priority    *domain.IssuePriority
	AssignedTo  *string
}

// IssueService holds the issue use cases. The actor is the authenticated
// user on whose behalf the call runs; callers must have passed the guard.
type IssueService interface {
	List(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error)
	Get(ctx context.Context, id string) (*domain.Issue, error)
	Create(ctx context.Context, actor *domain.User, in CreateIssueInput) (*domain.Issue, error)
	Update(ctx context.Context, actor *domain.User, id string, in UpdateIssueInput) (*domain.Issue, error)
	Assign(ctx context.Context, actor *domain.User, id, assignee string) (*domain.Issue, error)
	Delete(ctx context.Context, id string) error
}
