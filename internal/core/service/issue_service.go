package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
	"github.com/mrt-platform/maintenance-tracker/internal/core/ports"
)

const defaultIssueCategory = domain.CategoryPlumbing

type IssueService struct {
	issues ports.ResourceStore[domain.Issue]
	users  ports.CredentialStore
	logger zerolog.Logger
	now    func() time.Time
}

func NewIssueService(issues ports.ResourceStore[domain.Issue], users ports.CredentialStore, logger zerolog.Logger) *IssueService {
	return &IssueService{issues: issues, users: users, logger: logger, now: time.Now}
}

func (s *IssueService) List(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error) {
	all, err := s.issues.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	out := make([]domain.Issue, 0, len(all))
	for _, i := range all {
		if filter.Match(i) {
			out = append(out, i)
		}
	}
	return out, nil
}

func (s *IssueService) Get(ctx context.Context, id string) (*domain.Issue, error) {
	issue, err := s.issues.Get(ctx, id)
	if err != nil {
		return nil, issueStoreErr(err)
	}
	return &issue, nil
}

func (s *IssueService) Create(ctx context.Context, actor *domain.User, in ports.CreateIssueInput) (*domain.Issue, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, domain.Required("title")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, domain.Required("description")
	}

	now := s.now().UTC()
	issue := domain.Issue{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Category:    in.Category,
		Status:      in.Status,
		Priority:    in.Priority,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if issue.Category == "" {
		issue.Category = defaultIssueCategory
	}
	if issue.Status == "" {
		issue.Status = domain.IssuePending
	}
	if issue.Priority == "" {
		issue.Priority = domain.PriorityMedium
	}
	if err := validateIssue(issue); err != nil {
		return nil, err
	}

	if in.AssignedTo != "" {
		if err := s.checkAssignment(ctx, actor, in.AssignedTo); err != nil {
			return nil, err
		}
		issue.AssignedTo = in.AssignedTo
	}

	if err := s.issues.Insert(ctx, issue); err != nil {
		s.logger.Error().Err(err).Msg("failed to create issue")
		return nil, fmt.Errorf("create issue: %w", err)
	}

	s.logger.Info().Str("issue_id", issue.ID).Str("user_id", actor.ID).Msg("issue created")
	return &issue, nil
}

func (s *IssueService) Update(ctx context.Context, actor *domain.User, id string, in ports.UpdateIssueInput) (*domain.Issue, error) {
	if in.AssignedTo != nil && *in.AssignedTo != "" {
		if err := s.checkAssignee(ctx, *in.AssignedTo); err != nil {
			return nil, err
		}
	}

	updated, err := s.issues.Update(ctx, id, func(issue *domain.Issue) error {
		if in.AssignedTo != nil && *in.AssignedTo != issue.AssignedTo {
			if !domain.Authorize(actor.Role, domain.CanAssignIssues) {
				return fmt.Errorf("%w: role %s lacks %s", domain.ErrForbidden, actor.Role, domain.CanAssignIssues)
			}
			issue.AssignedTo = *in.AssignedTo
		}
		if in.Title != nil {
			issue.Title = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			issue.Description = *in.Description
		}
		if in.Category != nil {
			issue.Category = *in.Category
		}
		if in.Status != nil {
			issue.Status = *in.Status
		}
		if in.Priority != nil {
			issue.Priority = *in.Priority
		}
		if err := validateIssue(*issue); err != nil {
			return err
		}
		issue.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, issueStoreErr(err)
	}

	s.logger.Info().Str("issue_id", id).Str("user_id", actor.ID).Msg("issue updated")
	return &updated, nil
}

// Assign sets the assignee of an issue. An empty assignee clears it.
func (s *IssueService) Assign(ctx context.Context, actor *domain.User, id, assignee string) (*domain.Issue, error) {
	if assignee != "" {
		if err := s.checkAssignment(ctx, actor, assignee); err != nil {
			return nil, err
		}
	}

	updated, err := s.issues.Update(ctx, id, func(issue *domain.Issue) error {
		issue.AssignedTo = assignee
		issue.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, issueStoreErr(err)
	}

	s.logger.Info().Str("issue_id", id).Str("assigned_to", assignee).Msg("issue assigned")
	return &updated, nil
}

func (s *IssueService) Delete(ctx context.Context, id string) error {
	if err := s.issues.Delete(ctx, id); err != nil {
		return issueStoreErr(err)
	}
	s.logger.Info().Str("issue_id", id).Msg("issue deleted")
	return nil
}

// checkAssignment requires the assign capability and an existing assignee.
func (s *IssueService) checkAssignment(ctx context.Context, actor *domain.User, assignee string) error {
	if !domain.Authorize(actor.Role, domain.CanAssignIssues) {
		return fmt.Errorf("%w: role %s lacks %s", domain.ErrForbidden, actor.Role, domain.CanAssignIssues)
	}
	return s.checkAssignee(ctx, assignee)
}

func (s *IssueService) checkAssignee(ctx context.Context, assignee string) error {
	if _, err := s.users.FindByID(ctx, assignee); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Invalid("assignedTo", "does not reference an existing user")
		}
		return err
	}
	return nil
}

func validateIssue(i domain.Issue) error {
	switch {
	case i.Title == "":
		return domain.Required("title")
	case !i.Category.Valid():
		return domain.Invalid("category", "is not a known category")
	case !i.Status.Valid():
		return domain.Invalid("status", "must be pending or solved")
	case !i.Priority.Valid():
		return domain.Invalid("priority", "must be low, medium or high")
	}
	return nil
}

func issueStoreErr(err error) error {
	if errors.Is(err, domain.ErrRecordNotFound) {
		return domain.ErrIssueNotFound
	}
	return err
}
