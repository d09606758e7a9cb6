package domain

import "time"

type IssueStatus string

const (
	IssuePending IssueStatus = "pending"
	IssueSolved  IssueStatus = "solved"
)

func (s IssueStatus) Valid() bool {
	return s == IssuePending || s == IssueSolved
}

type IssuePriority string

const (
	PriorityLow    IssuePriority = "low"
	PriorityMedium IssuePriority = "medium"
	PriorityHigh   IssuePriority = "high"
)

func (p IssuePriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type IssueCategory string

const (
	CategoryPlumbing      IssueCategory = "Plumbing"
	CategoryElectric      IssueCategory = "Electric"
	CategoryAC            IssueCategory = "A/C"
	CategoryIT            IssueCategory = "IT"
	CategoryMachineRepair IssueCategory = "Machine Repair"
)

func (c IssueCategory) Valid() bool {
	switch c {
	case CategoryPlumbing, CategoryElectric, CategoryAC, CategoryIT, CategoryMachineRepair:
		return true
	}
	return false
}

// Issue is a maintenance or repair request.
type Issue struct {
	ID          string        `json:"id" bson:"_id"`
	Title       string        `json:"title" bson:"title"`
	Description string        `json:"description" bson:"description"`
	Category    IssueCategory `json:"category" bson:"category"`
	Status      IssueStatus   `json:"status" bson:"status"`
	Priority    IssuePriority `json:"priority" bson:"priority"`
	AssignedTo  string        `json:"assignedTo,omitempty" bson:"assigned_to,omitempty"`
	CreatedBy   string        `json:"createdBy" bson:"created_by"`
	CreatedAt   time.Time     `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" bson:"updated_at"`
}

func (i Issue) RecordID() string           { return i.ID }
func (i Issue) RecordCreatedAt() time.Time { return i.CreatedAt }

// IssueFilter narrows an issue listing. Empty fields match everything.
type IssueFilter struct {
	Status     IssueStatus
	Priority   IssuePriority
	Category   IssueCategory
	AssignedTo string
}

// Match reports whether i satisfies every set field of f.
func (f IssueFilter) Match(i Issue) bool {
	if f.Status != "" && i.Status != f.Status {
		return false
	}
	if f.Priority != "" && i.Priority != f.Priority {
		return false
	}
	if f.Category != "" && i.Category != f.Category {
		return false
	}
	if f.AssignedTo != "" && i.AssignedTo != f.AssignedTo {
		return false
	}
	return true
}
