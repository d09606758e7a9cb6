package domain

import "time"

type ReportType string

const (
	ReportMaintenance ReportType = "maintenance"
	ReportRepair      ReportType = "repair"
	ReportInspection  ReportType = "inspection"
	ReportOther       ReportType = "other"
)

func (t ReportType) Valid() bool {
	switch t {
	case ReportMaintenance, ReportRepair, ReportInspection, ReportOther:
		return true
	}
	return false
}

// Report is a staff-authored maintenance record.
type Report struct {
	ID          string     `json:"id" bson:"_id"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description" bson:"description"`
	Type        ReportType `json:"type" bson:"type"`
	Date        time.Time  `json:"date" bson:"date"`
	CreatedBy   string     `json:"createdBy" bson:"created_by"`
	CreatedAt   time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updated_at"`
}

func (r Report) RecordID() string           { return r.ID }
func (r Report) RecordCreatedAt() time.Time { return r.CreatedAt }

// MonthlySummary aggregates the issues created in one calendar month.
type MonthlySummary struct {
	Month   string `json:"month"`
	Total   int    `json:"total"`
	Pending int    `json:"pending"`
	Solved  int    `json:"solved"`
}
