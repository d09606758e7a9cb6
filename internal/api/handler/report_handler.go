package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mrt-platform/maintenance-tracker/internal/api/metrics"
	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
	"github.com/mrt-platform/maintenance-tracker/internal/core/ports"
)

// ReportHandler handles HTTP requests for maintenance reports and exports.
type ReportHandler struct {
	service ports.ReportService
	now     func() time.Time
}

func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{service: service, now: time.Now}
}

// List handles GET /api/reports.
//
// @Summary      List reports
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Report
// @Failure      403  {object}  errorResponse
// @Router       /api/reports [get]
func (h *ReportHandler) List(c echo.Context) error {
	reports, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reports)
}

// Get handles GET /api/reports/:id.
//
// @Summary      Get a report
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Report id"
// @Success      200  {object}  domain.Report
// @Failure      404  {object}  errorResponse
// @Router       /api/reports/{id} [get]
func (h *ReportHandler) Get(c echo.Context) error {
	report, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// Create handles POST /api/reports.
//
// @Summary      Create a report
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createReportRequest  true  "Report details"
// @Success      201   {object}  domain.Report
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/reports [post]
func (h *ReportHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req createReportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return err
	}

	report, err := h.service.Create(c.Request().Context(), actor, ports.CreateReportInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        domain.ReportType(req.Type),
		Date:        date,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, report)
}

// Update handles PUT /api/reports/:id.
//
// @Summary      Update a report
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Report id"
// @Param        body  body      updateReportRequest  true  "Fields to change"
// @Success      200   {object}  domain.Report
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/reports/{id} [put]
func (h *ReportHandler) Update(c echo.Context) error {
	var req updateReportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := ports.UpdateReportInput{Title: req.Title, Description: req.Description}
	if req.Type != nil {
		t := domain.ReportType(*req.Type)
		in.Type = &t
	}
	if req.Date != nil {
		date, err := parseDate("date", *req.Date)
		if err != nil {
			return err
		}
		if date.IsZero() {
			return domain.Required("date")
		}
		in.Date = &date
	}

	report, err := h.service.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// Delete handles DELETE /api/reports/:id.
//
// @Summary      Delete a report
// @Tags         reports
// @Security     BearerAuth
// @Param        id   path  string  true  "Report id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/reports/{id} [delete]
func (h *ReportHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Monthly handles GET /api/reports/monthly.
//
// @Summary      Monthly issue summary
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.MonthlySummary
// @Failure      403  {object}  errorResponse
// @Router       /api/reports/monthly [get]
func (h *ReportHandler) Monthly(c echo.Context) error {
	summary, err := h.service.Monthly(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// Export handles GET /api/reports/export and streams issues as CSV.
//
// @Summary      Export issues as CSV
// @Tags         reports
// @Produce      text/csv
// @Security     BearerAuth
// @Param        status  query     string  false  "pending or solved; all issues when omitted"
// @Success      200     {file}    file
// @Failure      400     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /api/reports/export [get]
func (h *ReportHandler) Export(c echo.Context) error {
	status := domain.IssueStatus(c.QueryParam("status"))

	var buf bytes.Buffer
	rows, err := h.service.ExportIssues(c.Request().Context(), &buf, status)
	if err != nil {
		return err
	}
	metrics.ReportsExportedTotal.Inc()
	metrics.ExportedRows.Observe(float64(rows))

	scope := string(status)
	if scope == "" {
		scope = "all"
	}
	filename := fmt.Sprintf("issues-%s-%s.csv", scope, h.now().UTC().Format(time.DateOnly))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
