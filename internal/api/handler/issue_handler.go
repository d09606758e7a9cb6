package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mrt-platform/maintenance-tracker/internal/api/metrics"
	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
	"github.com/mrt-platform/maintenance-tracker/internal/core/ports"
)

// IssueHandler handles HTTP requests for issue operations.
type IssueHandler struct {
	service ports.IssueService
}

func NewIssueHandler(service ports.IssueService) *IssueHandler {
	return &IssueHandler{service: service}
}

// List handles GET /api/issues.
//
// @Summary      List issues
// @Tags         issues
// @Produce      json
// @Security     BearerAuth
// @Param        status      query     string  false  "pending or solved"
// @Param        priority    query     string  false  "low, medium or high"
// @Param        category    query     string  false  "Issue category"
// @Param        assignedTo  query     string  false  "Assignee user id"
// @Success      200         {array}   domain.Issue
// @Failure      401         {object}  errorResponse
// @Failure      403         {object}  errorResponse
// @Router       /api/issues [get]
func (h *IssueHandler) List(c echo.Context) error {
	issues, err := h.service.List(c.Request().Context(), domain.IssueFilter{
		Status:     domain.IssueStatus(c.QueryParam("status")),
		Priority:   domain.IssuePriority(c.QueryParam("priority")),
		Category:   domain.IssueCategory(c.QueryParam("category")),
		AssignedTo: c.QueryParam("assignedTo"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, issues)
}

// Get handles GET /api/issues/:id.
//
// @Summary      Get an issue
// @Tags         issues
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Issue id"
// @Success      200  {object}  domain.Issue
// @Failure      404  {object}  errorResponse
// @Router       /api/issues/{id} [get]
func (h *IssueHandler) Get(c echo.Context) error {
	issue, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, issue)
}

// Create handles POST /api/issues.
//
// @Summary      Create an issue
// @Tags         issues
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createIssueRequest  true  "Issue details"
// @Success      201   {object}  domain.Issue
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/issues [post]
func (h *IssueHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req createIssueRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	issue, err := h.service.Create(c.Request().Context(), actor, ports.CreateIssueInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    domain.IssueCategory(req.Category),
		Status:      domain.IssueStatus(req.Status),
		Priority:    domain.IssuePriority(req.Priority),
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		return err
	}

	metrics.IssuesCreatedTotal.WithLabelValues(string(issue.Priority)).Inc()
	return c.JSON(http.StatusCreated, issue)
}

// Update handles PUT /api/issues/:id.
//
// @Summary      Update an issue
// @Tags         issues
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Issue id"
// @Param        body  body      updateIssueRequest  true  "Fields to change"
// @Success      200   {object}  domain.Issue
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/issues/{id} [put]
func (h *IssueHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req updateIssueRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := ports.UpdateIssueInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
	}
	if req.Category != nil {
		v := domain.IssueCategory(*req.Category)
		in.Category = &v
	}
	if req.Status != nil {
		v := domain.IssueStatus(*req.Status)
		in.Status = &v
	}
	if req.Priority != nil {
		v := domain.IssuePriority(*req.Priority)
		in.Priority = &v
	}

	issue, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, issue)
}

// Assign handles PUT /api/issues/:id/assign. An empty assignee unassigns.
//
// @Summary      Assign an issue
// @Tags         issues
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Issue id"
// @Param        body  body      assignIssueRequest  true  "Assignee"
// @Success      200   {object}  domain.Issue
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/issues/{id}/assign [put]
func (h *IssueHandler) Assign(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req assignIssueRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	issue, err := h.service.Assign(c.Request().Context(), actor, c.Param("id"), req.AssignedTo)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, issue)
}

// Delete handles DELETE /api/issues/:id.
//
// @Summary      Delete an issue
// @Tags         issues
// @Security     BearerAuth
// @Param        id   path  string  true  "Issue id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/issues/{id} [delete]
func (h *IssueHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
