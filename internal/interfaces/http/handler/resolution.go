package handler

import (
	"github.com/gin-gonic/gin"

	resolutionapp "github.com/salesops/backend/internal/application/resolution"
	"github.com/salesops/backend/internal/interfaces/http/middleware"
)

// ResolutionHandler exposes the identity-resolution and channel-analysis
// operations.
type ResolutionHandler struct {
	BaseHandler
	linkService     *resolutionapp.LinkService
	switcherService *resolutionapp.SwitcherService
	reportService   *resolutionapp.ChannelReportService
	rosterService   *resolutionapp.RosterService
}

// NewResolutionHandler creates a new ResolutionHandler
func NewResolutionHandler(
	linkService *resolutionapp.LinkService,
	switcherService *resolutionapp.SwitcherService,
	reportService *resolutionapp.ChannelReportService,
	rosterService *resolutionapp.RosterService,
) *ResolutionHandler {
	return &ResolutionHandler{
		linkService:     linkService,
		switcherService: switcherService,
		reportService:   reportService,
		rosterService:   rosterService,
	}
}

// RegisterRoutes registers resolution routes
func (h *ResolutionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/resolution")
	{
		group.POST("/link", h.Link)
		group.GET("/switchers", h.Switchers)
		group.GET("/channel-report", h.ChannelReport)
		group.POST("/roster/extract", h.ExtractRoster)
	}
}

// Link runs one identity-linking pass over the CRM and ERP directories.
// Action "match" reports matches; "apply" additionally persists them.
func (h *ResolutionHandler) Link(c *gin.Context) {
	var req resolutionapp.LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	report, err := h.linkService.Run(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// Switchers runs the roster-vs-direct switcher analysis.
func (h *ResolutionHandler) Switchers(c *gin.Context) {
	var req resolutionapp.SwitcherRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	report, err := h.switcherService.Run(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// ChannelReport builds the comprehensive per-channel report over the full
// order history.
func (h *ResolutionHandler) ChannelReport(c *gin.Context) {
	var req resolutionapp.ChannelReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	report, err := h.reportService.Run(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// ExtractRoster rebuilds the marketplace roster from the order history.
func (h *ResolutionHandler) ExtractRoster(c *gin.Context) {
	var req resolutionapp.RosterRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.HandleValidationError(c, err)
			return
		}
	}

	report, err := h.rosterService.Run(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}
