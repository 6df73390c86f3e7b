package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	eventapp "github.com/stitchline/backend/internal/application/event"
	"github.com/stitchline/backend/internal/domain/report"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stitchline/backend/internal/interfaces/http/middleware"
)

// AnalyticsService builds the back office reports
type AnalyticsService interface {
	Dashboard(ctx context.Context, p shared.Principal) (*report.Dashboard, error)
	ProfitAnalysis(ctx context.Context, p shared.Principal) (*report.ProfitAnalysis, error)
	Stats(ctx context.Context, p shared.Principal) (*report.Stats, error)
}

// OutboxStats reports on undelivered order events
type OutboxStats interface {
	GetStats(ctx context.Context, p shared.Principal) (*eventapp.OutboxStatsResponse, error)
}

// ReportHandler handles analytics endpoints
type ReportHandler struct {
	BaseHandler
	analytics AnalyticsService
	outbox    OutboxStats
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(base BaseHandler, analytics AnalyticsService, outbox OutboxStats) *ReportHandler {
	return &ReportHandler{BaseHandler: base, analytics: analytics, outbox: outbox}
}

// Dashboard godoc
// @Summary      Sales and stock dashboard
// @Description  Sales figures count delivered orders only
// @Tags         analytics
// @Produce      json
// @Success      200 {object} dto.Response{data=report.Dashboard}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /analytics/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	d, err := h.analytics.Dashboard(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

// Profit godoc
// @Summary      Profit analysis
// @Tags         analytics
// @Produce      json
// @Success      200 {object} dto.Response{data=report.ProfitAnalysis}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /analytics/profit [get]
func (h *ReportHandler) Profit(c *gin.Context) {
	p, err := h.analytics.ProfitAnalysis(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Stats godoc
// @Summary      Admin landing page totals
// @Tags         analytics
// @Produce      json
// @Success      200 {object} dto.Response{data=report.Stats}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/stats [get]
func (h *ReportHandler) Stats(c *gin.Context) {
	s, err := h.analytics.Stats(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, s)
}

// OutboxStats godoc
// @Summary      Order event outbox backlog
// @Tags         analytics
// @Produce      json
// @Success      200 {object} dto.Response{data=eventapp.OutboxStatsResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/outbox/stats [get]
func (h *ReportHandler) OutboxStats(c *gin.Context) {
	s, err := h.outbox.GetStats(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, s)
}
