package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	companyapp "github.com/stitchline/backend/internal/application/company"
	"github.com/stitchline/backend/internal/interfaces/http/dto"
)

// healthCheckTimeout bounds each dependency check
const healthCheckTimeout = 2 * time.Second

// Pinger is a dependency pinged by the health check
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CompanyService serves the public company profile
type CompanyService interface {
	Info(ctx context.Context) (*companyapp.InfoResponse, error)
}

// SystemHandler serves the health check and the company profile
type SystemHandler struct {
	BaseHandler
	company   CompanyService
	db        Pinger
	version   string
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. db may be nil.
func NewSystemHandler(base BaseHandler, company CompanyService, db Pinger, version string) *SystemHandler {
	return &SystemHandler{
		BaseHandler: base,
		company:     company,
		db:          db,
		version:     version,
		startTime:   time.Now(),
	}
}

// HealthResponse is the health check payload
type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Database  string `json:"database" example:"ok"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// Health godoc
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=HealthResponse}
// @Failure      503 {object} dto.Response{data=HealthResponse}
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Database:  "ok",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	status := http.StatusOK
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, dto.NewSuccessResponse(resp))
}

// Company godoc
// @Summary      Company profile
// @Tags         company
// @Produce      json
// @Success      200 {object} dto.Response{data=companyapp.InfoResponse}
// @Router       /company [get]
func (h *SystemHandler) Company(c *gin.Context) {
	info, err := h.company.Info(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, info)
}
