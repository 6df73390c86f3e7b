package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	servicedeskapp "github.com/stitchline/backend/internal/application/servicedesk"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stitchline/backend/internal/interfaces/http/middleware"
)

// ServiceDesk handles repair tickets
type ServiceDesk interface {
	Submit(ctx context.Context, p shared.Principal, req servicedeskapp.SubmitRequest) (*servicedeskapp.ServiceRequestResponse, error)
	List(ctx context.Context, p shared.Principal, f servicedeskapp.ListFilter) ([]servicedeskapp.ServiceRequestResponse, error)
	ListMine(ctx context.Context, p shared.Principal) ([]servicedeskapp.ServiceRequestResponse, error)
	UpdateStatus(ctx context.Context, p shared.Principal, id uuid.UUID, req servicedeskapp.UpdateStatusRequest) (*servicedeskapp.ServiceRequestResponse, error)
}

// ServiceDeskHandler handles the service request endpoints
type ServiceDeskHandler struct {
	BaseHandler
	desk ServiceDesk
}

// NewServiceDeskHandler creates a new ServiceDeskHandler
func NewServiceDeskHandler(base BaseHandler, desk ServiceDesk) *ServiceDeskHandler {
	return &ServiceDeskHandler{BaseHandler: base, desk: desk}
}

// Submit godoc
// @Summary      Submit a repair request
// @Description  Anonymous submissions are accepted. A logged in caller is linked to the ticket.
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        request body servicedeskapp.SubmitRequest true "Ticket"
// @Success      201 {object} dto.Response{data=servicedeskapp.ServiceRequestResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /services [post]
func (h *ServiceDeskHandler) Submit(c *gin.Context) {
	var req servicedeskapp.SubmitRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ticket, err := h.desk.Submit(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ticket)
}

// List godoc
// @Summary      List repair requests
// @Tags         services
// @Produce      json
// @Param        status query string false "Status" Enums(Pending, Processing, Completed)
// @Success      200 {object} dto.Response{data=[]servicedeskapp.ServiceRequestResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /services [get]
func (h *ServiceDeskHandler) List(c *gin.Context) {
	var filter servicedeskapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	tickets, err := h.desk.List(c.Request.Context(), middleware.GetPrincipal(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tickets)
}

// ListMine godoc
// @Summary      List the caller's repair requests
// @Tags         services
// @Produce      json
// @Success      200 {object} dto.Response{data=[]servicedeskapp.ServiceRequestResponse}
// @Security     BearerAuth
// @Router       /services/mine [get]
func (h *ServiceDeskHandler) ListMine(c *gin.Context) {
	tickets, err := h.desk.ListMine(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tickets)
}

// UpdateStatus godoc
// @Summary      Move a repair request along
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        id      path string                             true "Service request ID" format(uuid)
// @Param        request body servicedeskapp.UpdateStatusRequest true "Status and notes"
// @Success      200 {object} dto.Response{data=servicedeskapp.ServiceRequestResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /services/{id}/status [put]
func (h *ServiceDeskHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req servicedeskapp.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ticket, err := h.desk.UpdateStatus(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ticket)
}
