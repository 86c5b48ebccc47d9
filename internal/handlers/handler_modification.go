package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	portssvc "github.com/sajhapunji/broker-backoffice/internal/core/ports/services"
	"github.com/sajhapunji/broker-backoffice/internal/dto"
	"github.com/sajhapunji/broker-backoffice/internal/middleware"
)

// modificationHandler handles HTTP requests related to the maker-checker
// approval queue.
type modificationHandler struct {
	approvalService portssvc.ApprovalSvcFacade
}

// newModificationHandler creates a new modificationHandler.
func newModificationHandler(as portssvc.ApprovalSvcFacade) *modificationHandler {
	return &modificationHandler{
		approvalService: as,
	}
}

// registerModificationRoutes registers routes related to modification requests.
func registerModificationRoutes(rg *gin.RouterGroup, as portssvc.ApprovalSvcFacade) {
	h := newModificationHandler(as)

	requests := rg.Group("/modification-requests")
	{
		requests.GET("/:id", h.getRequest)
		requests.GET("", h.listRequests)
		requests.POST("/:id/approve", h.approveRequest)
		requests.POST("/:id/reject", h.rejectRequest)
	}
}

// getRequest godoc
// @Summary Get a modification request by ID
// @Tags approvals
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} dto.ModificationRequestResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Request not found"
// @Failure 500 {object} map[string]string "Failed to retrieve request"
// @Security BearerAuth
// @Router /modification-requests/{id} [get]
func (h *modificationHandler) getRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requestID := c.Param("id")

	request, err := h.approvalService.GetRequestByID(c.Request.Context(), requestID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve request")
		return
	}

	c.JSON(http.StatusOK, dto.ToModificationRequestResponse(request))
}

// listRequests godoc
// @Summary List modification requests by status
// @Description Lists requests in arrival order so checkers work the queue oldest first
// @Tags approvals
// @Produce json
// @Param status query string false "Request status" Enums(PENDING, APPROVED, REJECTED) default(PENDING)
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {array} dto.ModificationRequestResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list requests"
// @Security BearerAuth
// @Router /modification-requests [get]
func (h *modificationHandler) listRequests(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	status := domain.RequestStatus(c.DefaultQuery("status", string(domain.RequestPending)))
	limit, offset := parseListParams(c)

	requests, err := h.approvalService.ListRequestsByStatus(c.Request.Context(), status, limit, offset)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list requests")
		return
	}

	c.JSON(http.StatusOK, dto.ToModificationRequestResponses(requests))
}

// approveRequest godoc
// @Summary Approve a pending modification request
// @Description Applies the staged change and marks the request APPROVED. The requester cannot approve their own request.
// @Tags approvals
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param body body dto.ResolveModificationRequest false "Review notes"
// @Success 200 {object} dto.ModificationRequestResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Requester cannot resolve their own request"
// @Failure 404 {object} map[string]string "Request not found"
// @Failure 409 {object} map[string]string "Request already resolved"
// @Failure 500 {object} map[string]string "Failed to approve request"
// @Security BearerAuth
// @Router /modification-requests/{id}/approve [post]
func (h *modificationHandler) approveRequest(c *gin.Context) {
	h.resolveRequest(c, h.approvalService.ApproveRequest, "Failed to approve request")
}

// rejectRequest godoc
// @Summary Reject a pending modification request
// @Description Discards the staged change and marks the request REJECTED
// @Tags approvals
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param body body dto.ResolveModificationRequest false "Review notes"
// @Success 200 {object} dto.ModificationRequestResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Requester cannot resolve their own request"
// @Failure 404 {object} map[string]string "Request not found"
// @Failure 409 {object} map[string]string "Request already resolved"
// @Failure 500 {object} map[string]string "Failed to reject request"
// @Security BearerAuth
// @Router /modification-requests/{id}/reject [post]
func (h *modificationHandler) rejectRequest(c *gin.Context) {
	h.resolveRequest(c, h.approvalService.RejectRequest, "Failed to reject request")
}

// resolveFunc is the shape shared by ApproveRequest and RejectRequest.
type resolveFunc func(ctx context.Context, actor domain.Actor, requestID string, notes string) (*domain.ModificationRequest, error)

func (h *modificationHandler) resolveRequest(c *gin.Context, resolve resolveFunc, fallbackMsg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requestID := c.Param("id")

	// The body is optional. An empty body reads as no review notes.
	var req dto.ResolveModificationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.Warn("Failed to bind JSON for resolveRequest", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	request, err := resolve(c.Request.Context(), actor, requestID, req.ReviewNotes)
	if err != nil {
		respondWithError(c, logger, err, fallbackMsg)
		return
	}

	logger.Info("Modification request resolved",
		slog.String("request_id", request.RequestID),
		slog.String("status", string(request.Status)))
	c.JSON(http.StatusOK, dto.ToModificationRequestResponse(request))
}
