package handlers

import (
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

// ipoHandler handles HTTP requests related to IPO applications.
type ipoHandler struct {
	ipoService portssvc.IPOSvcFacade
}

// newIPOHandler creates a new ipoHandler.
func newIPOHandler(is portssvc.IPOSvcFacade) *ipoHandler {
	return &ipoHandler{
		ipoService: is,
	}
}

// registerIPORoutes registers routes related to IPO applications.
func registerIPORoutes(rg *gin.RouterGroup, is portssvc.IPOSvcFacade) {
	h := newIPOHandler(is)

	apps := rg.Group("/ipo/applications")
	{
		apps.POST("", h.createApplication)
		apps.GET("/:id", h.getApplication)
		apps.GET("", h.listApplications)
		apps.POST("/:id/verify", h.verifyApplication)
		apps.POST("/:id/reject", h.rejectApplication)
		apps.POST("/:id/allot", h.allotApplication)
		apps.PUT("/:id", h.updateApplication)
		apps.DELETE("/:id", h.deleteApplication)
	}

	rg.POST("/ipo/allotments", h.bulkAllot)
}

// createApplication godoc
// @Summary Subscribe to an IPO
// @Description Creates a PENDING application and blocks the subscription amount on the funding account
// @Tags ipo
// @Accept json
// @Produce json
// @Param application body dto.CreateIPOApplicationRequest true "Application details"
// @Success 201 {object} dto.IPOApplicationResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Customer or account not found"
// @Failure 422 {object} map[string]string "Insufficient available balance"
// @Failure 500 {object} map[string]string "Failed to create application"
// @Security BearerAuth
// @Router /ipo/applications [post]
func (h *ipoHandler) createApplication(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateIPOApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createApplication", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	app, err := h.ipoService.CreateApplication(c.Request.Context(), actor, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create application")
		return
	}

	logger.Info("IPO application created", slog.String("application_id", app.ApplicationID), slog.String("symbol", app.Symbol))
	c.JSON(http.StatusCreated, dto.ToIPOApplicationResponse(app))
}

// getApplication godoc
// @Summary Get an IPO application by ID
// @Tags ipo
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} dto.IPOApplicationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Application not found"
// @Failure 500 {object} map[string]string "Failed to retrieve application"
// @Security BearerAuth
// @Router /ipo/applications/{id} [get]
func (h *ipoHandler) getApplication(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	applicationID := c.Param("id")

	app, err := h.ipoService.GetApplicationByID(c.Request.Context(), applicationID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve application")
		return
	}

	c.JSON(http.StatusOK, dto.ToIPOApplicationResponse(app))
}

// listApplications godoc
// @Summary List IPO applications by status
// @Tags ipo
// @Produce json
// @Param status query string true "Application status" Enums(PENDING, VERIFIED, REJECTED, ALLOTTED)
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {array} dto.IPOApplicationResponse
// @Failure 400 {object} map[string]string "Missing or invalid status"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list applications"
// @Security BearerAuth
// @Router /ipo/applications [get]
func (h *ipoHandler) listApplications(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	status := domain.IPOStatus(c.Query("status"))
	if status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status query parameter is required"})
		return
	}

	limit, offset := parseListParams(c)
	apps, err := h.ipoService.ListApplicationsByStatus(c.Request.Context(), status, limit, offset)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list applications")
		return
	}

	c.JSON(http.StatusOK, dto.ToIPOApplicationResponses(apps))
}

// verifyApplication godoc
// @Summary Verify an IPO application
// @Description Moves a PENDING application to VERIFIED after the funds block is confirmed
// @Tags ipo
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} dto.IPOApplicationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Application not found"
// @Failure 422 {object} map[string]string "Application is not pending"
// @Failure 500 {object} map[string]string "Failed to verify application"
// @Security BearerAuth
// @Router /ipo/applications/{id}/verify [post]
func (h *ipoHandler) verifyApplication(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	applicationID := c.Param("id")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	app, err := h.ipoService.VerifyApplication(c.Request.Context(), actor, applicationID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to verify application")
		return
	}

	logger.Info("IPO application verified", slog.String("application_id", app.ApplicationID))
	c.JSON(http.StatusOK, dto.ToIPOApplicationResponse(app))
}

// rejectApplication godoc
// @Summary Reject an IPO application
// @Description Rejects the application and releases its blocked funds
// @Tags ipo
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param body body dto.RejectApplicationRequest false "Rejection reason"
// @Success 200 {object} dto.IPOApplicationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Application not found"
// @Failure 422 {object} map[string]string "Application already resolved"
// @Failure 500 {object} map[string]string "Failed to reject application"
// @Security BearerAuth
// @Router /ipo/applications/{id}/reject [post]
func (h *ipoHandler) rejectApplication(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	applicationID := c.Param("id")

	// The body is optional. An empty body reads as no reason.
	var req dto.RejectApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.Warn("Failed to bind JSON for rejectApplication", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	app, err := h.ipoService.RejectApplication(c.Request.Context(), actor, applicationID, req.Reason)
	if err != nil {
		respondWithError(c, logger, err, "Failed to reject application")
		return
	}

	logger.Info("IPO application rejected", slog.String("application_id", app.ApplicationID))
	c.JSON(http.StatusOK, dto.ToIPOApplicationResponse(app))
}

// allotApplication godoc
// @Summary Record the allotment outcome of an application
// @Description Consumes or releases the blocked funds, moves shares into the customer portfolio, and optionally funds the allotment from an investor's capital pool
// @Tags ipo
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param outcome body dto.AllotApplicationRequest true "Draw outcome"
// @Success 200 {object} dto.IPOApplicationResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Application not found"
// @Failure 422 {object} map[string]string "Application is not verified or investor capital is insufficient"
// @Failure 500 {object} map[string]string "Failed to record allotment"
// @Security BearerAuth
// @Router /ipo/applications/{id}/allot [post]
func (h *ipoHandler) allotApplication(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	applicationID := c.Param("id")

	var req dto.AllotApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for allotApplication", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	app, err := h.ipoService.AllotApplication(c.Request.Context(), actor, applicationID, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to record allotment")
		return
	}

	logger.Info("IPO allotment recorded",
		slog.String("application_id", app.ApplicationID),
		slog.String("allotment_status", string(app.AllotmentStatus)))
	c.JSON(http.StatusOK, dto.ToIPOApplicationResponse(app))
}

// bulkAllot godoc
// @Summary Record allotment outcomes for many applications
// @Description Processes each application in its own transaction. One failure never aborts the batch.
// @Tags ipo
// @Accept json
// @Produce json
// @Param outcomes body dto.BulkAllotmentRequest true "Per-application outcomes"
// @Success 200 {object} dto.BulkResult
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to process allotments"
// @Security BearerAuth
// @Router /ipo/allotments [post]
func (h *ipoHandler) bulkAllot(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BulkAllotmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for bulkAllot", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.ipoService.BulkAllot(c.Request.Context(), actor, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to process allotments")
		return
	}

	logger.Info("Bulk allotment processed", slog.Int("succeeded", result.Succeeded), slog.Int("failed", result.Failed))
	c.JSON(http.StatusOK, result)
}

// updateApplication godoc
// @Summary Update an IPO application
// @Description Submits an application update. Maker updates are diverted into a pending modification request and return 202. Quantity changes reconcile the blocked amount on approval.
// @Tags ipo
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param application body dto.UpdateIPOApplicationRequest true "Fields to update"
// @Success 200 {object} dto.IPOApplicationResponse
// @Success 202 {object} dto.PendingChangeResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Application not found"
// @Failure 500 {object} map[string]string "Failed to update application"
// @Security BearerAuth
// @Router /ipo/applications/{id} [put]
func (h *ipoHandler) updateApplication(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	applicationID := c.Param("id")

	var req dto.UpdateIPOApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for updateApplication", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	app, pending, err := h.ipoService.UpdateApplication(c.Request.Context(), actor, applicationID, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update application")
		return
	}

	if pending != nil {
		logger.Info("Application update submitted for approval", slog.String("request_id", pending.RequestID))
		c.JSON(http.StatusAccepted, dto.PendingChangeResponse{
			Message: "Change submitted for approval",
			Request: dto.ToModificationRequestResponse(pending),
		})
		return
	}

	logger.Info("IPO application updated", slog.String("application_id", app.ApplicationID))
	c.JSON(http.StatusOK, dto.ToIPOApplicationResponse(app))
}

// deleteApplication godoc
// @Summary Delete an IPO application
// @Description Submits an application deletion for approval. Blocked funds are released when the deletion is approved.
// @Tags ipo
// @Produce json
// @Param id path string true "Application ID"
// @Success 202 {object} dto.PendingChangeResponse
// @Success 204 "Application deleted"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Application not found"
// @Failure 422 {object} map[string]string "Application already resolved"
// @Failure 500 {object} map[string]string "Failed to delete application"
// @Security BearerAuth
// @Router /ipo/applications/{id} [delete]
func (h *ipoHandler) deleteApplication(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	applicationID := c.Param("id")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	pending, err := h.ipoService.DeleteApplication(c.Request.Context(), actor, applicationID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to delete application")
		return
	}

	if pending != nil {
		logger.Info("Application deletion submitted for approval", slog.String("request_id", pending.RequestID))
		c.JSON(http.StatusAccepted, dto.PendingChangeResponse{
			Message: "Change submitted for approval",
			Request: dto.ToModificationRequestResponse(pending),
		})
		return
	}

	logger.Info("IPO application deleted", slog.String("application_id", applicationID))
	c.Status(http.StatusNoContent)
}
