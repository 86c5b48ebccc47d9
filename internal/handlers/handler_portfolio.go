package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/sajhapunji/broker-backoffice/internal/core/ports/services"
	"github.com/sajhapunji/broker-backoffice/internal/dto"
	"github.com/sajhapunji/broker-backoffice/internal/middleware"
)

// portfolioHandler handles HTTP requests related to holdings. Portfolio
// reads live on the customer routes.
type portfolioHandler struct {
	portfolioService portssvc.PortfolioSvcFacade
}

// newPortfolioHandler creates a new portfolioHandler.
func newPortfolioHandler(ps portssvc.PortfolioSvcFacade) *portfolioHandler {
	return &portfolioHandler{
		portfolioService: ps,
	}
}

// registerPortfolioRoutes registers routes related to holdings.
func registerPortfolioRoutes(rg *gin.RouterGroup, ps portssvc.PortfolioSvcFacade) {
	h := newPortfolioHandler(ps)

	holdings := rg.Group("/holdings")
	{
		holdings.GET("/:id", h.getHolding)
		holdings.PUT("/:id", h.updateHolding)
		holdings.DELETE("/:id", h.deleteHolding)
	}
}

// getHolding godoc
// @Summary Get a holding by ID
// @Tags portfolios
// @Produce json
// @Param id path string true "Holding ID"
// @Success 200 {object} dto.HoldingResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Holding not found"
// @Failure 500 {object} map[string]string "Failed to retrieve holding"
// @Security BearerAuth
// @Router /holdings/{id} [get]
func (h *portfolioHandler) getHolding(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	holdingID := c.Param("id")

	holding, err := h.portfolioService.GetHoldingByID(c.Request.Context(), holdingID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve holding")
		return
	}

	c.JSON(http.StatusOK, dto.ToHoldingResponse(holding))
}

// updateHolding godoc
// @Summary Update a holding
// @Description Submits a holding correction. Maker updates are diverted into a pending modification request and return 202. Portfolio aggregates are recomputed on approval.
// @Tags portfolios
// @Accept json
// @Produce json
// @Param id path string true "Holding ID"
// @Param holding body dto.UpdateHoldingRequest true "Fields to update"
// @Success 200 {object} dto.HoldingResponse
// @Success 202 {object} dto.PendingChangeResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Holding not found"
// @Failure 500 {object} map[string]string "Failed to update holding"
// @Security BearerAuth
// @Router /holdings/{id} [put]
func (h *portfolioHandler) updateHolding(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	holdingID := c.Param("id")

	var req dto.UpdateHoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for updateHolding", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	holding, pending, err := h.portfolioService.UpdateHolding(c.Request.Context(), actor, holdingID, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update holding")
		return
	}

	if pending != nil {
		logger.Info("Holding update submitted for approval", slog.String("request_id", pending.RequestID))
		c.JSON(http.StatusAccepted, dto.PendingChangeResponse{
			Message: "Change submitted for approval",
			Request: dto.ToModificationRequestResponse(pending),
		})
		return
	}

	logger.Info("Holding updated", slog.String("holding_id", holding.HoldingID))
	c.JSON(http.StatusOK, dto.ToHoldingResponse(holding))
}

// deleteHolding godoc
// @Summary Delete a holding
// @Description Submits a holding deletion for approval
// @Tags portfolios
// @Produce json
// @Param id path string true "Holding ID"
// @Success 202 {object} dto.PendingChangeResponse
// @Success 204 "Holding deleted"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Holding not found"
// @Failure 500 {object} map[string]string "Failed to delete holding"
// @Security BearerAuth
// @Router /holdings/{id} [delete]
func (h *portfolioHandler) deleteHolding(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	holdingID := c.Param("id")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	pending, err := h.portfolioService.DeleteHolding(c.Request.Context(), actor, holdingID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to delete holding")
		return
	}

	if pending != nil {
		logger.Info("Holding deletion submitted for approval", slog.String("request_id", pending.RequestID))
		c.JSON(http.StatusAccepted, dto.PendingChangeResponse{
			Message: "Change submitted for approval",
			Request: dto.ToModificationRequestResponse(pending),
		})
		return
	}

	logger.Info("Holding deleted", slog.String("holding_id", holdingID))
	c.Status(http.StatusNoContent)
}
