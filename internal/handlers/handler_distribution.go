package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/sajhapunji/broker-backoffice/internal/core/ports/services"
	"github.com/sajhapunji/broker-backoffice/internal/dto"
	"github.com/sajhapunji/broker-backoffice/internal/middleware"
)

// distributionHandler handles HTTP requests related to profit distributions.
type distributionHandler struct {
	distributionService portssvc.DistributionSvcFacade
}

// newDistributionHandler creates a new distributionHandler.
func newDistributionHandler(ds portssvc.DistributionSvcFacade) *distributionHandler {
	return &distributionHandler{
		distributionService: ds,
	}
}

// registerDistributionRoutes registers routes related to profit distributions.
func registerDistributionRoutes(rg *gin.RouterGroup, ds portssvc.DistributionSvcFacade) {
	h := newDistributionHandler(ds)

	distributions := rg.Group("/distributions")
	{
		distributions.POST("", h.distributeProfit)
		distributions.GET("/:id", h.getDistribution)
	}

	rg.GET("/investments/:id/distributions", h.listDistributions)
}

// distributeProfit godoc
// @Summary Settle a share sale
// @Description Splits the sale proceeds between the investor and the customer under the selected fee policy and posts every ledger leg in one transaction
// @Tags distributions
// @Accept json
// @Produce json
// @Param distribution body dto.DistributeProfitRequest true "Sale details"
// @Success 201 {object} dto.DistributionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Investment not found"
// @Failure 422 {object} map[string]string "Investment is not active or shares exceed holding"
// @Failure 500 {object} map[string]string "Failed to distribute profit"
// @Security BearerAuth
// @Router /distributions [post]
func (h *distributionHandler) distributeProfit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DistributeProfitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for distributeProfit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	distribution, err := h.distributionService.DistributeProfit(c.Request.Context(), actor, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to distribute profit")
		return
	}

	logger.Info("Profit distributed",
		slog.String("distribution_id", distribution.DistributionID),
		slog.String("investment_id", distribution.InvestmentID))
	c.JSON(http.StatusCreated, dto.ToDistributionResponse(distribution))
}

// getDistribution godoc
// @Summary Get a distribution by ID
// @Tags distributions
// @Produce json
// @Param id path string true "Distribution ID"
// @Success 200 {object} dto.DistributionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Distribution not found"
// @Failure 500 {object} map[string]string "Failed to retrieve distribution"
// @Security BearerAuth
// @Router /distributions/{id} [get]
func (h *distributionHandler) getDistribution(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	distributionID := c.Param("id")

	distribution, err := h.distributionService.GetDistributionByID(c.Request.Context(), distributionID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve distribution")
		return
	}

	c.JSON(http.StatusOK, dto.ToDistributionResponse(distribution))
}

// listDistributions godoc
// @Summary List distributions for an investment
// @Tags distributions
// @Produce json
// @Param id path string true "Investment ID"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {array} dto.DistributionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list distributions"
// @Security BearerAuth
// @Router /investments/{id}/distributions [get]
func (h *distributionHandler) listDistributions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	investmentID := c.Param("id")
	limit, offset := parseListParams(c)

	distributions, err := h.distributionService.ListDistributionsByInvestment(c.Request.Context(), investmentID, limit, offset)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list distributions")
		return
	}

	c.JSON(http.StatusOK, dto.ToDistributionResponses(distributions))
}
