package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/sajhapunji/broker-backoffice/internal/core/ports/services"
	"github.com/sajhapunji/broker-backoffice/internal/dto"
	"github.com/sajhapunji/broker-backoffice/internal/middleware"
)

// investorHandler handles HTTP requests related to investors and their
// investments.
type investorHandler struct {
	investorService portssvc.InvestorSvcFacade
}

// newInvestorHandler creates a new investorHandler.
func newInvestorHandler(is portssvc.InvestorSvcFacade) *investorHandler {
	return &investorHandler{
		investorService: is,
	}
}

// registerInvestorRoutes registers routes related to investors and investments.
func registerInvestorRoutes(rg *gin.RouterGroup, is portssvc.InvestorSvcFacade) {
	h := newInvestorHandler(is)

	investors := rg.Group("/investors")
	{
		investors.POST("", h.createInvestor)
		investors.GET("/:id", h.getInvestor)
		investors.GET("", h.listInvestors)
		investors.POST("/:id/capital", h.addCapital)
		investors.GET("/:id/investments", h.listInvestments)
	}

	investments := rg.Group("/investments")
	{
		investments.POST("", h.reserveInvestment)
		investments.GET("/:id", h.getInvestment)
	}
}

// createInvestor godoc
// @Summary Register a capital partner
// @Description Creates an investor and opens their escrow account
// @Tags investors
// @Accept json
// @Produce json
// @Param investor body dto.CreateInvestorRequest true "Investor details"
// @Success 201 {object} dto.InvestorResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create investor"
// @Security BearerAuth
// @Router /investors [post]
func (h *investorHandler) createInvestor(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateInvestorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createInvestor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	investor, err := h.investorService.CreateInvestor(c.Request.Context(), actor, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create investor")
		return
	}

	logger.Info("Investor created", slog.String("investor_id", investor.InvestorID))
	c.JSON(http.StatusCreated, dto.ToInvestorResponse(investor))
}

// getInvestor godoc
// @Summary Get an investor by ID
// @Tags investors
// @Produce json
// @Param id path string true "Investor ID"
// @Success 200 {object} dto.InvestorResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Investor not found"
// @Failure 500 {object} map[string]string "Failed to retrieve investor"
// @Security BearerAuth
// @Router /investors/{id} [get]
func (h *investorHandler) getInvestor(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	investorID := c.Param("id")

	investor, err := h.investorService.GetInvestorByID(c.Request.Context(), investorID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve investor")
		return
	}

	c.JSON(http.StatusOK, dto.ToInvestorResponse(investor))
}

// listInvestors godoc
// @Summary List investors
// @Tags investors
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {array} dto.InvestorResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list investors"
// @Security BearerAuth
// @Router /investors [get]
func (h *investorHandler) listInvestors(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	limit, offset := parseListParams(c)

	investors, err := h.investorService.ListInvestors(c.Request.Context(), limit, offset)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list investors")
		return
	}

	res := make([]dto.InvestorResponse, len(investors))
	for i := range investors {
		res[i] = dto.ToInvestorResponse(&investors[i])
	}
	c.JSON(http.StatusOK, res)
}

// addCapital godoc
// @Summary Add capital to an investor's pool
// @Description Credits the escrow account and grows total and available capital together
// @Tags investors
// @Accept json
// @Produce json
// @Param id path string true "Investor ID"
// @Param body body dto.AddCapitalRequest true "Capital amount"
// @Success 200 {object} dto.InvestorResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Investor not found"
// @Failure 422 {object} map[string]string "Investor is inactive"
// @Failure 500 {object} map[string]string "Failed to add capital"
// @Security BearerAuth
// @Router /investors/{id}/capital [post]
func (h *investorHandler) addCapital(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	investorID := c.Param("id")

	var req dto.AddCapitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for addCapital", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	investor, err := h.investorService.AddCapital(c.Request.Context(), actor, investorID, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to add capital")
		return
	}

	logger.Info("Capital added", slog.String("investor_id", investor.InvestorID), slog.String("amount", req.Amount.String()))
	c.JSON(http.StatusOK, dto.ToInvestorResponse(investor))
}

// reserveInvestment godoc
// @Summary Reserve capital for an investment
// @Description Moves capital from available to invested and creates an ACTIVE investment
// @Tags investors
// @Accept json
// @Produce json
// @Param investment body dto.ReserveInvestmentRequest true "Investment details"
// @Success 201 {object} dto.InvestmentResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Investor not found"
// @Failure 422 {object} map[string]string "Insufficient available capital"
// @Failure 500 {object} map[string]string "Failed to reserve investment"
// @Security BearerAuth
// @Router /investments [post]
func (h *investorHandler) reserveInvestment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ReserveInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for reserveInvestment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	investment, err := h.investorService.ReserveForInvestment(c.Request.Context(), actor, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to reserve investment")
		return
	}

	logger.Info("Investment reserved",
		slog.String("investment_id", investment.InvestmentID),
		slog.String("investor_id", investment.InvestorID))
	c.JSON(http.StatusCreated, dto.ToInvestmentResponse(investment))
}

// getInvestment godoc
// @Summary Get an investment by ID
// @Tags investors
// @Produce json
// @Param id path string true "Investment ID"
// @Success 200 {object} dto.InvestmentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Investment not found"
// @Failure 500 {object} map[string]string "Failed to retrieve investment"
// @Security BearerAuth
// @Router /investments/{id} [get]
func (h *investorHandler) getInvestment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	investmentID := c.Param("id")

	investment, err := h.investorService.GetInvestmentByID(c.Request.Context(), investmentID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve investment")
		return
	}

	c.JSON(http.StatusOK, dto.ToInvestmentResponse(investment))
}

// listInvestments godoc
// @Summary List an investor's investments
// @Tags investors
// @Produce json
// @Param id path string true "Investor ID"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {array} dto.InvestmentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list investments"
// @Security BearerAuth
// @Router /investors/{id}/investments [get]
func (h *investorHandler) listInvestments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	investorID := c.Param("id")
	limit, offset := parseListParams(c)

	investments, err := h.investorService.ListInvestmentsByInvestor(c.Request.Context(), investorID, limit, offset)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list investments")
		return
	}

	c.JSON(http.StatusOK, dto.ToInvestmentResponses(investments))
}
