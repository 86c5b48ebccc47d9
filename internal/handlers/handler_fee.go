package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/sajhapunji/broker-backoffice/internal/core/ports/services"
	"github.com/sajhapunji/broker-backoffice/internal/dto"
	"github.com/sajhapunji/broker-backoffice/internal/middleware"
)

// feeHandler handles HTTP requests related to customer fees.
type feeHandler struct {
	feeService portssvc.FeeSvcFacade
}

// newFeeHandler creates a new feeHandler.
func newFeeHandler(fs portssvc.FeeSvcFacade) *feeHandler {
	return &feeHandler{
		feeService: fs,
	}
}

// registerFeeRoutes registers routes related to fees.
func registerFeeRoutes(rg *gin.RouterGroup, fs portssvc.FeeSvcFacade) {
	h := newFeeHandler(fs)

	fees := rg.Group("/fees")
	{
		fees.POST("", h.createFee)
		fees.GET("/:id", h.getFee)
		fees.POST("/:id/waive", h.waiveFee)
		fees.POST("/annual", h.applyAnnualFees)
	}
}

// createFee godoc
// @Summary Raise a fee against a customer
// @Description Creates a PENDING fee that the next distribution sweep can settle
// @Tags fees
// @Accept json
// @Produce json
// @Param fee body dto.CreateFeeRequest true "Fee details"
// @Success 201 {object} dto.FeeResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Customer or account not found"
// @Failure 500 {object} map[string]string "Failed to create fee"
// @Security BearerAuth
// @Router /fees [post]
func (h *feeHandler) createFee(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createFee", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	fee, err := h.feeService.CreateFee(c.Request.Context(), actor, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create fee")
		return
	}

	logger.Info("Fee created", slog.String("fee_id", fee.FeeID), slog.String("customer_id", fee.CustomerID))
	c.JSON(http.StatusCreated, dto.ToFeeResponse(fee))
}

// getFee godoc
// @Summary Get a fee by ID
// @Tags fees
// @Produce json
// @Param id path string true "Fee ID"
// @Success 200 {object} dto.FeeResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Fee not found"
// @Failure 500 {object} map[string]string "Failed to retrieve fee"
// @Security BearerAuth
// @Router /fees/{id} [get]
func (h *feeHandler) getFee(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	feeID := c.Param("id")

	fee, err := h.feeService.GetFeeByID(c.Request.Context(), feeID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve fee")
		return
	}

	c.JSON(http.StatusOK, dto.ToFeeResponse(fee))
}

// waiveFee godoc
// @Summary Waive a pending fee
// @Description Marks a PENDING fee as WAIVED so no sweep will collect it
// @Tags fees
// @Produce json
// @Param id path string true "Fee ID"
// @Success 200 {object} dto.FeeResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Fee not found"
// @Failure 409 {object} map[string]string "Fee is not pending"
// @Failure 500 {object} map[string]string "Failed to waive fee"
// @Security BearerAuth
// @Router /fees/{id}/waive [post]
func (h *feeHandler) waiveFee(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	feeID := c.Param("id")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	fee, err := h.feeService.WaiveFee(c.Request.Context(), actor, feeID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to waive fee")
		return
	}

	logger.Info("Fee waived", slog.String("fee_id", fee.FeeID))
	c.JSON(http.StatusOK, dto.ToFeeResponse(fee))
}

// applyAnnualFees godoc
// @Summary Raise an annual fee for many customers
// @Description Creates the same charge per customer, each in its own transaction. One failure never aborts the batch.
// @Tags fees
// @Accept json
// @Produce json
// @Param fees body dto.BulkAnnualFeeRequest true "Annual fee details"
// @Success 200 {object} dto.BulkResult
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to apply annual fees"
// @Security BearerAuth
// @Router /fees/annual [post]
func (h *feeHandler) applyAnnualFees(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BulkAnnualFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for applyAnnualFees", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.feeService.ApplyAnnualFees(c.Request.Context(), actor, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to apply annual fees")
		return
	}

	logger.Info("Annual fees applied", slog.Int("succeeded", result.Succeeded), slog.Int("failed", result.Failed))
	c.JSON(http.StatusOK, result)
}
