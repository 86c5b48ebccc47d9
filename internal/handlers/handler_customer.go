package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/sajhapunji/broker-backoffice/internal/core/ports/services"
	"github.com/sajhapunji/broker-backoffice/internal/dto"
	"github.com/sajhapunji/broker-backoffice/internal/middleware"
)

// customerHandler handles HTTP requests related to customers and their
// subresources.
type customerHandler struct {
	customerService  portssvc.CustomerSvcFacade
	feeService       portssvc.FeeSvcFacade
	portfolioService portssvc.PortfolioSvcFacade
	ipoService       portssvc.IPOSvcFacade
}

// newCustomerHandler creates a new customerHandler.
func newCustomerHandler(cs portssvc.CustomerSvcFacade, fs portssvc.FeeSvcFacade, ps portssvc.PortfolioSvcFacade, is portssvc.IPOSvcFacade) *customerHandler {
	return &customerHandler{
		customerService:  cs,
		feeService:       fs,
		portfolioService: ps,
		ipoService:       is,
	}
}

// registerCustomerRoutes registers routes related to customers.
func registerCustomerRoutes(rg *gin.RouterGroup, cs portssvc.CustomerSvcFacade, fs portssvc.FeeSvcFacade, ps portssvc.PortfolioSvcFacade, is portssvc.IPOSvcFacade) {
	h := newCustomerHandler(cs, fs, ps, is)

	customers := rg.Group("/customers")
	{
		customers.POST("", h.onboardCustomer)
		customers.GET("/:id", h.getCustomer)
		customers.GET("", h.listCustomers)
		customers.PUT("/:id", h.updateCustomer)
		customers.DELETE("/:id", h.deactivateCustomer)
		customers.GET("/:id/fees", h.listCustomerFees)
		customers.GET("/:id/portfolio", h.getCustomerPortfolio)
		customers.GET("/:id/applications", h.listCustomerApplications)
	}
}

// onboardCustomer godoc
// @Summary Onboard a customer
// @Description Creates a customer and opens their primary account in one unit of work
// @Tags customers
// @Accept json
// @Produce json
// @Param customer body dto.CreateCustomerRequest true "Customer details"
// @Success 201 {object} dto.OnboardCustomerResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "BOID already registered"
// @Failure 500 {object} map[string]string "Failed to onboard customer"
// @Security BearerAuth
// @Router /customers [post]
func (h *customerHandler) onboardCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for onboardCustomer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	customer, account, err := h.customerService.OnboardCustomer(c.Request.Context(), actor, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to onboard customer")
		return
	}

	logger.Info("Customer onboarded", slog.String("customer_id", customer.CustomerID), slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.OnboardCustomerResponse{
		Customer: dto.ToCustomerResponse(customer),
		Account:  dto.ToAccountResponse(account),
	})
}

// getCustomer godoc
// @Summary Get a customer by ID
// @Tags customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} dto.CustomerResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Customer not found"
// @Failure 500 {object} map[string]string "Failed to retrieve customer"
// @Security BearerAuth
// @Router /customers/{id} [get]
func (h *customerHandler) getCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	customerID := c.Param("id")

	customer, err := h.customerService.GetCustomerByID(c.Request.Context(), customerID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve customer")
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomerResponse(customer))
}

// listCustomers godoc
// @Summary List customers
// @Tags customers
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {array} dto.CustomerResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list customers"
// @Security BearerAuth
// @Router /customers [get]
func (h *customerHandler) listCustomers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	limit, offset := parseListParams(c)

	customers, err := h.customerService.ListCustomers(c.Request.Context(), limit, offset)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list customers")
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomerResponses(customers))
}

// updateCustomer godoc
// @Summary Update a customer
// @Description Submits a customer update. Maker updates are diverted into a pending modification request and return 202. The BOID is immutable.
// @Tags customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param customer body dto.UpdateCustomerRequest true "Fields to update"
// @Success 200 {object} dto.CustomerResponse
// @Success 202 {object} dto.PendingChangeResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Customer not found"
// @Failure 500 {object} map[string]string "Failed to update customer"
// @Security BearerAuth
// @Router /customers/{id} [put]
func (h *customerHandler) updateCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	customerID := c.Param("id")

	var req dto.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for updateCustomer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	customer, pending, err := h.customerService.UpdateCustomer(c.Request.Context(), actor, customerID, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update customer")
		return
	}

	if pending != nil {
		logger.Info("Customer update submitted for approval", slog.String("request_id", pending.RequestID))
		c.JSON(http.StatusAccepted, dto.PendingChangeResponse{
			Message: "Change submitted for approval",
			Request: dto.ToModificationRequestResponse(pending),
		})
		return
	}

	logger.Info("Customer updated", slog.String("customer_id", customer.CustomerID))
	c.JSON(http.StatusOK, dto.ToCustomerResponse(customer))
}

// deactivateCustomer godoc
// @Summary Deactivate a customer
// @Description Submits a customer deactivation for approval
// @Tags customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 202 {object} dto.PendingChangeResponse
// @Success 204 "Customer deactivated"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Customer not found"
// @Failure 409 {object} map[string]string "Customer already inactive"
// @Failure 500 {object} map[string]string "Failed to deactivate customer"
// @Security BearerAuth
// @Router /customers/{id} [delete]
func (h *customerHandler) deactivateCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	customerID := c.Param("id")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	pending, err := h.customerService.DeactivateCustomer(c.Request.Context(), actor, customerID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to deactivate customer")
		return
	}

	if pending != nil {
		logger.Info("Customer deactivation submitted for approval", slog.String("request_id", pending.RequestID))
		c.JSON(http.StatusAccepted, dto.PendingChangeResponse{
			Message: "Change submitted for approval",
			Request: dto.ToModificationRequestResponse(pending),
		})
		return
	}

	logger.Info("Customer deactivated", slog.String("customer_id", customerID))
	c.Status(http.StatusNoContent)
}

// listCustomerFees godoc
// @Summary List a customer's fees
// @Tags customers
// @Produce json
// @Param id path string true "Customer ID"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {array} dto.FeeResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list fees"
// @Security BearerAuth
// @Router /customers/{id}/fees [get]
func (h *customerHandler) listCustomerFees(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	customerID := c.Param("id")
	limit, offset := parseListParams(c)

	fees, err := h.feeService.ListFeesByCustomer(c.Request.Context(), customerID, limit, offset)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list fees")
		return
	}

	c.JSON(http.StatusOK, dto.ToFeeResponses(fees))
}

// getCustomerPortfolio godoc
// @Summary Get a customer's portfolio
// @Description Retrieves the portfolio aggregates with all holdings
// @Tags customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} dto.PortfolioResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Portfolio not found"
// @Failure 500 {object} map[string]string "Failed to retrieve portfolio"
// @Security BearerAuth
// @Router /customers/{id}/portfolio [get]
func (h *customerHandler) getCustomerPortfolio(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	customerID := c.Param("id")

	portfolio, holdings, err := h.portfolioService.GetPortfolio(c.Request.Context(), customerID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve portfolio")
		return
	}

	c.JSON(http.StatusOK, dto.ToPortfolioResponse(portfolio, holdings))
}

// listCustomerApplications godoc
// @Summary List a customer's IPO applications
// @Tags customers
// @Produce json
// @Param id path string true "Customer ID"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {array} dto.IPOApplicationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list applications"
// @Security BearerAuth
// @Router /customers/{id}/applications [get]
func (h *customerHandler) listCustomerApplications(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	customerID := c.Param("id")
	limit, offset := parseListParams(c)

	apps, err := h.ipoService.ListApplicationsByCustomer(c.Request.Context(), customerID, limit, offset)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list applications")
		return
	}

	c.JSON(http.StatusOK, dto.ToIPOApplicationResponses(apps))
}
