package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"tweettocourse/internal/models/request_models"
	"tweettocourse/internal/services"
	"tweettocourse/pkg/utils"
)

type PaymentController struct {
	paymentService services.PaymentService
	planService    services.PlanServiceInterface
}

func NewPaymentController(paymentService services.PaymentService, planService services.PlanServiceInterface) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		planService:    planService,
	}
}

// GetPlans godoc
// @Summary List subscription plans
// @Description Fetch all active plans with their entitlement tier and pricing
// @Tags Payments
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /payments/plans [get]
func (p *PaymentController) GetPlans(c *gin.Context) {
	plans, err := p.planService.GetPlans(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, plans, "Plans fetched successfully")
}

// GetPlanById godoc
// @Summary Get a subscription plan
// @Description Fetch a single plan by its id
// @Tags Payments
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /payments/plans/{id} [get]
func (p *PaymentController) GetPlanById(c *gin.Context) {
	plan, err := p.planService.GetPlanInfoById(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, plan, "Plan fetched successfully")
}

// CreateCheckoutRequest godoc
// @Summary Create a checkout request for a subscription plan
// @Description Creates a pending transaction and returns the provider checkout URL
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.CreatePaymentRequest true "Create Payment Request"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/create-checkout [post]
func (p *PaymentController) CreateCheckoutRequest(c *gin.Context) {
	var request request_models.CreatePaymentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	checkout, err := p.paymentService.CreateCheckoutForPlan(c.Request.Context(), userID, request.PlanCode)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, checkout, "Checkout created successfully")
}

// GetSubscriptionStatus godoc
// @Summary Get the caller's subscription status
// @Description Returns the most recent subscription's plan, window and renewal flag
// @Tags Payments
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/subscription [get]
func (p *PaymentController) GetSubscriptionStatus(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	status, err := p.paymentService.GetSubscriptionStatus(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	if status == nil {
		utils.RespondSuccess(c, nil, "No subscription on record")
		return
	}
	utils.RespondSuccess(c, status, "Subscription fetched successfully")
}

// HandleWebhook receives provider payment notifications. Signature
// verification and idempotency live in the service.
func (p *PaymentController) HandleWebhook(c *gin.Context) {
	p.paymentService.HandleWebhook(c)
}
