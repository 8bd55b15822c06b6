package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"tweettocourse/internal/models/db_models"
	"tweettocourse/internal/models/request_models"
	"tweettocourse/internal/services"
	"tweettocourse/pkg/utils"
)

type EntitlementController struct {
	entitlementService services.EntitlementServiceInterface
}

func NewEntitlementController(entitlementService services.EntitlementServiceInterface) *EntitlementController {
	return &EntitlementController{
		entitlementService: entitlementService,
	}
}

// requestUserID pulls the authenticated account id set by the JWT middleware.
func requestUserID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetString("user_id")
	if raw == "" {
		utils.RespondError(c, http.StatusUnauthorized, "user_id is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "invalid user_id")
		return uuid.Nil, false
	}
	return id, true
}

// GetMyEntitlements godoc
// @Summary Get the caller's entitlement snapshot
// @Description Returns tier, usage, remaining quota and the feature map
// @Tags Entitlements
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /entitlements/me [get]
func (e *EntitlementController) GetMyEntitlements(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	snapshot, err := e.entitlementService.Snapshot(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, snapshot, "Entitlements fetched successfully")
}

// GetAccountEntitlements godoc
// @Summary Get an account's entitlement snapshot
// @Description Admin view of any account's tier, usage and features
// @Tags Entitlements
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/entitlements/{id} [get]
func (e *EntitlementController) GetAccountEntitlements(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid account id")
		return
	}

	snapshot, err := e.entitlementService.Snapshot(c.Request.Context(), accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, snapshot, "Entitlements fetched successfully")
}

// ChangeTier godoc
// @Summary Change an account's subscription tier
// @Description Moves an account between free, pro and lifetime. Usage is untouched.
// @Tags Entitlements
// @Accept json
// @Produce json
// @Param request body request_models.ChangeTierRequest true "Tier change payload"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/entitlements/change-tier [post]
func (e *EntitlementController) ChangeTier(c *gin.Context) {
	var req request_models.ChangeTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid account id")
		return
	}

	tier, err := db_models.ParseTier(req.Tier)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Unknown subscription tier: "+req.Tier)
		return
	}

	account, err := e.entitlementService.ChangeTier(c.Request.Context(), accountID, tier, req.Reason)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{
		"account_id": account.ID,
		"tier":       account.SubscriptionTier,
	}, "Tier changed successfully")
}

// ResetUsage godoc
// @Summary Reset an account's monthly usage
// @Description Zeroes the usage counter and starts a fresh billing period
// @Tags Entitlements
// @Accept json
// @Produce json
// @Param request body request_models.ResetUsageRequest true "Usage reset payload"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/entitlements/reset-usage [post]
func (e *EntitlementController) ResetUsage(c *gin.Context) {
	var req request_models.ResetUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid account id")
		return
	}

	account, err := e.entitlementService.ResetMonthlyUsage(c.Request.Context(), accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{
		"account_id":         account.ID,
		"usage_count":        account.UsageCount,
		"usage_period_start": account.UsagePeriodStart,
	}, "Usage reset successfully")
}
