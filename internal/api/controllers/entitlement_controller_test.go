package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweettocourse/internal/models/db_models"
	"tweettocourse/internal/models/response_models"
	"tweettocourse/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubEntitlementService returns canned results per method.
type stubEntitlementService struct {
	snapshot    *response_models.EntitlementSnapshot
	snapshotErr error

	changedAccount *db_models.Account
	changeTierErr  error

	resetAccount *db_models.Account
	resetErr     error
}

func (s *stubEntitlementService) GetPolicy(tier db_models.SubscriptionTier) (db_models.TierPolicy, error) {
	policy, ok := db_models.TierPolicies[tier]
	if !ok {
		return db_models.TierPolicy{}, utils.ErrInvalidTier
	}
	return policy, nil
}

func (s *stubEntitlementService) CanUseFeature(account *db_models.Account, feature string) (bool, error) {
	policy, err := s.GetPolicy(account.SubscriptionTier)
	if err != nil {
		return false, err
	}
	return policy.HasFeature(feature), nil
}

func (s *stubEntitlementService) CanGenerate(account *db_models.Account) bool { return true }

func (s *stubEntitlementService) RecordUsage(ctx context.Context, accountID uuid.UUID) (*db_models.Account, error) {
	return nil, utils.ErrQuotaExceeded
}

func (s *stubEntitlementService) ChangeTier(ctx context.Context, accountID uuid.UUID, newTier db_models.SubscriptionTier, reason string) (*db_models.Account, error) {
	return s.changedAccount, s.changeTierErr
}

func (s *stubEntitlementService) ResetMonthlyUsage(ctx context.Context, accountID uuid.UUID) (*db_models.Account, error) {
	return s.resetAccount, s.resetErr
}

func (s *stubEntitlementService) Snapshot(ctx context.Context, accountID uuid.UUID) (*response_models.EntitlementSnapshot, error) {
	return s.snapshot, s.snapshotErr
}

func performRequest(handler gin.HandlerFunc, method, path string, body []byte, userID string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	c.Request = httptest.NewRequest(method, path, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	if userID != "" {
		c.Set("user_id", userID)
	}

	handler(c)
	return recorder
}

func TestGetMyEntitlements_OK(t *testing.T) {
	userID := uuid.New()
	controller := NewEntitlementController(&stubEntitlementService{
		snapshot: &response_models.EntitlementSnapshot{
			AccountID:      userID.String(),
			Tier:           "free",
			UsageCount:     1,
			MonthlyLimit:   1,
			RemainingQuota: 0,
			Features:       map[string]bool{db_models.FeaturePDFExport: true},
		},
	})

	recorder := performRequest(controller.GetMyEntitlements, http.MethodGet, "/entitlements/me", nil, userID.String())

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "free", data["tier"])
	assert.Equal(t, float64(0), data["remaining_quota"])
}

func TestGetMyEntitlements_NoUser(t *testing.T) {
	controller := NewEntitlementController(&stubEntitlementService{})

	recorder := performRequest(controller.GetMyEntitlements, http.MethodGet, "/entitlements/me", nil, "")

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestGetMyEntitlements_AccountMissing(t *testing.T) {
	controller := NewEntitlementController(&stubEntitlementService{
		snapshotErr: utils.ErrAccountNotFound,
	})

	recorder := performRequest(controller.GetMyEntitlements, http.MethodGet, "/entitlements/me", nil, uuid.NewString())

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestChangeTier_OK(t *testing.T) {
	account := &db_models.Account{SubscriptionTier: db_models.TierPro}
	account.ID = uuid.New()
	controller := NewEntitlementController(&stubEntitlementService{changedAccount: account})

	body, _ := json.Marshal(map[string]string{
		"account_id": account.ID.String(),
		"tier":       "pro",
		"reason":     "manual upgrade",
	})
	recorder := performRequest(controller.ChangeTier, http.MethodPost, "/admin/entitlements/change-tier", body, uuid.NewString())

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestChangeTier_UnknownTier(t *testing.T) {
	controller := NewEntitlementController(&stubEntitlementService{})

	body, _ := json.Marshal(map[string]string{
		"account_id": uuid.NewString(),
		"tier":       "platinum",
	})
	recorder := performRequest(controller.ChangeTier, http.MethodPost, "/admin/entitlements/change-tier", body, uuid.NewString())

	// Rejected at the boundary; the service never sees the value.
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestChangeTier_MalformedBody(t *testing.T) {
	controller := NewEntitlementController(&stubEntitlementService{})

	recorder := performRequest(controller.ChangeTier, http.MethodPost, "/admin/entitlements/change-tier", []byte(`{"tier":`), uuid.NewString())

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestResetUsage_OK(t *testing.T) {
	account := &db_models.Account{SubscriptionTier: db_models.TierFree, UsageCount: 0, UsagePeriodStart: 1756684800}
	account.ID = uuid.New()
	controller := NewEntitlementController(&stubEntitlementService{resetAccount: account})

	body, _ := json.Marshal(map[string]string{"account_id": account.ID.String()})
	recorder := performRequest(controller.ResetUsage, http.MethodPost, "/admin/entitlements/reset-usage", body, uuid.NewString())

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(0), data["usage_count"])
}
