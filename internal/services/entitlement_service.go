package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"tweettocourse/internal/models/db_models"
	"tweettocourse/internal/models/response_models"
	"tweettocourse/internal/repositories"
	"tweettocourse/pkg/utils"
)

// EntitlementServiceInterface owns the mapping from subscription tier to
// feature set and quota, and is the only path that mutates usage_count or
// subscription_tier. RecordUsage is check-and-increment in one conditional
// update, so two racing requests can never both pass a limit of N.
type EntitlementServiceInterface interface {
	GetPolicy(tier db_models.SubscriptionTier) (db_models.TierPolicy, error)
	CanUseFeature(account *db_models.Account, feature string) (bool, error)
	CanGenerate(account *db_models.Account) bool
	RecordUsage(ctx context.Context, accountID uuid.UUID) (*db_models.Account, error)
	ChangeTier(ctx context.Context, accountID uuid.UUID, newTier db_models.SubscriptionTier, reason string) (*db_models.Account, error)
	ResetMonthlyUsage(ctx context.Context, accountID uuid.UUID) (*db_models.Account, error)
	Snapshot(ctx context.Context, accountID uuid.UUID) (*response_models.EntitlementSnapshot, error)
}

type EntitlementService struct {
	accountRepo repositories.AccountRepository
}

func NewEntitlementService(accountRepo repositories.AccountRepository) EntitlementServiceInterface {
	return &EntitlementService{
		accountRepo: accountRepo,
	}
}

// GetPolicy is a pure lookup. An unknown tier means a bug upstream (the
// boundary validates against the closed enum), so the error is the
// programmer-error sentinel, not a business rejection.
func (e *EntitlementService) GetPolicy(tier db_models.SubscriptionTier) (db_models.TierPolicy, error) {
	policy, ok := db_models.TierPolicies[tier]
	if !ok {
		return db_models.TierPolicy{}, utils.ErrInvalidTier
	}
	return policy, nil
}

// CanUseFeature depends only on the account's tier, never on usage.
func (e *EntitlementService) CanUseFeature(account *db_models.Account, feature string) (bool, error) {
	if !db_models.KnownFeature(feature) {
		return false, utils.ErrUnknownFeature
	}
	policy, err := e.GetPolicy(account.SubscriptionTier)
	if err != nil {
		return false, err
	}
	return policy.HasFeature(feature), nil
}

// CanGenerate is the read-only quota check; consumption happens separately
// in RecordUsage.
func (e *EntitlementService) CanGenerate(account *db_models.Account) bool {
	policy, err := e.GetPolicy(account.SubscriptionTier)
	if err != nil {
		return false
	}
	if policy.Unlimited() {
		return true
	}
	return account.UsageCount < policy.MonthlyGenerationLimit
}

// RecordUsage atomically consumes one generation. The limit check and the
// increment are a single conditional UPDATE in the store; on a miss the
// account is re-read to distinguish "quota exhausted" from "account gone".
func (e *EntitlementService) RecordUsage(ctx context.Context, accountID uuid.UUID) (*db_models.Account, error) {
	account, err := e.accountRepo.FindById(ctx, accountID.String())
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}

	policy, err := e.GetPolicy(account.SubscriptionTier)
	if err != nil {
		return nil, err
	}

	if policy.Unlimited() {
		if err := e.accountRepo.IncrementUsage(ctx, accountID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, utils.ErrAccountNotFound
			}
			return nil, utils.ErrDatabaseError
		}
	} else {
		affected, err := e.accountRepo.IncrementUsageBelowLimit(ctx, accountID, policy.MonthlyGenerationLimit)
		if err != nil {
			return nil, utils.ErrDatabaseError
		}
		if !affected {
			return nil, utils.ErrQuotaExceeded
		}
	}

	updated, err := e.accountRepo.FindById(ctx, accountID.String())
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if updated == nil {
		return nil, utils.ErrAccountNotFound
	}
	return updated, nil
}

// ChangeTier validates the enum and persists the new tier. Usage is
// deliberately untouched: a mid-period tier change grants no fresh quota,
// only the period rollover does.
func (e *EntitlementService) ChangeTier(ctx context.Context, accountID uuid.UUID, newTier db_models.SubscriptionTier, reason string) (*db_models.Account, error) {
	if _, err := e.GetPolicy(newTier); err != nil {
		return nil, err
	}

	if err := e.accountRepo.UpdateTier(ctx, accountID, newTier); err != nil {
		account, findErr := e.accountRepo.FindById(ctx, accountID.String())
		if findErr == nil && account == nil {
			return nil, utils.ErrAccountNotFound
		}
		return nil, utils.ErrDatabaseError
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"tier":       newTier,
		"reason":     reason,
	}).Info("subscription tier changed")

	updated, err := e.accountRepo.FindById(ctx, accountID.String())
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if updated == nil {
		return nil, utils.ErrAccountNotFound
	}
	return updated, nil
}

// ResetMonthlyUsage zeroes the counter for a new billing period. Safe to
// call twice in the same period.
func (e *EntitlementService) ResetMonthlyUsage(ctx context.Context, accountID uuid.UUID) (*db_models.Account, error) {
	periodStart := utils.BillingPeriodStart(utils.FromUnixSeconds(utils.NowUnixSeconds())).Unix()
	if err := e.accountRepo.ResetMonthlyUsage(ctx, accountID, periodStart); err != nil {
		return nil, utils.ErrDatabaseError
	}

	updated, err := e.accountRepo.FindById(ctx, accountID.String())
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if updated == nil {
		return nil, utils.ErrAccountNotFound
	}
	return updated, nil
}

func (e *EntitlementService) Snapshot(ctx context.Context, accountID uuid.UUID) (*response_models.EntitlementSnapshot, error) {
	account, err := e.accountRepo.FindById(ctx, accountID.String())
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}

	policy, err := e.GetPolicy(account.SubscriptionTier)
	if err != nil {
		return nil, err
	}

	remaining := db_models.UnlimitedGenerations
	if !policy.Unlimited() {
		remaining = policy.MonthlyGenerationLimit - account.UsageCount
		if remaining < 0 {
			remaining = 0
		}
	}

	return &response_models.EntitlementSnapshot{
		AccountID:      account.ID.String(),
		Tier:           string(account.SubscriptionTier),
		UsageCount:     account.UsageCount,
		MonthlyLimit:   policy.MonthlyGenerationLimit,
		Unlimited:      policy.Unlimited(),
		RemainingQuota: remaining,
		Features: map[string]bool{
			db_models.FeaturePDFExport:      policy.PDFExport,
			db_models.FeatureNotionExport:   policy.NotionExport,
			db_models.FeatureWatermarkFree:  policy.WatermarkFree,
			db_models.FeatureCustomBranding: policy.CustomBranding,
		},
		UsagePeriodStart: account.UsagePeriodStart,
	}, nil
}
