package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"tweettocourse/internal/models/db_models"
)

// AccountRepository owns all mutation of usage_count and subscription_tier.
// The increment primitives are single conditional UPDATEs so that the quota
// check and the increment cannot be split across concurrent requests.
type AccountRepository interface {
	InsertTx(account *db_models.Account, ctx context.Context) error
	FindById(ctx context.Context, id string) (*db_models.Account, error)
	FindByEmail(ctx context.Context, email string) (*db_models.Account, error)
	ListAll(ctx context.Context) ([]db_models.Account, error)
	UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error

	// IncrementUsageBelowLimit adds 1 to usage_count only while it is
	// strictly below limit. Returns whether the row was affected.
	IncrementUsageBelowLimit(ctx context.Context, id uuid.UUID, limit int) (bool, error)
	// IncrementUsage adds 1 unconditionally (unlimited tiers still tracked).
	IncrementUsage(ctx context.Context, id uuid.UUID) error
	UpdateTier(ctx context.Context, id uuid.UUID, tier db_models.SubscriptionTier) error
	ResetMonthlyUsage(ctx context.Context, id uuid.UUID, periodStart int64) error
	ResetAllMonthlyUsage(ctx context.Context, periodStart int64) (int64, error)
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{
		db: db,
	}
}

func (a *accountRepository) InsertTx(account *db_models.Account, ctx context.Context) error {
	return a.db.WithContext(ctx).Create(account).Error
}

func (a *accountRepository) FindById(ctx context.Context, id string) (*db_models.Account, error) {
	var account db_models.Account
	err := a.db.WithContext(ctx).First(&account, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &account, nil
}

func (a *accountRepository) FindByEmail(ctx context.Context, email string) (*db_models.Account, error) {
	var account db_models.Account
	err := a.db.WithContext(ctx).First(&account, "email = ?", email).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &account, nil
}

func (a *accountRepository) ListAll(ctx context.Context) ([]db_models.Account, error) {
	var accounts []db_models.Account
	err := a.db.WithContext(ctx).Order("created_at DESC").Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (a *accountRepository) UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error {
	return a.db.WithContext(ctx).
		Model(&db_models.Account{}).
		Where("email = ?", email).
		Update("password_hash", passwordHash).Error
}

func (a *accountRepository) IncrementUsageBelowLimit(ctx context.Context, id uuid.UUID, limit int) (bool, error) {
	res := a.db.WithContext(ctx).
		Model(&db_models.Account{}).
		Where("id = ? AND usage_count < ?", id, limit).
		Updates(map[string]interface{}{
			"usage_count":      gorm.Expr("usage_count + 1"),
			"last_activity_at": time.Now().Unix(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (a *accountRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	res := a.db.WithContext(ctx).
		Model(&db_models.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"usage_count":      gorm.Expr("usage_count + 1"),
			"last_activity_at": time.Now().Unix(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (a *accountRepository) UpdateTier(ctx context.Context, id uuid.UUID, tier db_models.SubscriptionTier) error {
	res := a.db.WithContext(ctx).
		Model(&db_models.Account{}).
		Where("id = ?", id).
		Update("subscription_tier", tier)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (a *accountRepository) ResetMonthlyUsage(ctx context.Context, id uuid.UUID, periodStart int64) error {
	return a.db.WithContext(ctx).
		Model(&db_models.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"usage_count":        0,
			"usage_period_start": periodStart,
		}).Error
}

func (a *accountRepository) ResetAllMonthlyUsage(ctx context.Context, periodStart int64) (int64, error) {
	res := a.db.WithContext(ctx).
		Model(&db_models.Account{}).
		Where("usage_period_start < ?", periodStart).
		Updates(map[string]interface{}{
			"usage_count":        0,
			"usage_period_start": periodStart,
		})
	return res.RowsAffected, res.Error
}
