package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	dbm "tweettocourse/internal/models/db_models"
)

type DashboardRepository interface {
	// KPIs / counts
	CountTotalAccounts(ctx context.Context) (int64, error)
	CountNewAccounts(ctx context.Context, start, end time.Time) (int64, error)
	CountTotalCourses(ctx context.Context) (int64, error)
	SumGenerationsThisPeriod(ctx context.Context) (int64, error)

	CountSubscriptionsByStatus(ctx context.Context, status dbm.SubscriptionStatus) (int64, error)
	CountCanceledInPeriod(ctx context.Context, start, end time.Time) (int64, error)

	// Time series
	RevenueSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error)
	NewUsersSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error)

	// Plan mix (active subs)
	PlanMix(ctx context.Context) ([]PlanMixRow, error)

	// Top converted thread authors
	TopSourceAuthors(ctx context.Context, start, end time.Time, limit int) ([]AuthorRow, error)

	// Recent payments
	RecentPaidTransactions(ctx context.Context, limit int) ([]RecentPaymentRow, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

// ---------- Row helpers ----------
type BucketSum struct {
	Bucket time.Time `gorm:"column:bucket"`
	Sum    int64     `gorm:"column:sum"`
}

type PlanMixRow struct {
	PlanID     string `gorm:"column:plan_id"`
	PlanCode   string `gorm:"column:plan_code"`
	PlanName   string `gorm:"column:plan_name"`
	TierCode   string `gorm:"column:tier_code"`
	PriceMinor int64  `gorm:"column:price_minor"`
	Count      int64  `gorm:"column:count"`
}

type AuthorRow struct {
	Author string `gorm:"column:author"`
	Count  int64  `gorm:"column:count"`
}

type RecentPaymentRow struct {
	ID            string `gorm:"column:id"`
	PaidAt        *int64 `gorm:"column:paid_at"`
	AmountMinor   int64  `gorm:"column:amount_minor"`
	Currency      string `gorm:"column:currency"`
	Status        string `gorm:"column:status"`
	Provider      string `gorm:"column:provider"`
	ProviderTxnID string `gorm:"column:provider_txn_id"`
	AccountEmail  string `gorm:"column:email"`
}

// unixColumn holds UNIX seconds; convert then date_trunc with a timezone:
// date_trunc('day', timezone('UTC', to_timestamp(paid_at)))
func dateTrunc(interval, tz string, unixColumn string) string {
	if tz == "" {
		return "date_trunc(?, to_timestamp(" + unixColumn + "))"
	}
	return "date_trunc(?, timezone(?, to_timestamp(" + unixColumn + ")))"
}

// ---------- Counts ----------
func (r *dashboardRepository) CountTotalAccounts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbm.Account{}).Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountNewAccounts(ctx context.Context, start, end time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Account{}).
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountTotalCourses(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbm.Course{}).Count(&n).Error
	return n, err
}

func (r *dashboardRepository) SumGenerationsThisPeriod(ctx context.Context) (int64, error) {
	var sum *int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Account{}).
		Select("SUM(usage_count)").
		Scan(&sum).Error
	if err != nil || sum == nil {
		return 0, err
	}
	return *sum, nil
}

func (r *dashboardRepository) CountSubscriptionsByStatus(ctx context.Context, status dbm.SubscriptionStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Subscription{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountCanceledInPeriod(ctx context.Context, start, end time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Subscription{}).
		Where("status = ?", dbm.SubStatusCanceled).
		Where("canceled_at IS NOT NULL AND canceled_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Count(&n).Error
	return n, err
}

// ---------- Series ----------
func (r *dashboardRepository) RevenueSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error) {
	var rows []BucketSum
	truncExpr := dateTrunc(interval, tz, "paid_at")
	tx := r.db.WithContext(ctx).
		Table("transactions").
		Select(truncExpr+" AS bucket, SUM(amount_minor) AS sum", interval, tz).
		Where("status = ?", dbm.TxnStatusPaid).
		Where("paid_at IS NOT NULL").
		Where("paid_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Group("bucket").
		Order("bucket ASC")
	err := tx.Find(&rows).Error
	return rows, err
}

func (r *dashboardRepository) NewUsersSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error) {
	var rows []BucketSum
	truncExpr := dateTrunc(interval, tz, "created_at")
	tx := r.db.WithContext(ctx).
		Table("accounts").
		Select(truncExpr+" AS bucket, COUNT(*) AS sum", interval, tz).
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Group("bucket").
		Order("bucket ASC")
	err := tx.Find(&rows).Error
	return rows, err
}

// ---------- Plan mix ----------
func (r *dashboardRepository) PlanMix(ctx context.Context) ([]PlanMixRow, error) {
	var rows []PlanMixRow
	now := time.Now().Unix()
	err := r.db.WithContext(ctx).
		Table("subscriptions s").
		Select(`
			s.plan_id,
			p.code AS plan_code,
			p.name AS plan_name,
			p.tier_code,
			p.price_minor,
			COUNT(*) AS count`).
		Joins("JOIN plans p ON p.id = s.plan_id").
		Where("s.starts_at <= ? AND s.ends_at >= ?", now, now).
		Where("s.status IN ?", []dbm.SubscriptionStatus{dbm.SubStatusActive, dbm.SubStatusTrialing, dbm.SubStatusPastDue}).
		Group("s.plan_id, p.code, p.name, p.tier_code, p.price_minor").
		Order("count DESC").
		Find(&rows).Error
	return rows, err
}

// ---------- Top source authors ----------
func (r *dashboardRepository) TopSourceAuthors(ctx context.Context, start, end time.Time, limit int) ([]AuthorRow, error) {
	var rows []AuthorRow
	if limit <= 0 {
		limit = 10
	}
	err := r.db.WithContext(ctx).
		Table("courses").
		Select("source_author AS author, COUNT(*) AS count").
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Where("source_author <> ''").
		Where("deleted_at IS NULL").
		Group("source_author").
		Order("count DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ---------- Recent payments ----------
func (r *dashboardRepository) RecentPaidTransactions(ctx context.Context, limit int) ([]RecentPaymentRow, error) {
	var rows []RecentPaymentRow
	if limit <= 0 {
		limit = 10
	}
	err := r.db.WithContext(ctx).
		Table("transactions t").
		Select("t.id, t.paid_at, t.amount_minor, t.currency, t.status, t.provider, t.provider_txn_id, a.email").
		Joins("JOIN accounts a ON a.id = t.account_id").
		Where("t.status = ?", dbm.TxnStatusPaid).
		Order("t.paid_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
