package response_models

import (
	"time"

	"github.com/google/uuid"
)

type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	// "day" | "week" | "month"
	Interval string `json:"interval"`
	// Timezone used for bucketing (defaults to UTC if empty)
	Timezone string `json:"timezone,omitempty"`
}

type KPIBlock struct {
	TotalAccounts         int64 `json:"total_accounts"`
	NewAccounts           int64 `json:"new_accounts"`
	TotalCourses          int64 `json:"total_courses"`
	GenerationsThisPeriod int64 `json:"generations_this_period"`
	ActiveSubscriptions   int64 `json:"active_subscriptions"`
	TrialingSubscriptions int64 `json:"trialing_subscriptions"`
	CanceledSubscriptions int64 `json:"canceled_subscriptions"`
	ExpiredSubscriptions  int64 `json:"expired_subscriptions"`
}

type SeriesPoint struct {
	Bucket time.Time `json:"bucket"`
	Value  int64     `json:"value"`
}

type RevenueSeries struct {
	Currency   string        `json:"currency"`
	Points     []SeriesPoint `json:"points"`
	TotalMinor int64         `json:"total_minor"`
}

type CountSeries struct {
	Points []SeriesPoint `json:"points"`
}

type PlanMixItem struct {
	PlanID     uuid.UUID `json:"plan_id"`
	PlanCode   string    `json:"plan_code"`
	PlanName   string    `json:"plan_name"`
	TierCode   string    `json:"tier_code"`
	Count      int64     `json:"count"`
	Percent    float64   `json:"percent"`
	PriceMinor int64     `json:"price_minor"`
}

type PlanMix struct {
	Items []PlanMixItem `json:"items"`
}

type TopAuthor struct {
	Author string `json:"author"`
	Count  int64  `json:"count"`
}

type RecentPayment struct {
	ID            uuid.UUID  `json:"id"`
	PaidAt        *time.Time `json:"paid_at"`
	AmountMinor   int64      `json:"amount_minor"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	Provider      string     `json:"provider"`
	ProviderTxnID string     `json:"provider_txn_id"`
	AccountEmail  string     `json:"account_email"`
}

type DashboardReport struct {
	Range          TimeRange       `json:"range"`
	KPIs           KPIBlock        `json:"kpis"`
	Revenue        RevenueSeries   `json:"revenue"`
	NewUsers       CountSeries     `json:"new_users"`
	PlanMix        PlanMix         `json:"plan_mix"`
	TopAuthors     []TopAuthor     `json:"top_authors"`
	RecentPayments []RecentPayment `json:"recent_payments"`
}
