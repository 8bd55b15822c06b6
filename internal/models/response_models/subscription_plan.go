package response_models

import "github.com/google/uuid"

type SubscriptionPlan struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"` // e.g., "pro_monthly", "lifetime"
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	TierCode    string    `json:"tier_code"` // entitlement tier the plan grants
	Period      string    `json:"period"`    // "month" | "year" | "once"
	Price       int64     `json:"price"`     // minor units
	Currency    string    `json:"currency"`
	TrialDays   int32     `json:"trial_days"`
	IsActive    bool      `json:"is_active"`
}

type CreateCheckoutResponse struct {
	OrderCode    int64  `json:"order_code"`
	Amount       int64  `json:"amount"`
	PaymentURL   string `json:"payment_url"`
	ProviderName string `json:"provider"`
}

type SubscriptionStatusResponse struct {
	AccountID uuid.UUID `json:"account_id"`
	PlanCode  string    `json:"plan_code"`
	Status    string    `json:"status"`
	StartsAt  int64     `json:"starts_at"`
	EndsAt    int64     `json:"ends_at"`
	AutoRenew bool      `json:"auto_renew"`
}
