package response_models

// EntitlementSnapshot is the resolved view the UI renders upgrade prompts
// from: current tier, quota consumption and the feature map.
type EntitlementSnapshot struct {
	AccountID        string          `json:"account_id"`
	Tier             string          `json:"tier"`
	UsageCount       int             `json:"usage_count"`
	MonthlyLimit     int             `json:"monthly_limit"` // -1 means unlimited
	Unlimited        bool            `json:"unlimited"`
	RemainingQuota   int             `json:"remaining_quota"` // 0 when exhausted, -1 when unlimited
	Features         map[string]bool `json:"features"`
	UsagePeriodStart int64           `json:"usage_period_start"`
}
