package response_models

type AccountLoginResponse struct {
	Token             string `json:"token"`
	IsUserHavePremium bool   `json:"is_user_have_premium"`
}

type AccountResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Role             string `json:"role"`
	SubscriptionTier string `json:"subscription_tier"`
	UsageCount       int    `json:"usage_count"`
	LastActivityAt   int64  `json:"last_activity_at"`
}
