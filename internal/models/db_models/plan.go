package db_models

import (
	"gorm.io/datatypes"
)

type Plan struct {
	BaseModel
	Code        string `gorm:"uniqueIndex"` // e.g., "pro_monthly", "lifetime"
	Name        string
	Description *string

	// TierCode maps a billable plan onto the entitlement tier it grants.
	TierCode SubscriptionTier `gorm:"type:varchar(16)"`

	Period     BillingPeriod `gorm:"type:billing_period"` // "month" | "year" | "once"
	PriceMinor int64         // 999 = $9.99
	Currency   string        `gorm:"size:3"` // "USD", "VND"
	TrialDays  int32         `gorm:"default:0"`
	IsActive   bool          `gorm:"default:true"`

	Metadata datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
}
