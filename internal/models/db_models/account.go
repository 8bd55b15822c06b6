package db_models

type Account struct {
	BaseModel
	Name         string
	Email        string `gorm:"unique"`
	PasswordHash string
	Role         string `gorm:"default:user"`

	// Entitlement state. UsageCount is the authoritative monthly counter;
	// it is only ever mutated through the entitlement service's atomic
	// operations, never by a direct field write.
	SubscriptionTier SubscriptionTier `gorm:"type:varchar(16);default:free;index"`
	UsageCount       int              `gorm:"default:0;check:usage_count >= 0"`
	UsagePeriodStart int64            `gorm:"default:0"`
	LastActivityAt   int64            `gorm:"default:0"`

	Courses []Course
}
