package db_models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type Course struct {
	BaseModel
	AccountID uuid.UUID `gorm:"index"`

	Title        string
	SourceURL    string
	SourceAuthor string `gorm:"index"`
	TweetCount   int

	Tags pq.StringArray `gorm:"type:text[]"`

	// Ordered course sections as produced by the generator:
	// [{"title": "...", "summary": "...", "takeaways": ["..."]}]
	Sections datatypes.JSON `gorm:"type:jsonb;default:'[]'"`

	IsShared bool `gorm:"default:false"`

	Account Account `gorm:"foreignKey:AccountID"`
}
