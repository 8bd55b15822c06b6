package db_models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// CourseEmbedding backs the semantic search over a user's course library.
type CourseEmbedding struct {
	BaseModel
	CourseID  uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	AccountID uuid.UUID `gorm:"type:uuid;index"`

	Content   string
	Keywords  pq.StringArray  `gorm:"type:text[]"`
	Embedding pgvector.Vector `gorm:"type:vector(1536)"`

	// Populated by search queries only, never stored.
	Similarity float64 `gorm:"->;-:migration" json:"similarity,omitempty"`

	Course Course `gorm:"foreignKey:CourseID"`
}
