package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"tweettocourse/internal/models/db_models"
)

type ICourseEmbeddingRepository interface {
	CreateEmbedding(ctx context.Context, embedding *db_models.CourseEmbedding) error
	SearchByVector(ctx context.Context, accountID uuid.UUID, vector pgvector.Vector, limit int) ([]db_models.CourseEmbedding, error)
	DeleteByCourse(ctx context.Context, courseID uuid.UUID) error
}

type CourseEmbeddingRepository struct {
	db *gorm.DB
}

func NewCourseEmbeddingRepository(db *gorm.DB) ICourseEmbeddingRepository {
	return &CourseEmbeddingRepository{
		db: db,
	}
}

func (r *CourseEmbeddingRepository) CreateEmbedding(ctx context.Context, embedding *db_models.CourseEmbedding) error {
	return r.db.WithContext(ctx).Create(embedding).Error
}

func (r *CourseEmbeddingRepository) SearchByVector(ctx context.Context, accountID uuid.UUID, vector pgvector.Vector, limit int) ([]db_models.CourseEmbedding, error) {
	var results []db_models.CourseEmbedding

	if limit <= 0 || limit > 50 {
		limit = 15
	}

	// Cosine distance; closer to 0 is better.
	query := `
        SELECT *, (1 - (embedding <=> $1)) as similarity
        FROM course_embeddings
        WHERE account_id = $2 AND deleted_at IS NULL
        ORDER BY embedding <=> $1
        LIMIT $3
    `

	err := r.db.WithContext(ctx).Raw(query, vector.String(), accountID, limit).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *CourseEmbeddingRepository) DeleteByCourse(ctx context.Context, courseID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Delete(&db_models.CourseEmbedding{}).Error
}
