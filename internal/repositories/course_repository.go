package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"tweettocourse/internal/models/db_models"
)

type ICourseRepository interface {
	Create(ctx context.Context, course *db_models.Course) error
	FindById(ctx context.Context, id string) (*db_models.Course, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]db_models.Course, error)
	DeleteOwned(ctx context.Context, id string, accountID uuid.UUID) (bool, error)
	CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error)
}

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) ICourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(ctx context.Context, course *db_models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *CourseRepository) FindById(ctx context.Context, id string) (*db_models.Course, error) {
	var course db_models.Course
	err := r.db.WithContext(ctx).First(&course, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &course, nil
}

func (r *CourseRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]db_models.Course, error) {
	var courses []db_models.Course
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) DeleteOwned(ctx context.Context, id string, accountID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", id, accountID).
		Delete(&db_models.Course{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *CourseRepository) CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db_models.Course{}).
		Where("account_id = ?", accountID).
		Count(&count).Error
	return count, err
}
