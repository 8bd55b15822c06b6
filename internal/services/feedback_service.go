package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"tweettocourse/internal/models/db_models"
	"tweettocourse/internal/repositories"
	"tweettocourse/pkg/utils"
)

type FeedbackServiceInterface interface {
	AddFeedback(ctx context.Context, userID uuid.UUID, courseID string, comment string, rating int) error
	GetFeedback(ctx context.Context, page, pageSize int) ([]db_models.Feedback, error)
}

type FeedbackService struct {
	feedbackRepo repositories.FeedbackRepositoryInterface
	courseRepo   repositories.ICourseRepository
}

func NewFeedbackService(feedbackRepo repositories.FeedbackRepositoryInterface, courseRepo repositories.ICourseRepository) FeedbackServiceInterface {
	return &FeedbackService{
		feedbackRepo: feedbackRepo,
		courseRepo:   courseRepo,
	}
}

func (s *FeedbackService) AddFeedback(ctx context.Context, userID uuid.UUID, courseID string, comment string, rating int) error {
	if rating < 1 || rating > 5 {
		return errors.New("rating must be between 1 and 5")
	}

	course, err := s.courseRepo.FindById(ctx, courseID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if course == nil {
		return utils.ErrCourseNotFound
	}

	feedback := &db_models.Feedback{
		UserID:   userID,
		CourseID: course.ID,
		Comment:  comment,
		Rating:   rating,
	}

	return s.feedbackRepo.CreateFeedback(ctx, feedback)
}

func (s *FeedbackService) GetFeedback(ctx context.Context, page, pageSize int) ([]db_models.Feedback, error) {
	return s.feedbackRepo.ListFeedback(ctx, page, pageSize)
}
