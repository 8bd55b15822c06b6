package feedback_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
	"tweettocourse/internal/repositories"
	"tweettocourse/internal/services"
)

var Module = fx.Provide(
	provideFeedbackRepo, provideFeedbackService,
)

func provideFeedbackRepo(db *gorm.DB) repositories.FeedbackRepositoryInterface {
	return repositories.NewFeedbackRepository(db)
}

func provideFeedbackService(feedbackRepo repositories.FeedbackRepositoryInterface, courseRepo repositories.ICourseRepository) services.FeedbackServiceInterface {
	return services.NewFeedbackService(feedbackRepo, courseRepo)
}
