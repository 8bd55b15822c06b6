package course_fx

import (
	"log"
	"os"

	"go.uber.org/fx"
	"gorm.io/gorm"
	"tweettocourse/internal/repositories"
	"tweettocourse/internal/services"
	"tweettocourse/pkg/utils"
)

var Module = fx.Provide(
	provideCourseRepo, provideEmbeddingRepo,
	provideThreadFetcher, provideCourseGenerator,
	provideCourseService,
)

func provideCourseRepo(db *gorm.DB) repositories.ICourseRepository {
	return repositories.NewCourseRepository(db)
}

func provideEmbeddingRepo(db *gorm.DB) repositories.ICourseEmbeddingRepository {
	return repositories.NewCourseEmbeddingRepository(db)
}

func provideThreadFetcher() utils.ThreadFetcherInterface {
	return utils.NewThreadFetcherClient(os.Getenv("THREAD_FETCHER_URL"))
}

// LLM_PROVIDER selects "openai" (default) or "gemini".
func provideCourseGenerator() utils.CourseGeneratorInterface {
	provider := os.Getenv("LLM_PROVIDER")
	if provider == "" {
		provider = "openai"
	}

	generator, err := utils.NewCourseGenerator(provider, os.Getenv("LLM_API_KEY"), os.Getenv("LLM_MODEL"))
	if err != nil {
		log.Printf("Error initializing course generator: %v", err)
	}
	return generator
}

func provideCourseService(
	courseRepo repositories.ICourseRepository,
	embeddingRepo repositories.ICourseEmbeddingRepository,
	accountRepo repositories.AccountRepository,
	entitlements services.EntitlementServiceInterface,
	fetcher utils.ThreadFetcherInterface,
	generator utils.CourseGeneratorInterface,
) services.CourseServiceInterface {
	return services.NewCourseService(courseRepo, embeddingRepo, accountRepo, entitlements, fetcher, generator)
}
