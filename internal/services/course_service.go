package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"tweettocourse/internal/models/db_models"
	"tweettocourse/internal/models/response_models"
	"tweettocourse/internal/repositories"
	"tweettocourse/pkg/utils"
)

type CourseServiceInterface interface {
	GenerateFromThread(ctx context.Context, accountID uuid.UUID, threadURL string) (*response_models.CourseDetailResponse, error)
	GetCourseById(ctx context.Context, accountID uuid.UUID, courseID string) (*response_models.CourseDetailResponse, error)
	ListCourses(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]response_models.CourseSummary, error)
	DeleteCourse(ctx context.Context, accountID uuid.UUID, courseID string) error
	SearchCourses(ctx context.Context, accountID uuid.UUID, query string, limit int) ([]response_models.CourseSearchHit, error)
}

type CourseService struct {
	courseRepo    repositories.ICourseRepository
	embeddingRepo repositories.ICourseEmbeddingRepository
	accountRepo   repositories.AccountRepository
	entitlements  EntitlementServiceInterface
	fetcher       utils.ThreadFetcherInterface
	generator     utils.CourseGeneratorInterface
}

func NewCourseService(
	courseRepo repositories.ICourseRepository,
	embeddingRepo repositories.ICourseEmbeddingRepository,
	accountRepo repositories.AccountRepository,
	entitlements EntitlementServiceInterface,
	fetcher utils.ThreadFetcherInterface,
	generator utils.CourseGeneratorInterface,
) CourseServiceInterface {
	return &CourseService{
		courseRepo:    courseRepo,
		embeddingRepo: embeddingRepo,
		accountRepo:   accountRepo,
		entitlements:  entitlements,
		fetcher:       fetcher,
		generator:     generator,
	}
}

// GenerateFromThread is the quota-consuming pipeline: pre-check, fetch,
// structure via LLM, then the atomic RecordUsage gate, then persist. If the
// gate rejects, nothing has been written.
func (s *CourseService) GenerateFromThread(ctx context.Context, accountID uuid.UUID, threadURL string) (*response_models.CourseDetailResponse, error) {
	account, err := s.accountRepo.FindById(ctx, accountID.String())
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}
	if !s.entitlements.CanGenerate(account) {
		// Cheap early rejection; the authoritative check is RecordUsage.
		return nil, utils.ErrQuotaExceeded
	}

	thread, err := s.fetcher.FetchThread(ctx, threadURL)
	if err != nil {
		if errors.Is(err, utils.ErrEmptyThread) {
			return nil, utils.ErrEmptyThread
		}
		logrus.WithError(err).WithField("url", threadURL).Warn("thread fetch failed")
		return nil, utils.ErrGenerationFault
	}

	generated, err := s.generator.GenerateCourse(ctx, thread.Author, thread.Tweets)
	if err != nil {
		logrus.WithError(err).Warn("LLM course generation failed")
		return nil, utils.ErrGenerationFault
	}

	// The atomic gate. Concurrent submissions for the same account can pass
	// the early check above; only one wins here when one slot remains.
	if _, err := s.entitlements.RecordUsage(ctx, accountID); err != nil {
		return nil, err
	}

	sectionsJSON, err := json.Marshal(generated.Sections)
	if err != nil {
		return nil, utils.ErrGenerationFault
	}

	course := &db_models.Course{
		AccountID:    accountID,
		Title:        generated.Title,
		SourceURL:    thread.URL,
		SourceAuthor: thread.Author,
		TweetCount:   len(thread.Tweets),
		Tags:         generated.Tags,
		Sections:     sectionsJSON,
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, utils.ErrDatabaseError
	}

	s.indexCourse(ctx, course, generated)

	return courseToDetail(course), nil
}

// indexCourse stores the search embedding. Failures are logged, not
// surfaced: the course itself is already durable.
func (s *CourseService) indexCourse(ctx context.Context, course *db_models.Course, generated *utils.GeneratedCourse) {
	var b strings.Builder
	b.WriteString(generated.Title)
	b.WriteString("\n")
	b.WriteString(generated.Summary)
	for _, section := range generated.Sections {
		b.WriteString("\n")
		b.WriteString(section.Title)
		b.WriteString("\n")
		b.WriteString(section.Summary)
	}

	vector, err := s.generator.GetEmbedding(ctx, b.String())
	if err != nil {
		logrus.WithError(err).WithField("course_id", course.ID).Warn("embedding failed, course not indexed")
		return
	}

	embedding := &db_models.CourseEmbedding{
		CourseID:  course.ID,
		AccountID: course.AccountID,
		Content:   generated.Summary,
		Keywords:  generated.Tags,
		Embedding: vector,
	}
	if err := s.embeddingRepo.CreateEmbedding(ctx, embedding); err != nil {
		logrus.WithError(err).WithField("course_id", course.ID).Warn("failed to store course embedding")
	}
}

func (s *CourseService) GetCourseById(ctx context.Context, accountID uuid.UUID, courseID string) (*response_models.CourseDetailResponse, error) {
	course, err := s.courseRepo.FindById(ctx, courseID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if course == nil {
		return nil, utils.ErrCourseNotFound
	}
	if course.AccountID != accountID && !course.IsShared {
		return nil, utils.ErrCourseNotFound
	}

	return courseToDetail(course), nil
}

func (s *CourseService) ListCourses(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]response_models.CourseSummary, error) {
	if page < 1 {
		return nil, utils.ErrInvalidPage
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, utils.ErrInvalidPageSize
	}

	courses, err := s.courseRepo.ListByAccount(ctx, accountID, page, pageSize)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	result := make([]response_models.CourseSummary, 0, len(courses))
	for i := range courses {
		result = append(result, courseToSummary(&courses[i]))
	}
	return result, nil
}

func (s *CourseService) DeleteCourse(ctx context.Context, accountID uuid.UUID, courseID string) error {
	deleted, err := s.courseRepo.DeleteOwned(ctx, courseID, accountID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if !deleted {
		return utils.ErrCourseNotFound
	}

	if id, err := uuid.Parse(courseID); err == nil {
		if err := s.embeddingRepo.DeleteByCourse(ctx, id); err != nil {
			logrus.WithError(err).WithField("course_id", courseID).Warn("failed to drop course embedding")
		}
	}
	return nil
}

func (s *CourseService) SearchCourses(ctx context.Context, accountID uuid.UUID, query string, limit int) ([]response_models.CourseSearchHit, error) {
	vector, err := s.generator.GetEmbedding(ctx, query)
	if err != nil {
		return nil, utils.ErrGenerationFault
	}

	hits, err := s.embeddingRepo.SearchByVector(ctx, accountID, vector, limit)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	result := make([]response_models.CourseSearchHit, 0, len(hits))
	for _, hit := range hits {
		course, err := s.courseRepo.FindById(ctx, hit.CourseID.String())
		if err != nil || course == nil {
			continue
		}
		result = append(result, response_models.CourseSearchHit{
			CourseID:   hit.CourseID.String(),
			Title:      course.Title,
			Similarity: hit.Similarity,
		})
	}
	return result, nil
}

func courseToSummary(course *db_models.Course) response_models.CourseSummary {
	return response_models.CourseSummary{
		ID:           course.ID.String(),
		Title:        course.Title,
		SourceURL:    course.SourceURL,
		SourceAuthor: course.SourceAuthor,
		TweetCount:   course.TweetCount,
		Tags:         course.Tags,
		CreatedAt:    course.CreatedAt,
	}
}

func courseToDetail(course *db_models.Course) *response_models.CourseDetailResponse {
	return &response_models.CourseDetailResponse{
		CourseSummary: courseToSummary(course),
		Sections:      course.Sections,
		IsShared:      course.IsShared,
	}
}
