package request_models

type GenerateCourseRequest struct {
	ThreadURL string `json:"thread_url" binding:"required,url"`
}

type SearchCoursesRequest struct {
	Query string `json:"query" binding:"required,min=2"`
	Limit int    `json:"limit" binding:"omitempty,min=1,max=50"`
}

type CreateFeedbackRequest struct {
	CourseID string `json:"course_id" binding:"required,uuid4"`
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Comment  string `json:"comment" binding:"required,min=3,max=2000"`
}
