package response_models

import "gorm.io/datatypes"

type CourseSummary struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	SourceURL    string   `json:"source_url"`
	SourceAuthor string   `json:"source_author"`
	TweetCount   int      `json:"tweet_count"`
	Tags         []string `json:"tags,omitempty"`
	CreatedAt    int64    `json:"created_at"`
}

type CourseDetailResponse struct {
	CourseSummary
	Sections datatypes.JSON `json:"sections"`
	IsShared bool           `json:"is_shared"`
}

type CourseSearchHit struct {
	CourseID   string  `json:"course_id"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
}
