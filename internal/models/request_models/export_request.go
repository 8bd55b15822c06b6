package request_models

type ExportPDFRequest struct {
	CourseID string `json:"course_id" binding:"required,uuid4"`

	// Branding is honoured only for tiers with the custom branding feature.
	BrandName  string `json:"brand_name" binding:"omitempty,max=60"`
	BrandColor string `json:"brand_color" binding:"omitempty,hexcolor"`
}

type ExportNotionRequest struct {
	CourseID     string `json:"course_id" binding:"required,uuid4"`
	NotionToken  string `json:"notion_token" binding:"required"`
	ParentPageID string `json:"parent_page_id" binding:"required"`
}
