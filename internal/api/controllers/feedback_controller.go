package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"tweettocourse/internal/models/request_models"
	"tweettocourse/internal/services"
	"tweettocourse/pkg/utils"
)

type FeedbackController struct {
	feedbackService services.FeedbackServiceInterface
}

func NewFeedbackController(feedbackService services.FeedbackServiceInterface) *FeedbackController {
	return &FeedbackController{
		feedbackService: feedbackService,
	}
}

// CreateFeedback godoc
// @Summary Leave feedback on a course
// @Description Stores a 1-5 rating and a comment for a generated course
// @Tags Feedback
// @Accept json
// @Produce json
// @Param request body request_models.CreateFeedbackRequest true "Feedback payload"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /feedback [post]
func (f *FeedbackController) CreateFeedback(c *gin.Context) {
	var req request_models.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	if err := f.feedbackService.AddFeedback(c.Request.Context(), userID, req.CourseID, req.Comment, req.Rating); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Feedback recorded successfully")
}

// GetFeedback godoc
// @Summary List feedback
// @Description Paged list of user feedback, newest first
// @Tags Feedback
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20)"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/feedback [get]
func (f *FeedbackController) GetFeedback(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	feedback, err := f.feedbackService.GetFeedback(c.Request.Context(), page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, feedback, "Feedback fetched successfully")
}
