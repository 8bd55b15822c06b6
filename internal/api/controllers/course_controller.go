package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"tweettocourse/internal/models/request_models"
	"tweettocourse/internal/services"
	"tweettocourse/pkg/utils"
)

type CourseController struct {
	courseService services.CourseServiceInterface
}

func NewCourseController(courseService services.CourseServiceInterface) *CourseController {
	return &CourseController{
		courseService: courseService,
	}
}

// GenerateCourse godoc
// @Summary Generate a course from a thread
// @Description Fetches the thread, structures it into a course and consumes one generation from the caller's quota
// @Tags Courses
// @Accept json
// @Produce json
// @Param request body request_models.GenerateCourseRequest true "Generation payload"
// @Success 200 {object} utils.APIResponse
// @Failure 402 {object} utils.APIResponse
// @Security BearerAuth
// @Router /courses/generate [post]
func (cc *CourseController) GenerateCourse(c *gin.Context) {
	var req request_models.GenerateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	course, err := cc.courseService.GenerateFromThread(c.Request.Context(), userID, req.ThreadURL)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, course, "Course generated successfully")
}

// GetCourse godoc
// @Summary Get a course
// @Description Fetch a single course the caller owns (or a shared one)
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /courses/{id} [get]
func (cc *CourseController) GetCourse(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	course, err := cc.courseService.GetCourseById(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, course, "Course fetched successfully")
}

// ListCourses godoc
// @Summary List the caller's courses
// @Description Paged list of the caller's generated courses, newest first
// @Tags Courses
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 10, max 100)"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /courses [get]
func (cc *CourseController) ListCourses(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	courses, err := cc.courseService.ListCourses(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, courses, "Courses fetched successfully")
}

// DeleteCourse godoc
// @Summary Delete a course
// @Description Soft-deletes a course the caller owns, along with its search index entry
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /courses/{id} [delete]
func (cc *CourseController) DeleteCourse(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	if err := cc.courseService.DeleteCourse(c.Request.Context(), userID, c.Param("id")); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Course deleted successfully")
}

// SearchCourses godoc
// @Summary Search the caller's courses
// @Description Semantic search over the caller's course library
// @Tags Courses
// @Accept json
// @Produce json
// @Param request body request_models.SearchCoursesRequest true "Search payload"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /courses/search [post]
func (cc *CourseController) SearchCourses(c *gin.Context) {
	var req request_models.SearchCoursesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	limit := req.Limit
	if limit == 0 {
		limit = 10
	}

	hits, err := cc.courseService.SearchCourses(c.Request.Context(), userID, req.Query, limit)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, hits, "Search completed successfully")
}
