package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"tweettocourse/internal/models/request_models"
	"tweettocourse/internal/services"
	"tweettocourse/pkg/utils"
)

type ExportController struct {
	exportService services.ExportServiceInterface
}

func NewExportController(exportService services.ExportServiceInterface) *ExportController {
	return &ExportController{
		exportService: exportService,
	}
}

// ExportPDF godoc
// @Summary Export a course as PDF
// @Description Renders an owned course into a downloadable PDF. Branding and watermark removal follow the caller's tier.
// @Tags Exports
// @Accept json
// @Produce application/pdf
// @Param request body request_models.ExportPDFRequest true "PDF export payload"
// @Success 200 {file} binary
// @Failure 403 {object} utils.APIResponse
// @Security BearerAuth
// @Router /exports/pdf [post]
func (e *ExportController) ExportPDF(c *gin.Context) {
	var req request_models.ExportPDFRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	data, filename, err := e.exportService.ExportPDF(c.Request.Context(), userID, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// ExportNotion godoc
// @Summary Export a course to Notion
// @Description Creates a Notion page under the given parent from an owned course
// @Tags Exports
// @Accept json
// @Produce json
// @Param request body request_models.ExportNotionRequest true "Notion export payload"
// @Success 200 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Security BearerAuth
// @Router /exports/notion [post]
func (e *ExportController) ExportNotion(c *gin.Context) {
	var req request_models.ExportNotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	pageURL, err := e.exportService.ExportNotion(c.Request.Context(), userID, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"page_url": pageURL}, "Course exported to Notion")
}
