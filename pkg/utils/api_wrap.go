package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func traceID(c *gin.Context) string {
	if v, ok := c.Get("trace_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
	})
}

// HandleServiceError maps sentinel service errors onto HTTP responses so
// controllers never string-match. Quota and feature rejections are expected
// business outcomes: they get upgrade copy, not an error-level log line.
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		RespondError(c, http.StatusPaymentRequired,
			"Monthly generation limit reached. Upgrade to Pro for unlimited courses.")
	case errors.Is(err, ErrFeatureNotEntitled):
		RespondError(c, http.StatusForbidden,
			"This feature is not included in your plan. Upgrade to unlock it.")
	case errors.Is(err, ErrUnknownFeature):
		RespondError(c, http.StatusBadRequest, "Unknown feature name")
	case errors.Is(err, ErrAccountNotFound):
		RespondError(c, http.StatusNotFound, "Account not found")
	case errors.Is(err, ErrCourseNotFound):
		RespondError(c, http.StatusNotFound, "Course not found")
	case errors.Is(err, ErrPlanNotFound):
		RespondError(c, http.StatusNotFound, "Plan not found")
	case errors.Is(err, ErrEmailAlreadyExists):
		RespondError(c, http.StatusConflict, "Email already registered")
	case errors.Is(err, ErrInvalidCredentials):
		RespondError(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, ErrInvalidResetToken):
		RespondError(c, http.StatusBadRequest, "Invalid or expired reset token")
	case errors.Is(err, ErrEmptyThread):
		RespondError(c, http.StatusUnprocessableEntity, "Thread contains no usable tweets")
	case errors.Is(err, ErrInvalidPage):
		RespondError(c, http.StatusBadRequest, "Page must be greater than 0")
	case errors.Is(err, ErrInvalidPageSize):
		RespondError(c, http.StatusBadRequest, "Page size must be between 1 and 100")
	case errors.Is(err, ErrGenerationFault):
		logrus.WithError(err).Error("course generation fault")
		RespondError(c, http.StatusBadGateway, "Course generation failed, please retry")
	case errors.Is(err, ErrInvalidTier):
		logrus.WithError(err).Error("invalid tier reached service layer")
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	case errors.Is(err, ErrDatabaseError):
		logrus.WithError(err).Error("database error")
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	default:
		logrus.WithError(err).Error("unhandled service error")
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
