package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHandleServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{ErrQuotaExceeded, http.StatusPaymentRequired},
		{ErrFeatureNotEntitled, http.StatusForbidden},
		{ErrUnknownFeature, http.StatusBadRequest},
		{ErrAccountNotFound, http.StatusNotFound},
		{ErrCourseNotFound, http.StatusNotFound},
		{ErrPlanNotFound, http.StatusNotFound},
		{ErrEmailAlreadyExists, http.StatusConflict},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrEmptyThread, http.StatusUnprocessableEntity},
		{ErrInvalidTier, http.StatusInternalServerError},
		{ErrDatabaseError, http.StatusInternalServerError},
		{errors.New("something unexpected"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			recorder := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(recorder)

			HandleServiceError(c, tt.err)
			assert.Equal(t, tt.wantStatus, recorder.Code)

			var body APIResponse
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, "error", body.Status)
			assert.Equal(t, tt.wantStatus, body.Code)
		})
	}
}

// Wrapped sentinels must still map: services add context with %w.
func TestHandleServiceError_WrappedQuota(t *testing.T) {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	HandleServiceError(c, fmt.Errorf("record usage: %w", ErrQuotaExceeded))
	assert.Equal(t, http.StatusPaymentRequired, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Upgrade to Pro")
}
