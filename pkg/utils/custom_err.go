package utils

import "errors"

var (
	// Entitlement taxonomy. ErrInvalidTier is a programmer-error signal and
	// surfaces as a 500; quota/feature rejections are expected business
	// outcomes and carry upgrade copy instead of an error log.
	ErrInvalidTier        = errors.New("invalid subscription tier")
	ErrQuotaExceeded      = errors.New("monthly generation quota exceeded")
	ErrFeatureNotEntitled = errors.New("feature not included in current tier")
	ErrUnknownFeature     = errors.New("unknown feature name")

	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")

	ErrCourseNotFound  = errors.New("course not found")
	ErrEmptyThread     = errors.New("thread contains no usable tweets")
	ErrGenerationFault = errors.New("course generation failed")

	ErrPlanNotFound    = errors.New("plan not found")
	ErrInvalidPage     = errors.New("invalid page parameter")
	ErrInvalidPageSize = errors.New("invalid page size parameter")
	ErrDatabaseError   = errors.New("database error")
)
