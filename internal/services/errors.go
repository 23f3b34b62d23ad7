package services

import (
	"errors"
	"fmt"

	apperrors "github.com/gizmo-edu/survey-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrConflict         = errors.New("resource conflict")

	// Survey specific errors
	ErrSurveyNotFound       = errors.New("survey not found")
	ErrSurveyAccessDenied   = errors.New("access denied to survey")
	ErrSurveyClosed         = errors.New("survey is closed for submissions")
	ErrSurveyNotAssigned    = errors.New("survey is not assigned to the student's section")
	ErrSurveyNotDeletable   = errors.New("survey cannot be deleted - has existing responses")
	ErrSurveyDuplicateTitle = errors.New("survey title already exists for this user")

	// Version control errors
	ErrConcurrentEditConflict = errors.New("survey was modified concurrently - retry the edit")

	// Question specific errors
	ErrQuestionNotFound       = errors.New("question not found")
	ErrQuestionNotInSurvey    = errors.New("question does not belong to this survey")
	ErrQuestionInactive       = errors.New("question is deactivated")
	ErrQuestionInvalidContent = errors.New("invalid question content for type")

	// Response specific errors
	ErrResponseNotFound  = errors.New("response not found")
	ErrAlreadySubmitted  = errors.New("response already submitted for this survey version")
	ErrResponseImmutable = errors.New("completed responses cannot be modified")

	// Section/User errors
	ErrSectionNotFound      = errors.New("section not found")
	ErrSectionDuplicateCode = errors.New("section code already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserInactive         = errors.New("user account is inactive")
	ErrStudentNoSection     = errors.New("student is not assigned to a section")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSurveyNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrResponseNotFound) ||
		errors.Is(err, ErrSectionNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrSurveyAccessDenied) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSurveyNotDeletable) ||
		errors.Is(err, ErrSurveyDuplicateTitle) ||
		errors.Is(err, ErrSectionDuplicateCode) ||
		errors.Is(err, ErrAlreadySubmitted) ||
		errors.Is(err, ErrConcurrentEditConflict) ||
		errors.Is(err, ErrResponseImmutable)
}
