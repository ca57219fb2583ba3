package errors

import "fmt"

// ErrorCode represents a planwell error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"      // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"            // 404
	ErrNoCandidate        ErrorCode = "NO_CANDIDATE"         // 404
	ErrAlreadyEnrolled    ErrorCode = "ALREADY_ENROLLED"     // 409
	ErrConflict           ErrorCode = "CONFLICT"             // 409
	ErrPreconditionNotMet ErrorCode = "PRECONDITION_NOT_MET" // 412
	ErrEmptySchedule      ErrorCode = "EMPTY_SCHEDULE"       // 422
	ErrInternal           ErrorCode = "INTERNAL"             // 500
)

// PlanError represents a structured error with code, status, and details.
type PlanError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *PlanError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *PlanError {
	return &PlanError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewCourseNotFound creates a 404 error naming the requested course ID.
func NewCourseNotFound(courseID string) *PlanError {
	return &PlanError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("course not found: %s", courseID),
		Details: map[string]any{"course_id": courseID},
	}
}

// NewNotInSchedule creates a 404 error for removing a course that is not in
// the user's schedule.
func NewNotInSchedule(courseID string) *PlanError {
	return &PlanError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("course %q not found in schedule", courseID),
		Details: map[string]any{"course_id": courseID},
	}
}

// NewTimeNotFound creates a 404 error for a shuttle time absent from a
// stop's timetable.
func NewTimeNotFound(stop string) *PlanError {
	return &PlanError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("time not found at %s", stop),
		Details: map[string]any{"stop": stop},
	}
}

// NewRequestNotFound creates a 404 error for a missing travel request.
func NewRequestNotFound(requestID string) *PlanError {
	return &PlanError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("travel request not found: %s", requestID),
		Details: map[string]any{"request_id": requestID},
	}
}

// NewNoCandidate creates a 404 error for an exhausted recommendation
// pipeline.
func NewNoCandidate() *PlanError {
	return &PlanError{
		Code:    ErrNoCandidate,
		Status:  404,
		Message: "no suitable course found",
	}
}

// NewAlreadyEnrolled creates a 409 error for a duplicate enrollment attempt.
func NewAlreadyEnrolled(courseID string) *PlanError {
	return &PlanError{
		Code:    ErrAlreadyEnrolled,
		Status:  409,
		Message: fmt.Sprintf("course %q is already in the schedule", courseID),
		Details: map[string]any{"course_id": courseID},
	}
}

// NewConflict creates a 409 error for general conflicts.
func NewConflict(msg string) *PlanError {
	return &PlanError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewPreferencesNotSet creates a 412 error for recommendation actions
// attempted before preferences exist.
func NewPreferencesNotSet(userID string) *PlanError {
	return &PlanError{
		Code:    ErrPreconditionNotMet,
		Status:  412,
		Message: fmt.Sprintf("ai preferences not set for user %q", userID),
		Details: map[string]any{"user_id": userID},
	}
}

// NewRequirementNotApplicable creates a 412 error for a requirement code the
// rules oracle never returned for this user.
func NewRequirementNotApplicable(code string) *PlanError {
	return &PlanError{
		Code:    ErrPreconditionNotMet,
		Status:  412,
		Message: fmt.Sprintf("requirement %q is not valid for this user", code),
		Details: map[string]any{"code": code},
	}
}

// NewCourseNotInSchedule creates a 412 error for follow-up suggestions on a
// course that was never enrolled.
func NewCourseNotInSchedule(courseID string) *PlanError {
	return &PlanError{
		Code:    ErrPreconditionNotMet,
		Status:  412,
		Message: fmt.Sprintf("course %q is not in the schedule", courseID),
		Details: map[string]any{"course_id": courseID},
	}
}

// NewEmptySchedule creates a 422 error for listing a schedule with no
// courses. Emptiness is a failure, not a zero-length success, so callers
// can distinguish "never populated" from "has courses".
func NewEmptySchedule(userID string) *PlanError {
	return &PlanError{
		Code:    ErrEmptySchedule,
		Status:  422,
		Message: "schedule is empty",
		Details: map[string]any{"user_id": userID},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *PlanError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &PlanError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a PlanError with the given code.
func Is(err error, code ErrorCode) bool {
	if pErr, ok := err.(*PlanError); ok {
		return pErr.Code == code
	}
	return false
}
