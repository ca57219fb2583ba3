package errors

import (
	"fmt"
	"testing"
)

func TestPlanError_Error(t *testing.T) {
	err := &PlanError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "course not found: CS-101",
	}

	expected := "NOT_FOUND: course not found: CS-101"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewCourseNotFound(t *testing.T) {
	err := NewCourseNotFound("CS-220-01-FA25")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["course_id"] != "CS-220-01-FA25" {
		t.Errorf("Details[course_id] = %v, want CS-220-01-FA25", err.Details["course_id"])
	}
	want := "course not found: CS-220-01-FA25"
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
}

func TestNewAlreadyEnrolled(t *testing.T) {
	err := NewAlreadyEnrolled("CS-101")

	if err.Code != ErrAlreadyEnrolled {
		t.Errorf("Code = %q, want %q", err.Code, ErrAlreadyEnrolled)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
}

func TestNewPreferencesNotSet(t *testing.T) {
	err := NewPreferencesNotSet("u1")

	if err.Code != ErrPreconditionNotMet {
		t.Errorf("Code = %q, want %q", err.Code, ErrPreconditionNotMet)
	}
	if err.Status != 412 {
		t.Errorf("Status = %d, want 412", err.Status)
	}
	if err.Details["user_id"] != "u1" {
		t.Errorf("Details[user_id] = %v, want u1", err.Details["user_id"])
	}
}

func TestNewRequirementNotApplicable(t *testing.T) {
	err := NewRequirementNotApplicable("LAB")

	if err.Code != ErrPreconditionNotMet {
		t.Errorf("Code = %q, want %q", err.Code, ErrPreconditionNotMet)
	}
	if err.Details["code"] != "LAB" {
		t.Errorf("Details[code] = %v, want LAB", err.Details["code"])
	}
}

func TestNewEmptySchedule(t *testing.T) {
	err := NewEmptySchedule("u1")

	if err.Code != ErrEmptySchedule {
		t.Errorf("Code = %q, want %q", err.Code, ErrEmptySchedule)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
	}
}

func TestNewNoCandidate(t *testing.T) {
	err := NewNoCandidate()

	if err.Code != ErrNoCandidate {
		t.Errorf("Code = %q, want %q", err.Code, ErrNoCandidate)
	}
	if err.Message != "no suitable course found" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("db exploded"))
	if err.Code != ErrInternal || err.Status != 500 {
		t.Errorf("got %q/%d, want INTERNAL/500", err.Code, err.Status)
	}
	if err.Message != "db exploded" {
		t.Errorf("Message = %q", err.Message)
	}

	nilErr := NewInternal(nil)
	if nilErr.Message != "internal error" {
		t.Errorf("nil Message = %q, want internal error", nilErr.Message)
	}
}

func TestIs(t *testing.T) {
	err := NewCourseNotFound("CS-101")

	if !Is(err, ErrNotFound) {
		t.Error("Is should match ErrNotFound")
	}
	if Is(err, ErrConflict) {
		t.Error("Is should not match ErrConflict")
	}
	if Is(fmt.Errorf("plain"), ErrNotFound) {
		t.Error("Is should not match a plain error")
	}
	if Is(nil, ErrNotFound) {
		t.Error("Is should not match nil")
	}
}
