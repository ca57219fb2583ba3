package travel

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Request statuses. A request starts pending and moves exactly once to a
// terminal status by an advisor decision or a student cancellation.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusDenied    = "denied"
	StatusCancelled = "cancelled"
)

// Request is a travel-permission request for attending a cross-registered
// course at another campus.
type Request struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"studentId"`
	CourseID    string    `json:"courseId"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Reason      string    `json:"reason,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewRequest builds a pending request with a fresh ULID.
func NewRequest(studentID, courseID, origin, destination, reason string) (Request, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return Request{}, err
	}
	now := time.Now().UTC()
	return Request{
		ID:          id.String(),
		StudentID:   studentID,
		CourseID:    courseID,
		Origin:      origin,
		Destination: destination,
		Reason:      reason,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ValidStatus reports whether s is one of the known request statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied, StatusCancelled:
		return true
	}
	return false
}
