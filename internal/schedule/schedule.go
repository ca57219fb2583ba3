// Package schedule owns per-user enrolled-course state and drives the
// AI-assisted course suggestion pipeline.
package schedule

import (
	"context"
	"strings"
	"sync"

	"github.com/planwell/planwell/internal/catalog"
	"github.com/planwell/planwell/internal/course"
	"github.com/planwell/planwell/internal/errors"
	"github.com/planwell/planwell/internal/recommend"
)

// Catalog is the slice of the course catalog the engine needs.
type Catalog interface {
	GetByID(courseID string) (course.Course, error)
	Search(query string, filters catalog.Filters) []course.Course
}

// userState is one user's schedule: an insertion-ordered course map plus
// AI preference and suggestion state. Created lazily on first touch and
// owned exclusively by the engine.
type userState struct {
	courses    map[string]course.Course
	order      []string
	prefs      *recommend.Preferences
	suggestion *course.Course
}

// Engine manages schedules for all users. Per-user entries are the
// isolation boundary: operations for different users never interact.
type Engine struct {
	catalog Catalog
	stages  []recommend.Recommender

	// validateEnrollment re-checks catalog existence before AddCourse
	// inserts a caller-supplied course.
	validateEnrollment bool

	// invalidateOnChange clears a cached suggestion when the course set
	// mutates. Off by default: historically only a preference change
	// invalidated the suggestion, which can leave it stale after an
	// add/remove. The knob makes that policy an explicit choice.
	invalidateOnChange bool

	mu    sync.Mutex
	users map[string]*userState
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecommenders sets the strategy chain tried in order by SuggestCourse.
// The final first-fit stage is appended automatically.
func WithRecommenders(stages ...recommend.Recommender) Option {
	return func(e *Engine) { e.stages = stages }
}

// WithEnrollmentValidation makes AddCourse verify the course still exists
// in the catalog before inserting it.
func WithEnrollmentValidation() Option {
	return func(e *Engine) { e.validateEnrollment = true }
}

// WithSuggestionInvalidation clears the cached suggestion on every
// course-set mutation, not just on preference changes.
func WithSuggestionInvalidation() Option {
	return func(e *Engine) { e.invalidateOnChange = true }
}

// New creates an Engine over the given catalog.
func New(cat Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: cat,
		users:   make(map[string]*userState),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.stages = append(e.stages, recommend.FirstFit{})
	return e
}

func (e *Engine) state(userID string) *userState {
	s, ok := e.users[userID]
	if !ok {
		s = &userState{courses: make(map[string]course.Course)}
		e.users[userID] = s
	}
	return s
}

// AddCourse inserts a course into the user's schedule. Fails with
// AlreadyEnrolled when the ID is present. With enrollment validation on,
// the course must also still exist in the catalog.
func (e *Engine) AddCourse(userID string, c course.Course) error {
	if e.validateEnrollment {
		if _, err := e.catalog.GetByID(c.CourseID); err != nil {
			return err
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.state(userID)
	if _, dup := s.courses[c.CourseID]; dup {
		return errors.NewAlreadyEnrolled(c.CourseID)
	}
	s.courses[c.CourseID] = c
	s.order = append(s.order, c.CourseID)
	if e.invalidateOnChange {
		s.suggestion = nil
	}
	return nil
}

// AddCourseByID resolves the ID through the catalog (propagating its
// NotFound failure) and enrolls the course.
func (e *Engine) AddCourseByID(userID, courseID string) error {
	c, err := e.catalog.GetByID(courseID)
	if err != nil {
		return err
	}
	return e.AddCourse(userID, c)
}

// RemoveCourse deletes a course from the user's schedule, failing with
// NotFound when absent.
func (e *Engine) RemoveCourse(userID, courseID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.state(userID)
	if _, ok := s.courses[courseID]; !ok {
		return errors.NewNotInSchedule(courseID)
	}
	delete(s.courses, courseID)
	for i, id := range s.order {
		if id == courseID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if e.invalidateOnChange {
		s.suggestion = nil
	}
	return nil
}

// ListSchedule returns a copy of the user's enrolled courses in insertion
// order. An empty schedule is a failure, not a zero-length success.
func (e *Engine) ListSchedule(userID string) ([]course.Course, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.state(userID)
	if len(s.courses) == 0 {
		return nil, errors.NewEmptySchedule(userID)
	}
	return s.list(), nil
}

func (s *userState) list() []course.Course {
	out := make([]course.Course, 0, len(s.courses))
	for _, id := range s.order {
		out = append(out, s.courses[id])
	}
	return out
}

// Clear empties the user's schedule. Always succeeds, including when the
// schedule is already empty.
func (e *Engine) Clear(userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.state(userID)
	s.courses = make(map[string]course.Course)
	s.order = nil
	if e.invalidateOnChange {
		s.suggestion = nil
	}
}

// SetPreferences overwrites the user's AI preference record wholesale and
// invalidates any cached suggestion — the two are coupled.
func (e *Engine) SetPreferences(userID, major string, interests, availability []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.state(userID)
	s.prefs = &recommend.Preferences{
		Major:        major,
		Interests:    append([]string(nil), interests...),
		Availability: append([]string(nil), availability...),
	}
	s.suggestion = nil
}

// Suggestion returns the user's cached suggestion, if any.
func (e *Engine) Suggestion(userID string) *course.Course {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.state(userID)
	if s.suggestion == nil {
		return nil
	}
	copied := *s.suggestion
	return &copied
}

// SuggestCourse runs the recommendation pipeline for the user. The
// candidate pool is every catalog course minus the user's enrolled set and
// the caller-supplied exclude list (IDs normalized by trim+uppercase).
// Preferences must be set first. The winning pick is cached as the user's
// current suggestion.
func (e *Engine) SuggestCourse(ctx context.Context, userID string, excludeIDs []string) (course.Course, error) {
	e.mu.Lock()
	s := e.state(userID)
	if s.prefs == nil {
		e.mu.Unlock()
		return course.Course{}, errors.NewPreferencesNotSet(userID)
	}
	prefs := *s.prefs
	enrolled := make(map[string]bool, len(s.courses))
	for id := range s.courses {
		enrolled[id] = true
	}
	e.mu.Unlock()

	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[normalizeID(id)] = true
	}

	pool := make([]course.Course, 0)
	for _, c := range e.catalog.Search("", catalog.Filters{}) {
		if enrolled[c.CourseID] || excluded[normalizeID(c.CourseID)] {
			continue
		}
		pool = append(pool, c)
	}

	pick := recommend.Choose(ctx, userID, pool, prefs, e.stages)
	if pick == nil {
		return course.Course{}, errors.NewNoCandidate()
	}

	e.mu.Lock()
	e.state(userID).suggestion = pick
	e.mu.Unlock()

	return *pick, nil
}

// UpdateAfterAdd re-runs the suggestion pipeline after the user enrolls in
// a course: "now that you added X, here's what to consider next". The
// added course must already be in the schedule and preferences must be
// set.
func (e *Engine) UpdateAfterAdd(ctx context.Context, userID string, added course.Course) (course.Course, error) {
	e.mu.Lock()
	s := e.state(userID)
	if s.prefs == nil {
		e.mu.Unlock()
		return course.Course{}, errors.NewPreferencesNotSet(userID)
	}
	if _, ok := s.courses[added.CourseID]; !ok {
		e.mu.Unlock()
		return course.Course{}, errors.NewCourseNotInSchedule(added.CourseID)
	}
	e.mu.Unlock()

	return e.SuggestCourse(ctx, userID, nil)
}

func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
