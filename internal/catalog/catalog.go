// Package catalog owns the authoritative set of offered courses. It ingests
// raw records into normalized Course values, indexes them by ID, and answers
// point lookups and filtered searches.
package catalog

import (
	"strings"
	"sync"

	"github.com/planwell/planwell/internal/course"
	"github.com/planwell/planwell/internal/errors"
)

// Catalog indexes courses by ID. All methods are safe for concurrent use;
// Load replaces the entire indexed set atomically from the caller's
// perspective.
type Catalog struct {
	mu    sync.RWMutex
	byID  map[string]course.Course
	order []string
}

// New creates a Catalog preloaded with the given courses.
func New(initial []course.Course) *Catalog {
	c := &Catalog{}
	c.Load(initial)
	return c
}

// FromRawRecords builds a Catalog by running raw records through the
// ingestion adapter.
func FromRawRecords(rows []course.RawCourse) *Catalog {
	return New(course.AdaptAll(rows))
}

// Load replaces the entire indexed set. Later entries with a duplicate ID
// overwrite earlier ones; the earlier entry's position in iteration order is
// kept.
func (c *Catalog) Load(courses []course.Course) {
	byID := make(map[string]course.Course, len(courses))
	order := make([]string, 0, len(courses))
	for _, crs := range courses {
		if _, seen := byID[crs.CourseID]; !seen {
			order = append(order, crs.CourseID)
		}
		byID[crs.CourseID] = crs
	}

	c.mu.Lock()
	c.byID = byID
	c.order = order
	c.mu.Unlock()
}

// Len returns the number of indexed courses.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

// GetByID returns the course with the given ID, or a NotFound error carrying
// the literal requested ID.
func (c *Catalog) GetByID(courseID string) (course.Course, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	found, ok := c.byID[courseID]
	if !ok {
		return course.Course{}, errors.NewCourseNotFound(courseID)
	}
	return found, nil
}

// TimeWindow restricts matches to meeting slots that overlap
// [Start, End) on the given day. Day, Start, and End are all optional;
// missing bounds default to the whole day.
type TimeWindow struct {
	Day   string `json:"day,omitempty"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// Filters is a pure query object. All supplied conditions are ANDed.
type Filters struct {
	// Instructor is a case-insensitive substring match.
	Instructor string `json:"instructor,omitempty"`
	// Subject is an exact match after trimming and uppercasing both sides.
	Subject string `json:"subject,omitempty"`
	// Day passes if any meeting slot has that exact day code.
	Day string `json:"day,omitempty"`
	// TimeWindow passes if any slot on the window's day overlaps it.
	TimeWindow *TimeWindow `json:"timeWindow,omitempty"`
}

// Search returns every course that passes the free-text stage and all
// supplied filters. The result has set semantics: each course appears at
// most once and ordering is not part of the contract.
//
// The free-text query is lowercased, trimmed, and split on whitespace runs;
// a course passes if there are no tokens or if any token is a substring of
// "<courseID> <title> <instructor>" (case-insensitive).
func (c *Catalog) Search(query string, filters Filters) []course.Course {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(query)))

	c.mu.RLock()
	defer c.mu.RUnlock()

	results := make([]course.Course, 0)
	for _, id := range c.order {
		crs := c.byID[id]
		if !matchesTokens(crs, tokens) {
			continue
		}
		if !matchesFilters(crs, filters) {
			continue
		}
		results = append(results, crs)
	}
	return results
}

func matchesTokens(crs course.Course, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	hay := strings.ToLower(crs.CourseID + " " + crs.Title + " " + crs.Instructor)
	for _, t := range tokens {
		if strings.Contains(hay, t) {
			return true
		}
	}
	return false
}

func matchesFilters(crs course.Course, f Filters) bool {
	if f.Instructor != "" && !fuzzyContains(crs.Instructor, f.Instructor) {
		return false
	}

	if f.Subject != "" {
		want := strings.ToUpper(strings.TrimSpace(f.Subject))
		if crs.Subject != want {
			return false
		}
	}

	if f.Day != "" {
		meetsThatDay := false
		for _, mt := range crs.MeetingTimes {
			if mt.Day == f.Day {
				meetsThatDay = true
				break
			}
		}
		if !meetsThatDay {
			return false
		}
	}

	if f.TimeWindow != nil && !matchesWindow(crs, *f.TimeWindow) {
		return false
	}

	return true
}

// matchesWindow reports whether any meeting slot on the window's day (when
// given) overlaps the half-open window. A malformed window bound never
// matches any slot.
func matchesWindow(crs course.Course, win TimeWindow) bool {
	start := win.Start
	if start == "" {
		start = "00:00"
	}
	end := win.End
	if end == "" {
		end = "23:59"
	}

	winStart, okStart := course.ToMinutes(start)
	winEnd, okEnd := course.ToMinutes(end)
	if !okStart || !okEnd {
		return false
	}

	for _, mt := range crs.MeetingTimes {
		if win.Day != "" && mt.Day != win.Day {
			continue
		}
		if course.SlotOverlapsWindow(mt, winStart, winEnd) {
			return true
		}
	}
	return false
}

func fuzzyContains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
