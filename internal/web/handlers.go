package web

import (
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/planwell/planwell/internal/catalog"
	"github.com/planwell/planwell/internal/config"
	"github.com/planwell/planwell/internal/db"
	"github.com/planwell/planwell/internal/errors"
	"github.com/planwell/planwell/internal/schedule"
	"github.com/planwell/planwell/internal/tracker"
	"github.com/planwell/planwell/internal/travel"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	catalog  *catalog.Catalog
	engine   *schedule.Engine
	tracker  *tracker.Tracker
	renderer *Renderer
}

// HandleCourses renders the course list page with optional search filters.
func (h *Handlers) HandleCourses(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	instructor := strings.TrimSpace(r.URL.Query().Get("instructor"))
	subject := strings.TrimSpace(r.URL.Query().Get("subject"))
	day := strings.TrimSpace(r.URL.Query().Get("day"))

	results := h.catalog.Search(query, catalog.Filters{
		Instructor: instructor,
		Subject:    subject,
		Day:        day,
	})

	h.renderer.renderPage(w, r, "courses", CoursesPageData{
		PageData: PageData{
			Title:   "Courses",
			Version: h.renderer.version,
			Nav:     "courses",
		},
		Query:      query,
		Instructor: instructor,
		Subject:    subject,
		Day:        day,
		Courses:    results,
		Count:      len(results),
	})
}

// HandleCourseDetail renders a single course page.
func (h *Handlers) HandleCourseDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	c, err := h.catalog.GetByID(id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "course", CoursePageData{
		PageData: PageData{
			Title:   c.CourseID + " " + c.Title,
			Version: h.renderer.version,
			Nav:     "courses",
		},
		Course:       c,
		RenderedHTML: renderMarkdown(c.Description),
	})
}

// HandleSchedule renders a user's schedule alongside their unmet requirements.
func (h *Handlers) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")

	courses, err := h.engine.ListSchedule(user)
	if err != nil {
		if !errors.Is(err, errors.ErrEmptySchedule) {
			h.renderer.renderError(w, r, err)
			return
		}
		courses = nil
	}

	h.tracker.Recompute(user, courses)
	var missing []string
	for _, req := range h.tracker.Missing(user) {
		missing = append(missing, req.Code)
	}

	h.renderer.renderPage(w, r, "schedule", SchedulePageData{
		PageData: PageData{
			Title:   "Schedule for " + user,
			Version: h.renderer.version,
		},
		User:    user,
		Courses: courses,
		Empty:   len(courses) == 0,
		Missing: missing,
	})
}

// HandleScheduleAdd enrolls a course from the form and redirects back to the schedule.
func (h *Handlers) HandleScheduleAdd(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")

	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	courseID := strings.TrimSpace(r.FormValue("course_id"))
	if courseID == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("course_id is required"))
		return
	}

	if err := h.engine.AddCourseByID(user, courseID); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/schedule/"+url.PathEscape(user), http.StatusSeeOther)
}

// HandleScheduleRemove drops a course from the form and redirects back to the schedule.
func (h *Handlers) HandleScheduleRemove(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")

	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	courseID := strings.TrimSpace(r.FormValue("course_id"))
	if courseID == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("course_id is required"))
		return
	}

	if err := h.engine.RemoveCourse(user, courseID); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/schedule/"+url.PathEscape(user), http.StatusSeeOther)
}

// HandleTravel renders the exchange bus timetable, plus a student's cross
// registration requests when the student query parameter is given.
func (h *Handlers) HandleTravel(w http.ResponseWriter, r *http.Request) {
	student := strings.TrimSpace(r.URL.Query().Get("student"))

	var requests []travel.Request
	if student != "" {
		var err error
		requests, err = db.ListTravelRequestsByStudent(h.db, student)
		if err != nil {
			h.renderer.renderError(w, r, fmt.Errorf("list travel requests: %w", err))
			return
		}
	}

	stops := travel.Stops()
	rows := timetableRows(stops)

	h.renderer.renderPage(w, r, "travel", TravelPageData{
		PageData: PageData{
			Title:   "Exchange Bus",
			Version: h.renderer.version,
			Nav:     "travel",
		},
		Stops:    stops,
		Rows:     rows,
		Student:  student,
		Requests: requests,
	})
}

// timetableRows transposes the per-stop timetables into per-run rows for
// display, one row per scheduled run in stop order.
func timetableRows(stops []travel.Stop) [][]string {
	if len(stops) == 0 {
		return nil
	}
	runs := len(travel.ExchangeBusTimes[stops[0]])
	rows := make([][]string, 0, runs)
	for i := 0; i < runs; i++ {
		row := make([]string, 0, len(stops))
		for _, stop := range stops {
			row = append(row, travel.ExchangeBusTimes[stop][i])
		}
		rows = append(rows, row)
	}
	return rows
}
