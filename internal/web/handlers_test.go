package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/planwell/planwell/internal/catalog"
	"github.com/planwell/planwell/internal/config"
	"github.com/planwell/planwell/internal/course"
	"github.com/planwell/planwell/internal/db"
	"github.com/planwell/planwell/internal/rules"
	"github.com/planwell/planwell/internal/schedule"
	"github.com/planwell/planwell/internal/tracker"
	"github.com/planwell/planwell/internal/travel"
)

var webCourses = []course.Course{
	{
		CourseID:   "CS-220",
		Title:      "Data Structures",
		Instructor: "Ada Lovelace",
		Subject:    "CS",
		MeetingTimes: []course.TimeSlot{
			{Day: "M", Start: "10:00", End: "11:00"},
			{Day: "W", Start: "10:00", End: "11:00"},
		},
		Description:  "Trees, graphs, and **amortized analysis**.",
		Requirements: [][]course.Requirement{{{Code: "QR"}}},
	},
	{
		CourseID:   "WRIT-105",
		Title:      "First-Year Writing",
		Instructor: "Mary Shelley",
		Subject:    "WRIT",
		MeetingTimes: []course.TimeSlot{
			{Day: "T", Start: "09:30", End: "10:45"},
		},
		Requirements: [][]course.Requirement{{{Code: "WRI"}}},
	},
}

func newTestHandler(t *testing.T) (http.Handler, *Handlers) {
	t.Helper()

	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	oracle, err := rules.Load("")
	require.NoError(t, err)

	cat := catalog.New(webCourses)
	h := &Handlers{
		db:       database,
		cfg:      config.DefaultConfig(),
		catalog:  cat,
		engine:   schedule.New(cat),
		tracker:  tracker.New(oracle),
		renderer: newEmbeddedRenderer("test"),
	}
	srv := newServerWith(h, "127.0.0.1", 0)
	return srv.Handler, h
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func postForm(t *testing.T, handler http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRootRedirectsToCourses(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := get(t, handler, "/")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/courses", rec.Header().Get("Location"))
}

func TestCoursesPage(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := get(t, handler, "/courses")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, "CS-220")
	require.Contains(t, body, "Data Structures")
	require.Contains(t, body, "WRIT-105")
	require.Contains(t, body, "M 10:00-11:00")
}

func TestCoursesPageFiltered(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := get(t, handler, "/courses?q=writing")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, "WRIT-105")
	require.NotContains(t, body, "CS-220")

	rec = get(t, handler, "/courses?subject=cs")
	body = rec.Body.String()
	require.Contains(t, body, "CS-220")
	require.NotContains(t, body, "WRIT-105")
}

func TestCourseDetailPage(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := get(t, handler, "/courses/CS-220")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, "Ada Lovelace")
	// Markdown description rendered to HTML.
	require.Contains(t, body, "<strong>amortized analysis</strong>")
	require.Contains(t, body, "QR")
}

func TestCourseDetailNotFound(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := get(t, handler, "/courses/GHOST-999")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Error 404")
}

func TestCourseDetailNotFoundJSON(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/courses/GHOST-999", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), `"NOT_FOUND"`)
}

func TestSchedulePageEmpty(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := get(t, handler, "/schedule/kim")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, "No courses enrolled yet")
	// Every default requirement is unmet for an untouched user.
	for _, code := range []string{"LAB", "HSCI", "WRI", "QR"} {
		require.Contains(t, body, code)
	}
}

func TestScheduleAddAndRemove(t *testing.T) {
	handler, h := newTestHandler(t)

	rec := postForm(t, handler, "/schedule/kim/add", url.Values{"course_id": {"CS-220"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/schedule/kim", rec.Header().Get("Location"))

	rec = get(t, handler, "/schedule/kim")
	body := rec.Body.String()
	require.Contains(t, body, "CS-220")
	// QR is now satisfied and drops out of the unmet list.
	require.NotContains(t, body, `<span class="req">QR</span>`)
	require.Contains(t, body, `<span class="req">WRI</span>`)

	rec = postForm(t, handler, "/schedule/kim/remove", url.Values{"course_id": {"CS-220"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	_, err := h.engine.ListSchedule("kim")
	require.Error(t, err)
}

func TestScheduleAddUnknownCourse(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := postForm(t, handler, "/schedule/kim/add", url.Values{"course_id": {"GHOST-1"}})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScheduleAddMissingCourseID(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := postForm(t, handler, "/schedule/kim/add", url.Values{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTravelPage(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := get(t, handler, "/travel")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, "Wellesley Chapel")
	require.Contains(t, body, "7:30 am")
	require.Contains(t, body, "7:35 am")
}

func TestTravelPageStudentRequests(t *testing.T) {
	handler, h := newTestHandler(t)

	req, err := travel.NewRequest("kim", "PHYS-301", string(travel.StopWellesleyChapel), string(travel.StopMIT), "lab access")
	require.NoError(t, err)
	require.NoError(t, db.InsertTravelRequest(h.db, req))

	rec := get(t, handler, "/travel?student=kim")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, "PHYS-301")
	require.Contains(t, body, "pending")

	rec = get(t, handler, "/travel?student=nobody")
	require.Contains(t, rec.Body.String(), "No requests for nobody")
}

func TestSecurityHeaders(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := get(t, handler, "/courses")
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}
