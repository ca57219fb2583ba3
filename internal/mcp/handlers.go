package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/planwell/planwell/internal/catalog"
	"github.com/planwell/planwell/internal/config"
	"github.com/planwell/planwell/internal/course"
	"github.com/planwell/planwell/internal/db"
	"github.com/planwell/planwell/internal/errors"
	"github.com/planwell/planwell/internal/recommend"
	"github.com/planwell/planwell/internal/rules"
	"github.com/planwell/planwell/internal/schedule"
	"github.com/planwell/planwell/internal/tracker"
	"github.com/planwell/planwell/internal/travel"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db      *sql.DB
	cfg     *config.Config
	catalog *catalog.Catalog
	engine  *schedule.Engine
	tracker *tracker.Tracker
}

// NewHandlers wires the domain services over the given database and config:
// the catalog is hydrated from stored course records, the requirement oracle
// from cfg.RulesPath, and the schedule engine's suggestion chain gets an AI
// stage only when an API key is available.
func NewHandlers(database *sql.DB, cfg *config.Config) (*Handlers, error) {
	raws, err := db.LoadRawCourses(database)
	if err != nil {
		return nil, err
	}
	cat := catalog.FromRawRecords(raws)

	oracle, err := rules.Load(cfg.RulesPath)
	if err != nil {
		return nil, err
	}

	opts := []schedule.Option{}
	if cfg.ValidateEnrollment {
		opts = append(opts, schedule.WithEnrollmentValidation())
	}
	if cfg.InvalidateSuggestionOnChange {
		opts = append(opts, schedule.WithSuggestionInvalidation())
	}
	if ai := recommend.NewOpenAI(cfg.OpenAIModel); ai != nil {
		opts = append(opts, schedule.WithRecommenders(ai))
	}

	return &Handlers{
		db:      database,
		cfg:     cfg,
		catalog: cat,
		engine:  schedule.New(cat, opts...),
		tracker: tracker.New(oracle),
	}, nil
}

// Request types for each tool

// CourseSearchRequest represents the arguments for course_search.
type CourseSearchRequest struct {
	Query       string `json:"query,omitempty"`
	Instructor  string `json:"instructor,omitempty"`
	Subject     string `json:"subject,omitempty"`
	Day         string `json:"day,omitempty"`
	WindowDay   string `json:"window_day,omitempty"`
	WindowStart string `json:"window_start,omitempty"`
	WindowEnd   string `json:"window_end,omitempty"`
}

// CourseGetRequest represents the arguments for course_get.
type CourseGetRequest struct {
	CourseID string `json:"course_id"`
}

// CatalogImportRequest represents the arguments for catalog_import.
type CatalogImportRequest struct {
	Path string `json:"path"`
}

// ScheduleCourseRequest covers schedule_add, schedule_remove, and schedule_next.
type ScheduleCourseRequest struct {
	User     string `json:"user"`
	CourseID string `json:"course_id"`
}

// ScheduleUserRequest covers schedule_list and schedule_clear.
type ScheduleUserRequest struct {
	User string `json:"user"`
}

// SchedulePrefsRequest represents the arguments for schedule_prefs.
type SchedulePrefsRequest struct {
	User         string   `json:"user"`
	Major        string   `json:"major,omitempty"`
	Interests    []string `json:"interests,omitempty"`
	Availability []string `json:"availability,omitempty"`
}

// ScheduleSuggestRequest represents the arguments for schedule_suggest.
type ScheduleSuggestRequest struct {
	User    string   `json:"user"`
	Exclude []string `json:"exclude,omitempty"`
}

// RequirementsRequest covers requirements_missing and requirements_evidence.
type RequirementsRequest struct {
	User        string `json:"user"`
	Requirement string `json:"requirement,omitempty"`
}

// TravelTimesRequest represents the arguments for travel_times.
type TravelTimesRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Departure   string `json:"departure,omitempty"`
	Arrival     string `json:"arrival,omitempty"`
}

// TravelRequestRequest represents the arguments for travel_request.
type TravelRequestRequest struct {
	Student     string `json:"student"`
	CourseID    string `json:"course_id"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Reason      string `json:"reason,omitempty"`
}

// TravelDecideRequest represents the arguments for travel_decide.
type TravelDecideRequest struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

// TravelListRequest represents the arguments for travel_list.
type TravelListRequest struct {
	Student  string `json:"student,omitempty"`
	CourseID string `json:"course_id,omitempty"`
}

// Handler implementations

// HandleCourseSearch handles the course_search tool call.
func (h *Handlers) HandleCourseSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CourseSearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	filters := catalog.Filters{
		Instructor: input.Instructor,
		Subject:    input.Subject,
		Day:        input.Day,
	}
	if input.WindowDay != "" || input.WindowStart != "" || input.WindowEnd != "" {
		if input.WindowDay == "" {
			return errorResult(errors.NewInvalidRequest("window_day is required with a time window")), nil
		}
		filters.TimeWindow = &catalog.TimeWindow{
			Day:   input.WindowDay,
			Start: input.WindowStart,
			End:   input.WindowEnd,
		}
	}

	matches := h.catalog.Search(input.Query, filters)
	return successResult(map[string]any{
		"courses": matches,
		"count":   len(matches),
	})
}

// HandleCourseGet handles the course_get tool call.
func (h *Handlers) HandleCourseGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CourseGetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.CourseID == "" {
		return errorResult(errors.NewInvalidRequest("course_id is required")), nil
	}

	c, err := h.catalog.GetByID(input.CourseID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(c)
}

// HandleCatalogImport handles the catalog_import tool call.
func (h *Handlers) HandleCatalogImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CatalogImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Path == "" {
		return errorResult(errors.NewInvalidRequest("path is required")), nil
	}

	data, err := os.ReadFile(input.Path)
	if err != nil {
		return errorResult(errors.NewInvalidRequest("cannot read catalog file: " + err.Error())), nil
	}
	var docs []json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		return errorResult(errors.NewInvalidRequest("catalog file must be a JSON array: " + err.Error())), nil
	}

	stored, err := db.ReplaceAllCourses(h.db, docs)
	if err != nil {
		return errorResult(err), nil
	}

	raws, err := db.LoadRawCourses(h.db)
	if err != nil {
		return errorResult(err), nil
	}
	h.catalog.Load(course.AdaptAll(raws))

	return successResult(map[string]any{
		"imported": stored,
		"catalog":  h.catalog.Len(),
	})
}

// HandleScheduleAdd handles the schedule_add tool call.
func (h *Handlers) HandleScheduleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ScheduleCourseRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.User == "" || input.CourseID == "" {
		return errorResult(errors.NewInvalidRequest("user and course_id are required")), nil
	}

	if err := h.engine.AddCourseByID(input.User, input.CourseID); err != nil {
		return errorResult(err), nil
	}
	h.refreshRequirements(input.User)

	return successResult(map[string]any{
		"user":     input.User,
		"courseID": input.CourseID,
		"added":    true,
	})
}

// HandleScheduleRemove handles the schedule_remove tool call.
func (h *Handlers) HandleScheduleRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ScheduleCourseRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.User == "" || input.CourseID == "" {
		return errorResult(errors.NewInvalidRequest("user and course_id are required")), nil
	}

	if err := h.engine.RemoveCourse(input.User, input.CourseID); err != nil {
		return errorResult(err), nil
	}
	h.refreshRequirements(input.User)

	return successResult(map[string]any{
		"user":     input.User,
		"courseID": input.CourseID,
		"removed":  true,
	})
}

// HandleScheduleList handles the schedule_list tool call.
func (h *Handlers) HandleScheduleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ScheduleUserRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.User == "" {
		return errorResult(errors.NewInvalidRequest("user is required")), nil
	}

	courses, err := h.engine.ListSchedule(input.User)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{
		"user":    input.User,
		"courses": courses,
		"count":   len(courses),
	})
}

// HandleScheduleClear handles the schedule_clear tool call.
func (h *Handlers) HandleScheduleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ScheduleUserRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.User == "" {
		return errorResult(errors.NewInvalidRequest("user is required")), nil
	}

	h.engine.Clear(input.User)
	h.tracker.Recompute(input.User, nil)

	return successResult(map[string]any{
		"user":    input.User,
		"cleared": true,
	})
}

// HandleSchedulePrefs handles the schedule_prefs tool call.
func (h *Handlers) HandleSchedulePrefs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SchedulePrefsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.User == "" {
		return errorResult(errors.NewInvalidRequest("user is required")), nil
	}

	h.engine.SetPreferences(input.User, input.Major, input.Interests, input.Availability)
	return successResult(map[string]any{
		"user": input.User,
		"set":  true,
	})
}

// HandleScheduleSuggest handles the schedule_suggest tool call.
func (h *Handlers) HandleScheduleSuggest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ScheduleSuggestRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.User == "" {
		return errorResult(errors.NewInvalidRequest("user is required")), nil
	}

	pick, err := h.engine.SuggestCourse(ctx, input.User, input.Exclude)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{
		"user":       input.User,
		"suggestion": pick,
	})
}

// HandleScheduleNext handles the schedule_next tool call.
func (h *Handlers) HandleScheduleNext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ScheduleCourseRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.User == "" || input.CourseID == "" {
		return errorResult(errors.NewInvalidRequest("user and course_id are required")), nil
	}

	added, err := h.catalog.GetByID(input.CourseID)
	if err != nil {
		return errorResult(err), nil
	}
	pick, err := h.engine.UpdateAfterAdd(ctx, input.User, added)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{
		"user":       input.User,
		"after":      added.CourseID,
		"suggestion": pick,
	})
}

// HandleRequirementsMissing handles the requirements_missing tool call.
func (h *Handlers) HandleRequirementsMissing(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RequirementsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.User == "" {
		return errorResult(errors.NewInvalidRequest("user is required")), nil
	}

	h.refreshRequirements(input.User)
	missing := h.tracker.Missing(input.User)

	codes := make([]string, 0, len(missing))
	for _, r := range missing {
		codes = append(codes, r.Code)
	}
	return successResult(map[string]any{
		"user":    input.User,
		"missing": codes,
		"count":   len(codes),
	})
}

// HandleRequirementsEvidence handles the requirements_evidence tool call.
func (h *Handlers) HandleRequirementsEvidence(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RequirementsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.User == "" || input.Requirement == "" {
		return errorResult(errors.NewInvalidRequest("user and requirement are required")), nil
	}

	h.refreshRequirements(input.User)
	evidence, err := h.tracker.EvidenceFor(input.User, course.Requirement{Code: input.Requirement})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{
		"user":        input.User,
		"requirement": input.Requirement,
		"evidence":    evidence,
		"fulfilled":   len(evidence) > 0,
	})
}

// HandleTravelTimes handles the travel_times tool call.
func (h *Handlers) HandleTravelTimes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TravelTimesRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Origin == "" || input.Destination == "" {
		return errorResult(errors.NewInvalidRequest("origin and destination are required")), nil
	}

	switch {
	case input.Departure != "" && input.Arrival != "":
		return errorResult(errors.NewInvalidRequest("provide departure or arrival, not both")), nil
	case input.Departure != "":
		arrival, err := travel.ArrivalTime(travel.Stop(input.Origin), travel.Stop(input.Destination), input.Departure)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(map[string]any{
			"origin":      input.Origin,
			"destination": input.Destination,
			"departure":   input.Departure,
			"arrival":     arrival,
		})
	case input.Arrival != "":
		departure, err := travel.DepartureTime(travel.Stop(input.Origin), travel.Stop(input.Destination), input.Arrival)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(map[string]any{
			"origin":      input.Origin,
			"destination": input.Destination,
			"departure":   departure,
			"arrival":     input.Arrival,
		})
	default:
		return errorResult(errors.NewInvalidRequest("departure or arrival is required")), nil
	}
}

// HandleTravelRequest handles the travel_request tool call.
func (h *Handlers) HandleTravelRequest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TravelRequestRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Student == "" || input.CourseID == "" || input.Origin == "" || input.Destination == "" {
		return errorResult(errors.NewInvalidRequest("student, course_id, origin, and destination are required")), nil
	}

	r, err := travel.NewRequest(input.Student, input.CourseID, input.Origin, input.Destination, input.Reason)
	if err != nil {
		return errorResult(errors.NewInternal(err)), nil
	}
	if err := db.InsertTravelRequest(h.db, r); err != nil {
		return errorResult(err), nil
	}
	return successResult(r)
}

// HandleTravelDecide handles the travel_decide tool call.
func (h *Handlers) HandleTravelDecide(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TravelDecideRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.RequestID == "" || input.Status == "" {
		return errorResult(errors.NewInvalidRequest("request_id and status are required")), nil
	}

	if err := db.UpdateTravelRequestStatus(h.db, input.RequestID, input.Status); err != nil {
		return errorResult(err), nil
	}
	r, err := db.GetTravelRequest(h.db, input.RequestID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(r)
}

// HandleTravelList handles the travel_list tool call.
func (h *Handlers) HandleTravelList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TravelListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	var requests []travel.Request
	switch {
	case input.Student != "" && input.CourseID != "":
		return errorResult(errors.NewInvalidRequest("provide student or course_id, not both")), nil
	case input.Student != "":
		requests, err = db.ListTravelRequestsByStudent(h.db, input.Student)
	case input.CourseID != "":
		requests, err = db.ListTravelRequestsByCourse(h.db, input.CourseID)
	default:
		return errorResult(errors.NewInvalidRequest("student or course_id is required")), nil
	}
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{
		"requests": requests,
		"count":    len(requests),
	})
}

// refreshRequirements recomputes a user's requirement states from their
// current schedule. An empty schedule recomputes against no courses, which
// marks everything unfulfilled.
func (h *Handlers) refreshRequirements(user string) {
	courses, err := h.engine.ListSchedule(user)
	if err != nil {
		courses = nil
	}
	h.tracker.Recompute(user, courses)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var planErr *errors.PlanError
	if stderrors.As(err, &planErr) {
		errorObj := map[string]any{
			"code":    planErr.Code,
			"message": err.Error(),
			"status":  planErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if planErr.Code != errors.ErrInternal && planErr.Details != nil {
			errorObj["details"] = planErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
