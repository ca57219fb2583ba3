package mcp

import "github.com/mark3labs/mcp-go/mcp"

var stringItems = map[string]any{"type": "string"}

var courseSearchToolDef = mcp.NewTool("course_search",
	mcp.WithDescription("Search the course catalog. Free-text query matches course ID, title, and instructor; structured filters AND together with the query."),
	mcp.WithString("query", mcp.Description("Free-text query; any matching token qualifies a course")),
	mcp.WithString("instructor", mcp.Description("Substring match on instructor name")),
	mcp.WithString("subject", mcp.Description("Subject code, e.g. CS (case-insensitive)")),
	mcp.WithString("day", mcp.Description("Single day code from MTWRFSU; R is Thursday")),
	mcp.WithString("window_day", mcp.Description("Day code for the time-window filter")),
	mcp.WithString("window_start", mcp.Description("Window start as HH:MM 24-hour; defaults to 00:00")),
	mcp.WithString("window_end", mcp.Description("Window end as HH:MM 24-hour; defaults to 23:59")),
)

var courseGetToolDef = mcp.NewTool("course_get",
	mcp.WithDescription("Fetch a single course by its exact ID."),
	mcp.WithString("course_id", mcp.Required(), mcp.Description("Exact course ID, e.g. CS-220")),
)

var catalogImportToolDef = mcp.NewTool("catalog_import",
	mcp.WithDescription("Replace the course catalog from a JSON file containing an array of course records. Malformed records are dropped."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Path to the catalog JSON file")),
)

var scheduleAddToolDef = mcp.NewTool("schedule_add",
	mcp.WithDescription("Add a catalog course to a user's schedule."),
	mcp.WithString("user", mcp.Required(), mcp.Description("User ID")),
	mcp.WithString("course_id", mcp.Required(), mcp.Description("Course ID to enroll")),
)

var scheduleRemoveToolDef = mcp.NewTool("schedule_remove",
	mcp.WithDescription("Remove a course from a user's schedule."),
	mcp.WithString("user", mcp.Required(), mcp.Description("User ID")),
	mcp.WithString("course_id", mcp.Required(), mcp.Description("Course ID to drop")),
)

var scheduleListToolDef = mcp.NewTool("schedule_list",
	mcp.WithDescription("List a user's enrolled courses in the order they were added. An empty schedule is an error."),
	mcp.WithString("user", mcp.Required(), mcp.Description("User ID")),
)

var scheduleClearToolDef = mcp.NewTool("schedule_clear",
	mcp.WithDescription("Remove every course from a user's schedule."),
	mcp.WithString("user", mcp.Required(), mcp.Description("User ID")),
)

var schedulePrefsToolDef = mcp.NewTool("schedule_prefs",
	mcp.WithDescription("Set a user's AI recommendation preferences. Overwrites the previous record and invalidates any cached suggestion."),
	mcp.WithString("user", mcp.Required(), mcp.Description("User ID")),
	mcp.WithString("major", mcp.Description("Declared or intended major")),
	mcp.WithArray("interests", mcp.Description("Topic interests"), mcp.Items(stringItems)),
	mcp.WithArray("availability", mcp.Description("Free time blocks, e.g. \"MWF mornings\""), mcp.Items(stringItems)),
)

var scheduleSuggestToolDef = mcp.NewTool("schedule_suggest",
	mcp.WithDescription("Suggest a course the user is not enrolled in. Preferences must be set first."),
	mcp.WithString("user", mcp.Required(), mcp.Description("User ID")),
	mcp.WithArray("exclude", mcp.Description("Course IDs to exclude from consideration"), mcp.Items(stringItems)),
)

var scheduleNextToolDef = mcp.NewTool("schedule_next",
	mcp.WithDescription("After enrolling in a course, suggest what to consider next. The course must already be in the schedule."),
	mcp.WithString("user", mcp.Required(), mcp.Description("User ID")),
	mcp.WithString("course_id", mcp.Required(), mcp.Description("Course that was just added")),
)

var requirementsMissingToolDef = mcp.NewTool("requirements_missing",
	mcp.WithDescription("List the user's unfulfilled degree requirements, recomputed from their current schedule."),
	mcp.WithString("user", mcp.Required(), mcp.Description("User ID")),
)

var requirementsEvidenceToolDef = mcp.NewTool("requirements_evidence",
	mcp.WithDescription("List the courses counting toward one of the user's requirements."),
	mcp.WithString("user", mcp.Required(), mcp.Description("User ID")),
	mcp.WithString("requirement", mcp.Required(), mcp.Description("Requirement code, e.g. LAB")),
)

var travelTimesToolDef = mcp.NewTool("travel_times",
	mcp.WithDescription("Look up exchange bus times between two stops: the arrival for a given departure, or the departure needed for a given arrival."),
	mcp.WithString("origin", mcp.Required(), mcp.Description("Origin stop name")),
	mcp.WithString("destination", mcp.Required(), mcp.Description("Destination stop name")),
	mcp.WithString("departure", mcp.Description("Departure time as printed in the timetable, e.g. \"7:30 am\"")),
	mcp.WithString("arrival", mcp.Description("Arrival time as printed in the timetable")),
)

var travelRequestToolDef = mcp.NewTool("travel_request",
	mcp.WithDescription("File a travel-permission request for a cross-registered course."),
	mcp.WithString("student", mcp.Required(), mcp.Description("Student ID")),
	mcp.WithString("course_id", mcp.Required(), mcp.Description("Cross-registered course ID")),
	mcp.WithString("origin", mcp.Required(), mcp.Description("Origin stop name")),
	mcp.WithString("destination", mcp.Required(), mcp.Description("Destination stop name")),
	mcp.WithString("reason", mcp.Description("Optional justification")),
)

var travelDecideToolDef = mcp.NewTool("travel_decide",
	mcp.WithDescription("Approve, deny, or cancel a travel request."),
	mcp.WithString("request_id", mcp.Required(), mcp.Description("Travel request ID")),
	mcp.WithString("status", mcp.Required(), mcp.Description("One of: approved, denied, cancelled")),
)

var travelListToolDef = mcp.NewTool("travel_list",
	mcp.WithDescription("List travel requests for a student or a course, newest first."),
	mcp.WithString("student", mcp.Description("Student ID")),
	mcp.WithString("course_id", mcp.Description("Course ID")),
)
