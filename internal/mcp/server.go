package mcp

import (
	"context"
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/planwell/planwell/internal/config"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"course_search": {
		def:     courseSearchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCourseSearch },
	},
	"course_get": {
		def:     courseGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCourseGet },
	},
	"catalog_import": {
		def:     catalogImportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCatalogImport },
	},
	"schedule_add": {
		def:     scheduleAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleScheduleAdd },
	},
	"schedule_remove": {
		def:     scheduleRemoveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleScheduleRemove },
	},
	"schedule_list": {
		def:     scheduleListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleScheduleList },
	},
	"schedule_clear": {
		def:     scheduleClearToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleScheduleClear },
	},
	"schedule_prefs": {
		def:     schedulePrefsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSchedulePrefs },
	},
	"schedule_suggest": {
		def:     scheduleSuggestToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleScheduleSuggest },
	},
	"schedule_next": {
		def:     scheduleNextToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleScheduleNext },
	},
	"requirements_missing": {
		def:     requirementsMissingToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRequirementsMissing },
	},
	"requirements_evidence": {
		def:     requirementsEvidenceToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRequirementsEvidence },
	},
	"travel_times": {
		def:     travelTimesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTravelTimes },
	},
	"travel_request": {
		def:     travelRequestToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTravelRequest },
	},
	"travel_decide": {
		def:     travelDecideToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTravelDecide },
	},
	"travel_list": {
		def:     travelListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTravelList },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with planwell tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(database *sql.DB, cfg *config.Config, version string) (*server.MCPServer, error) {
	h, err := NewHandlers(database, cfg)
	if err != nil {
		return nil, err
	}

	s := server.NewMCPServer(
		"planwell",
		version,
		server.WithToolCapabilities(true),
	)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	// Register tools (skip disabled)
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s, nil
}

// Run starts the MCP server using stdio transport.
func Run(database *sql.DB, cfg *config.Config, version string) error {
	s, err := NewServer(database, cfg, version)
	if err != nil {
		return err
	}
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
