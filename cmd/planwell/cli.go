package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

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
	"github.com/planwell/planwell/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(database *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "planwell",
		Usage:   "Course planning for students",
		Version: Version,
		Commands: []*cli.Command{
			importCmd(database),
			searchCmd(database, cfg),
			getCmd(database, cfg),
			suggestCmd(database, cfg),
			missingCmd(database, cfg),
			evidenceCmd(database, cfg),
			busCmd(),
			requestCmd(database),
			decideCmd(database),
			requestsCmd(database),
			webCmd(database, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// domain bundles the in-memory engines hydrated from the stored catalog.
// CLI invocations are one-shot: schedules and preferences built here live
// for a single command. Persistent sessions run through the MCP or web mode.
type domain struct {
	catalog *catalog.Catalog
	engine  *schedule.Engine
	tracker *tracker.Tracker
}

func loadDomain(database *sql.DB, cfg *config.Config) (*domain, error) {
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
	if ai := recommend.NewOpenAI(cfg.OpenAIModel); ai != nil {
		opts = append(opts, schedule.WithRecommenders(ai))
	}

	return &domain{
		catalog: cat,
		engine:  schedule.New(cat, opts...),
		tracker: tracker.New(oracle),
	}, nil
}

// importCmd creates the import command.
func importCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Replace the stored catalog with a JSON course feed",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("path to a course feed is required"))
			}
			path := c.Args().First()

			data, err := os.ReadFile(path)
			if err != nil {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("cannot read course feed: %v", err)))
			}

			var docs []json.RawMessage
			if err := json.Unmarshal(data, &docs); err != nil {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("course feed must be a JSON array: %v", err)))
			}

			stored, err := db.ReplaceAllCourses(database, docs)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{
				"imported": stored,
				"path":     path,
			})
		},
	}
}

// searchCmd creates the search command.
func searchCmd(database *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the course catalog",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "instructor", Aliases: []string{"i"}, Usage: "Instructor substring match"},
			&cli.StringFlag{Name: "subject", Aliases: []string{"s"}, Usage: "Subject code (e.g. CS)"},
			&cli.StringFlag{Name: "day", Aliases: []string{"d"}, Usage: "Day code: M, T, W, R, F"},
			&cli.StringFlag{Name: "window-day", Usage: "Day code for the time window"},
			&cli.StringFlag{Name: "window-start", Usage: "Window start, HH:MM"},
			&cli.StringFlag{Name: "window-end", Usage: "Window end, HH:MM"},
		},
		Action: func(c *cli.Context) error {
			dom, err := loadDomain(database, cfg)
			if err != nil {
				return outputError(err)
			}

			filters := catalog.Filters{
				Instructor: c.String("instructor"),
				Subject:    c.String("subject"),
				Day:        c.String("day"),
			}
			if c.String("window-start") != "" || c.String("window-end") != "" {
				if c.String("window-day") == "" {
					return outputError(errors.NewInvalidRequest("window-day is required with window-start/window-end"))
				}
				filters.TimeWindow = &catalog.TimeWindow{
					Day:   c.String("window-day"),
					Start: c.String("window-start"),
					End:   c.String("window-end"),
				}
			}

			results := dom.catalog.Search(strings.Join(c.Args().Slice(), " "), filters)
			return outputJSON(map[string]any{
				"courses": results,
				"count":   len(results),
			})
		},
	}
}

// getCmd creates the get command.
func getCmd(database *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch a single course by ID",
		ArgsUsage: "<course-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("course-id is required"))
			}

			dom, err := loadDomain(database, cfg)
			if err != nil {
				return outputError(err)
			}

			found, err := dom.catalog.GetByID(c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(found)
		},
	}
}

// suggestCmd creates the suggest command.
func suggestCmd(database *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "suggest",
		Usage: "Recommend a course for the given preferences",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "major", Aliases: []string{"m"}, Usage: "Declared major"},
			&cli.StringFlag{Name: "interests", Usage: "Comma-separated interests"},
			&cli.StringFlag{Name: "availability", Usage: "Comma-separated availability notes"},
			&cli.StringFlag{Name: "enrolled", Usage: "Comma-separated course IDs already enrolled"},
			&cli.StringFlag{Name: "exclude", Usage: "Comma-separated course IDs to skip"},
		},
		Action: func(c *cli.Context) error {
			dom, err := loadDomain(database, cfg)
			if err != nil {
				return outputError(err)
			}

			const user = "cli"
			dom.engine.SetPreferences(user,
				c.String("major"),
				splitList(c.String("interests")),
				splitList(c.String("availability")))

			for _, id := range splitList(c.String("enrolled")) {
				if err := dom.engine.AddCourseByID(user, id); err != nil {
					return outputError(err)
				}
			}

			picked, err := dom.engine.SuggestCourse(c.Context, user, splitList(c.String("exclude")))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(picked)
		},
	}
}

// missingCmd creates the missing command.
func missingCmd(database *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "missing",
		Usage: "Show unmet requirements for a set of enrolled courses",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "enrolled", Usage: "Comma-separated course IDs"},
		},
		Action: func(c *cli.Context) error {
			dom, err := loadDomain(database, cfg)
			if err != nil {
				return outputError(err)
			}

			enrolled, err := resolveCourses(dom.catalog, splitList(c.String("enrolled")))
			if err != nil {
				return outputError(err)
			}

			const user = "cli"
			dom.tracker.Recompute(user, enrolled)

			codes := []string{}
			for _, req := range dom.tracker.Missing(user) {
				codes = append(codes, req.Code)
			}
			return outputJSON(map[string]any{
				"missing": codes,
				"count":   len(codes),
			})
		},
	}
}

// evidenceCmd creates the evidence command.
func evidenceCmd(database *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "evidence",
		Usage:     "Show which enrolled courses satisfy a requirement",
		ArgsUsage: "<requirement-code>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "enrolled", Usage: "Comma-separated course IDs"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("requirement-code is required"))
			}

			dom, err := loadDomain(database, cfg)
			if err != nil {
				return outputError(err)
			}

			enrolled, err := resolveCourses(dom.catalog, splitList(c.String("enrolled")))
			if err != nil {
				return outputError(err)
			}

			const user = "cli"
			dom.tracker.Recompute(user, enrolled)

			req := course.Requirement{Code: c.Args().First()}
			evidence, err := dom.tracker.EvidenceFor(user, req)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{
				"requirement": req.Code,
				"fulfilled":   len(evidence) > 0,
				"evidence":    evidence,
			})
		},
	}
}

// busCmd creates the bus command.
func busCmd() *cli.Command {
	return &cli.Command{
		Name:  "bus",
		Usage: "Look up exchange bus times between stops",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Required: true, Usage: "Origin stop name"},
			&cli.StringFlag{Name: "to", Required: true, Usage: "Destination stop name"},
			&cli.StringFlag{Name: "departure", Usage: "Departure time at origin (e.g. '9:00 am')"},
			&cli.StringFlag{Name: "arrival", Usage: "Desired arrival time at destination"},
		},
		Action: func(c *cli.Context) error {
			origin := travel.Stop(c.String("from"))
			destination := travel.Stop(c.String("to"))
			departure := c.String("departure")
			arrival := c.String("arrival")

			if (departure == "") == (arrival == "") {
				return outputError(errors.NewInvalidRequest("provide exactly one of --departure or --arrival"))
			}

			if departure != "" {
				arrives, err := travel.ArrivalTime(origin, destination, departure)
				if err != nil {
					return outputError(err)
				}
				return outputJSON(map[string]any{
					"origin":      origin,
					"destination": destination,
					"departure":   departure,
					"arrival":     arrives,
				})
			}

			departs, err := travel.DepartureTime(origin, destination, arrival)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{
				"origin":      origin,
				"destination": destination,
				"departure":   departs,
				"arrival":     arrival,
			})
		},
	}
}

// requestCmd creates the request command.
func requestCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "request",
		Usage:     "File a cross registration travel request",
		ArgsUsage: "<student> <course-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Required: true, Usage: "Origin stop name"},
			&cli.StringFlag{Name: "to", Required: true, Usage: "Destination stop name"},
			&cli.StringFlag{Name: "reason", Aliases: []string{"r"}, Usage: "Reason for the request"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return outputError(errors.NewInvalidRequest("student and course-id are required"))
			}

			req, err := travel.NewRequest(
				c.Args().Get(0), c.Args().Get(1),
				c.String("from"), c.String("to"), c.String("reason"))
			if err != nil {
				return outputError(err)
			}

			if err := db.InsertTravelRequest(database, req); err != nil {
				return outputError(err)
			}
			return outputJSON(req)
		},
	}
}

// decideCmd creates the decide command.
func decideCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "decide",
		Usage:     "Set the status of a travel request",
		ArgsUsage: "<request-id> <status>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return outputError(errors.NewInvalidRequest("request-id and status are required"))
			}

			id, status := c.Args().Get(0), c.Args().Get(1)
			if err := db.UpdateTravelRequestStatus(database, id, status); err != nil {
				return outputError(err)
			}

			req, err := db.GetTravelRequest(database, id)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(req)
		},
	}
}

// requestsCmd creates the requests command.
func requestsCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "requests",
		Usage: "List travel requests for a student or a course",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "student", Aliases: []string{"s"}, Usage: "Filter by student ID"},
			&cli.StringFlag{Name: "course", Aliases: []string{"c"}, Usage: "Filter by course ID"},
		},
		Action: func(c *cli.Context) error {
			student := c.String("student")
			courseID := c.String("course")
			if (student == "") == (courseID == "") {
				return outputError(errors.NewInvalidRequest("provide exactly one of --student or --course"))
			}

			var (
				reqs []travel.Request
				err  error
			)
			if student != "" {
				reqs, err = db.ListTravelRequestsByStudent(database, student)
			} else {
				reqs, err = db.ListTravelRequestsByCourse(database, courseID)
			}
			if err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{
				"requests": reqs,
				"count":    len(reqs),
			})
		},
	}
}

// webCmd creates the web command.
func webCmd(database *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Start the planwell web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind to"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8420, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv, err := web.NewServer(database, cfg, Version, c.String("bind"), c.Int("port"))
			if err != nil {
				return outputError(err)
			}
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if planErr, ok := err.(*errors.PlanError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", planErr.Code, planErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// splitList splits a comma-separated string into trimmed non-empty items.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			items = append(items, t)
		}
	}
	return items
}

// resolveCourses looks up each ID in the catalog.
func resolveCourses(cat *catalog.Catalog, ids []string) ([]course.Course, error) {
	courses := make([]course.Course, 0, len(ids))
	for _, id := range ids {
		found, err := cat.GetByID(id)
		if err != nil {
			return nil, err
		}
		courses = append(courses, found)
	}
	return courses, nil
}
