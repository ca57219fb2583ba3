// Package rules ships the default requirement rules oracle: a tag-based
// evaluator driven by a JSON definition of requirement groups. Institutions
// with richer rules can inject their own tracker.Oracle instead.
package rules

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/planwell/planwell/internal/course"
	"github.com/planwell/planwell/internal/tracker"
)

// DefaultGroups is the distribution-requirement set used when no definition
// file is present.
var DefaultGroups = [][]string{
	{"LAB", "HSCI"},
	{"WRI"},
	{"QR"},
}

// TagRules fulfills a requirement when any course in the set carries its
// code in one of the course's requirement tag groups. The same groups apply
// to every user.
type TagRules struct {
	groups [][]course.Requirement
}

// New creates a TagRules oracle from string code groups.
func New(groups [][]string) *TagRules {
	out := make([][]course.Requirement, 0, len(groups))
	for _, g := range groups {
		reqs := make([]course.Requirement, 0, len(g))
		for _, code := range g {
			code = strings.TrimSpace(code)
			if code == "" {
				continue
			}
			reqs = append(reqs, course.Requirement{Code: code})
		}
		if len(reqs) > 0 {
			out = append(out, reqs)
		}
	}
	return &TagRules{groups: out}
}

// Load reads requirement groups from a JSON file shaped like
// [["LAB","HSCI"],["WRI"]]. A missing file yields the defaults.
func Load(path string) (*TagRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(DefaultGroups), nil
		}
		return nil, err
	}

	var groups [][]string
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, err
	}
	return New(groups), nil
}

// AllRequirementsFor implements tracker.Oracle.
func (r *TagRules) AllRequirementsFor(owner string) [][]course.Requirement {
	return r.groups
}

// Evaluate implements tracker.Oracle: evidence is every course whose tag
// groups contain the code, compared case-insensitively.
func (r *TagRules) Evaluate(owner string, courses []course.Course, req course.Requirement) tracker.Evaluation {
	want := normalize(req.Code)
	if want == "" {
		return tracker.Evaluation{}
	}

	var evidence []course.Course
	for _, c := range courses {
		if courseCarries(c, want) {
			evidence = append(evidence, c)
		}
	}
	return tracker.Evaluation{
		Fulfilled: len(evidence) > 0,
		Evidence:  evidence,
	}
}

func courseCarries(c course.Course, want string) bool {
	for _, group := range c.Requirements {
		for _, tag := range group {
			if normalize(tag.Code) == want {
				return true
			}
		}
	}
	return false
}

func normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
