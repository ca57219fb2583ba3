// Package recommend implements the cascading course-recommendation
// pipeline: an ordered list of strategies, each tried in turn until one
// yields a pick. A strategy failure of any kind counts as "no pick from
// this stage", never as a hard error — availability of some suggestion
// outranks surfacing provider faults.
package recommend

import (
	"context"
	"log/slog"

	"github.com/planwell/planwell/internal/course"
)

// Preferences is the per-user input to recommendation strategies.
type Preferences struct {
	Major        string   `json:"major"`
	Interests    []string `json:"interests"`
	Availability []string `json:"availability"`
}

// Recommender picks at most one course from the candidate pool. Returning
// (nil, nil) means the strategy declines; an error is logged by the chain
// and treated the same way.
type Recommender interface {
	Name() string
	Choose(ctx context.Context, owner string, candidates []course.Course, prefs Preferences) (*course.Course, error)
}

// Choose runs the strategies in order against the candidate pool and
// returns the first pick, or nil when every stage declines or the pool is
// empty.
func Choose(ctx context.Context, owner string, candidates []course.Course, prefs Preferences, stages []Recommender) *course.Course {
	if len(candidates) == 0 {
		return nil
	}
	for _, s := range stages {
		if s == nil {
			continue
		}
		pick, err := s.Choose(ctx, owner, candidates, prefs)
		if err != nil {
			slog.Warn("recommender stage failed, falling through",
				"stage", s.Name(), "error", err)
			continue
		}
		if pick != nil {
			return pick
		}
	}
	return nil
}

// FirstFit is the last-resort strategy: it picks the first candidate in
// pool order.
type FirstFit struct{}

// Name implements Recommender.
func (FirstFit) Name() string { return "first-fit" }

// Choose implements Recommender.
func (FirstFit) Choose(_ context.Context, _ string, candidates []course.Course, _ Preferences) (*course.Course, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	pick := candidates[0]
	return &pick, nil
}
