// Package tracker maintains, per user, the fulfillment status of every
// graduation requirement applicable to that user, recomputed from an
// injected rules oracle.
package tracker

import (
	"strings"
	"sync"

	"github.com/planwell/planwell/internal/course"
	"github.com/planwell/planwell/internal/errors"
)

// Evaluation is the oracle's verdict for one requirement against a course
// set.
type Evaluation struct {
	Fulfilled bool
	Evidence  []course.Course
}

// Oracle encodes the institution's rules mapping courses to fulfillment.
// The tracker treats it as a pure function of its inputs: same inputs, same
// applicable set.
type Oracle interface {
	// AllRequirementsFor returns the requirements applicable to the user as
	// OR-groups. The tracker flattens the groups but does not interpret
	// group semantics.
	AllRequirementsFor(owner string) [][]course.Requirement

	// Evaluate judges one requirement against the current course set.
	Evaluate(owner string, courses []course.Course, req course.Requirement) Evaluation
}

// State is the stored fulfillment snapshot for one (owner, requirement)
// pair. It is overwritten wholesale on each recompute, never partially
// mutated.
type State struct {
	Owner       string
	Requirement course.Requirement
	Fulfilled   bool
	Evidence    []course.Course
}

// Tracker holds per-user requirement state. All methods are safe for
// concurrent use; state for different users never interacts.
type Tracker struct {
	rules Oracle

	mu     sync.Mutex
	states map[string]map[string]State // userID → reqKey → State
}

// New creates a Tracker backed by the given rules oracle.
func New(rules Oracle) *Tracker {
	return &Tracker{
		rules:  rules,
		states: make(map[string]map[string]State),
	}
}

// Recompute rebuilds all requirement states for the owner from the current
// course set. Requirements no longer applicable to the user are pruned.
// Calling it twice with the same oracle and course set is idempotent.
func (t *Tracker) Recompute(owner string, courses []course.Course) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recomputeLocked(owner, courses)
}

func (t *Tracker) recomputeLocked(owner string, courses []course.Course) {
	current := t.states[owner]
	if current == nil {
		current = make(map[string]State)
		t.states[owner] = current
	}

	flat := Flatten(t.rules.AllRequirementsFor(owner))

	valid := make(map[string]bool, len(flat))
	for _, req := range flat {
		key := reqKey(req)
		valid[key] = true

		ev := t.rules.Evaluate(owner, courses, req)
		current[key] = State{
			Owner:       owner,
			Requirement: req,
			Fulfilled:   ev.Fulfilled,
			Evidence:    append([]course.Course(nil), ev.Evidence...),
		}
	}

	// Prune states for requirements that no longer apply (curriculum or
	// major changes between calls).
	for key := range current {
		if !valid[key] {
			delete(current, key)
		}
	}
}

// Missing returns every applicable requirement the owner has not yet
// fulfilled. A user that has never been recomputed gets a baseline from an
// empty course set first, so every applicable requirement reports missing.
func (t *Tracker) Missing(owner string) []course.Requirement {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ensureBaselineLocked(owner)

	out := make([]course.Requirement, 0)
	for _, s := range t.states[owner] {
		if !s.Fulfilled {
			out = append(out, s.Requirement)
		}
	}
	return out
}

// EvidenceFor returns the courses contributing to fulfillment of the given
// requirement. It fails with PreconditionNotMet, carrying the code, when
// the requirement is not applicable to the owner — as opposed to merely
// unfulfilled, which returns an empty set.
func (t *Tracker) EvidenceFor(owner string, req course.Requirement) ([]course.Course, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ensureBaselineLocked(owner)

	state, ok := t.states[owner][reqKey(req)]
	if !ok {
		return nil, errors.NewRequirementNotApplicable(req.Code)
	}
	return append([]course.Course(nil), state.Evidence...), nil
}

// ensureBaselineLocked synthesizes empty-schedule state for a user the
// tracker has never seen, so reads on an untouched user are accurate.
func (t *Tracker) ensureBaselineLocked(owner string) {
	if len(t.states[owner]) == 0 {
		t.recomputeLocked(owner, nil)
	}
}

// Flatten collapses requirement groups into one sequence of individual
// requirements, deduplicated by normalized code (first occurrence wins).
// Empty codes are dropped defensively.
func Flatten(groups [][]course.Requirement) []course.Requirement {
	out := make([]course.Requirement, 0)
	seen := make(map[string]bool)
	for _, g := range groups {
		for _, r := range g {
			key := reqKey(r)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, r)
		}
	}
	return out
}

// reqKey normalizes a requirement code for stable lookup: two codes
// differing only in case or surrounding whitespace are the same tracked
// requirement.
func reqKey(req course.Requirement) string {
	return strings.ToLower(strings.TrimSpace(req.Code))
}
