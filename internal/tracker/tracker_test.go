package tracker

import (
	"sort"
	"strings"
	"testing"

	"github.com/planwell/planwell/internal/course"
	"github.com/planwell/planwell/internal/errors"
)

// stubOracle applies the same groups to every user and fulfills a
// requirement when any course's tag groups contain its code.
type stubOracle struct {
	groups [][]course.Requirement
	calls  int
}

func (o *stubOracle) AllRequirementsFor(owner string) [][]course.Requirement {
	return o.groups
}

func (o *stubOracle) Evaluate(owner string, courses []course.Course, req course.Requirement) Evaluation {
	o.calls++
	want := strings.ToLower(strings.TrimSpace(req.Code))
	var evidence []course.Course
	for _, c := range courses {
		for _, group := range c.Requirements {
			for _, tag := range group {
				if strings.ToLower(strings.TrimSpace(tag.Code)) == want {
					evidence = append(evidence, c)
				}
			}
		}
	}
	return Evaluation{Fulfilled: len(evidence) > 0, Evidence: evidence}
}

func reqs(codes ...string) []course.Requirement {
	out := make([]course.Requirement, len(codes))
	for i, c := range codes {
		out[i] = course.Requirement{Code: c}
	}
	return out
}

func missingCodes(t *testing.T, tr *Tracker, owner string) []string {
	t.Helper()
	var out []string
	for _, r := range tr.Missing(owner) {
		out = append(out, r.Code)
	}
	sort.Strings(out)
	return out
}

func TestMissing_UntouchedUserReportsAllRequirements(t *testing.T) {
	oracle := &stubOracle{groups: [][]course.Requirement{reqs("LAB", "WRI"), reqs("HSCI")}}
	tr := New(oracle)

	got := missingCodes(t, tr, "u1")
	want := []string{"HSCI", "LAB", "WRI"}
	if len(got) != len(want) {
		t.Fatalf("missing = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("missing = %v, want %v", got, want)
		}
	}
}

func TestRecompute_FulfilledExcludedFromMissing(t *testing.T) {
	oracle := &stubOracle{groups: [][]course.Requirement{reqs("LAB", "WRI"), reqs("HSCI")}}
	tr := New(oracle)

	labCourse := course.Course{
		CourseID:     "BIOL-110",
		Requirements: [][]course.Requirement{reqs("LAB")},
	}
	tr.Recompute("u1", []course.Course{labCourse})

	got := missingCodes(t, tr, "u1")
	want := []string{"HSCI", "WRI"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("missing = %v, want %v", got, want)
	}

	evidence, err := tr.EvidenceFor("u1", course.Requirement{Code: "LAB"})
	if err != nil {
		t.Fatalf("EvidenceFor failed: %v", err)
	}
	if len(evidence) != 1 || evidence[0].CourseID != "BIOL-110" {
		t.Errorf("evidence = %v", evidence)
	}
}

func TestEvidenceFor_UnfulfilledButApplicable(t *testing.T) {
	oracle := &stubOracle{groups: [][]course.Requirement{reqs("LAB")}}
	tr := New(oracle)

	evidence, err := tr.EvidenceFor("u1", course.Requirement{Code: "LAB"})
	if err != nil {
		t.Fatalf("EvidenceFor failed: %v", err)
	}
	if len(evidence) != 0 {
		t.Errorf("evidence = %v, want empty", evidence)
	}
}

func TestEvidenceFor_NotApplicable(t *testing.T) {
	oracle := &stubOracle{groups: [][]course.Requirement{reqs("LAB")}}
	tr := New(oracle)

	_, err := tr.EvidenceFor("u1", course.Requirement{Code: "QR"})
	if !errors.Is(err, errors.ErrPreconditionNotMet) {
		t.Fatalf("want ErrPreconditionNotMet, got %v", err)
	}
	pErr := err.(*errors.PlanError)
	if pErr.Details["code"] != "QR" {
		t.Errorf("error should carry the code, got %v", pErr.Details)
	}
}

func TestEvidenceFor_KeyNormalization(t *testing.T) {
	oracle := &stubOracle{groups: [][]course.Requirement{reqs("LAB")}}
	tr := New(oracle)

	labCourse := course.Course{
		CourseID:     "BIOL-110",
		Requirements: [][]course.Requirement{reqs("lab")},
	}
	tr.Recompute("u1", []course.Course{labCourse})

	evidence, err := tr.EvidenceFor("u1", course.Requirement{Code: "  lab "})
	if err != nil {
		t.Fatalf("EvidenceFor failed: %v", err)
	}
	if len(evidence) != 1 {
		t.Errorf("case/whitespace variants should hit the same state, got %v", evidence)
	}
}

func TestRecompute_PrunesObsoleteRequirements(t *testing.T) {
	oracle := &stubOracle{groups: [][]course.Requirement{reqs("LAB", "WRI")}}
	tr := New(oracle)
	tr.Recompute("u1", nil)

	// Curriculum change: WRI no longer applies.
	oracle.groups = [][]course.Requirement{reqs("LAB")}
	tr.Recompute("u1", nil)

	if _, err := tr.EvidenceFor("u1", course.Requirement{Code: "WRI"}); !errors.Is(err, errors.ErrPreconditionNotMet) {
		t.Errorf("pruned requirement should be rejected, got %v", err)
	}
	if _, err := tr.EvidenceFor("u1", course.Requirement{Code: "LAB"}); err != nil {
		t.Errorf("surviving requirement should still resolve, got %v", err)
	}
}

func TestRecompute_UsersAreIsolated(t *testing.T) {
	oracle := &stubOracle{groups: [][]course.Requirement{reqs("LAB")}}
	tr := New(oracle)

	labCourse := course.Course{
		CourseID:     "BIOL-110",
		Requirements: [][]course.Requirement{reqs("LAB")},
	}
	tr.Recompute("u1", []course.Course{labCourse})

	if got := missingCodes(t, tr, "u2"); len(got) != 1 || got[0] != "LAB" {
		t.Errorf("u2 missing = %v, want [LAB]", got)
	}
	if got := missingCodes(t, tr, "u1"); len(got) != 0 {
		t.Errorf("u1 missing = %v, want none", got)
	}
}

func TestFlatten(t *testing.T) {
	groups := [][]course.Requirement{
		reqs("LAB", "WRI"),
		nil,
		reqs("", "lab", "HSCI"), // blank dropped, "lab" deduped against "LAB"
	}

	flat := Flatten(groups)
	if len(flat) != 3 {
		t.Fatalf("flat = %v, want 3 entries", flat)
	}
	want := []string{"LAB", "WRI", "HSCI"}
	for i, r := range flat {
		if r.Code != want[i] {
			t.Errorf("flat[%d] = %q, want %q", i, r.Code, want[i])
		}
	}
}
