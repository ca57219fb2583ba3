package course

import (
	"encoding/json"
	"testing"
)

func TestParseMeetingTimes_ExpandsDays(t *testing.T) {
	slots := ParseMeetingTimes(TimeStrings{"MWF - 10:00 - 11:00"})
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	wantDays := []string{"M", "W", "F"}
	for i, s := range slots {
		if s.Day != wantDays[i] {
			t.Errorf("slot %d day = %q, want %q", i, s.Day, wantDays[i])
		}
		if s.Start != "10:00" || s.End != "11:00" {
			t.Errorf("slot %d times = %s-%s, want 10:00-11:00", i, s.Start, s.End)
		}
	}
}

func TestParseMeetingTimes_DropsMalformedRows(t *testing.T) {
	tests := []struct {
		name string
		in   TimeStrings
		want int
	}{
		{"two parts", TimeStrings{"MWF - 10:00"}, 0},
		{"four parts", TimeStrings{"MWF - 10:00 - 11:00 - extra"}, 0},
		{"empty days", TimeStrings{" - 10:00 - 11:00"}, 0},
		{"empty start", TimeStrings{"M -  - 11:00"}, 0},
		{"unknown day chars ignored", TimeStrings{"XYZ - 10:00 - 11:00"}, 0},
		{"mixed known and unknown", TimeStrings{"MXF - 10:00 - 11:00"}, 2},
		{"good row survives bad row", TimeStrings{"broken", "TR - 09:00 - 10:15"}, 2},
		{"nil input", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(ParseMeetingTimes(tt.in)); got != tt.want {
				t.Errorf("got %d slots, want %d", got, tt.want)
			}
		})
	}
}

func TestTimeStrings_UnmarshalStringOrList(t *testing.T) {
	var single TimeStrings
	if err := json.Unmarshal([]byte(`"MWF - 10:00 - 11:00"`), &single); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if len(single) != 1 {
		t.Fatalf("single: got %d entries, want 1", len(single))
	}

	var many TimeStrings
	if err := json.Unmarshal([]byte(`["M - 10:00 - 11:00", "T - 13:00 - 14:00"]`), &many); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(many) != 2 {
		t.Fatalf("many: got %d entries, want 2", len(many))
	}

	var odd TimeStrings
	if err := json.Unmarshal([]byte(`[42, "M - 10:00 - 11:00"]`), &odd); err != nil {
		t.Fatalf("unmarshal mixed: %v", err)
	}
	if len(odd) != 1 {
		t.Fatalf("mixed: got %d entries, want 1 (non-strings dropped)", len(odd))
	}
}

func TestSubjectOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CS-220-01-FA25", "CS"},
		{"math101", "MATH"},
		{" PHYS-1 ", "PHYS"},
		{"101-CS", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SubjectOf(tt.in); got != tt.want {
			t.Errorf("SubjectOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAdapt(t *testing.T) {
	raw := RawCourse{
		CourseID:     "CS-220-01-FA25",
		Title:        "Blue on the Move",
		Instructor:   "Ada Lovelace",
		MeetingTimes: TimeStrings{"MWF - 10:00 - 11:00"},
		Location:     "SCI 101",
		Campus:       "Wellesley",
	}

	c := Adapt(raw)
	if c.CourseID != "CS-220-01-FA25" {
		t.Errorf("CourseID = %q", c.CourseID)
	}
	if c.Subject != "CS" {
		t.Errorf("Subject = %q, want CS", c.Subject)
	}
	if len(c.MeetingTimes) != 3 {
		t.Errorf("MeetingTimes = %d slots, want 3", len(c.MeetingTimes))
	}
	if c.Location != "SCI 101" || c.Campus != "Wellesley" {
		t.Errorf("display fields not carried: %+v", c)
	}
}

func TestAdapt_LegacyIDField(t *testing.T) {
	var raw RawCourse
	if err := json.Unmarshal([]byte(`{"courseId":"econ-101","title":"Intro"}`), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	c := Adapt(raw)
	if c.CourseID != "econ-101" {
		t.Errorf("CourseID = %q, want econ-101", c.CourseID)
	}
	if c.Subject != "ECON" {
		t.Errorf("Subject = %q, want ECON", c.Subject)
	}
	if c.Instructor != "" {
		t.Errorf("missing instructor should default to empty, got %q", c.Instructor)
	}
}
