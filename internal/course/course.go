package course

// TimeSlot is one (day, start, end) meeting occurrence of a course.
// Day is a single-letter code: M, T, W, R, F, S, or U.
// Start and End are "HH:MM" 24-hour strings; they are not validated at
// construction time — malformed values simply never match a time window.
type TimeSlot struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Requirement is an institution-defined code a student must satisfy
// (e.g., "QR", "HSCI", "LAB", "WRI"). Identity is the case-insensitive
// trimmed code.
type Requirement struct {
	Code string `json:"code"`
}

// Course is a normalized, catalog-indexed teaching unit.
type Course struct {
	// CourseID is the authoritative ID, e.g., "CS-220-01-FA25".
	CourseID     string     `json:"courseID"`
	Title        string     `json:"title"`
	Instructor   string     `json:"instructor"`
	MeetingTimes []TimeSlot `json:"meetingTimes"`

	// Subject is derived from the leading alphabetic run of CourseID,
	// uppercased ("CS-220" → "CS").
	Subject string `json:"subject"`

	// Optional display fields.
	Location    string `json:"location,omitempty"`
	Campus      string `json:"campus,omitempty"`
	Description string `json:"description,omitempty"`

	// Requirements holds OR-groups of requirement tags this course can
	// satisfy. The outer slice is the group list; each inner slice is one
	// group. The catalog carries them opaquely for the rules oracle.
	Requirements [][]Requirement `json:"requirements,omitempty"`
}
