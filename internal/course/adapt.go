package course

import (
	"encoding/json"
	"strings"
)

// TimeStrings accepts a raw meeting-time field that may be a single string
// or a list of strings, each in the literal format "<days> - <start> - <end>"
// (e.g. "MWF - 10:00 - 11:00").
type TimeStrings []string

// UnmarshalJSON decodes either a JSON string or an array of strings.
// Non-string array elements are dropped.
func (t *TimeStrings) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*t = TimeStrings{one}
		return nil
	}
	var many []json.RawMessage
	if err := json.Unmarshal(data, &many); err != nil {
		// Unusable shape gets the same treatment as a malformed row.
		*t = nil
		return nil
	}
	out := make(TimeStrings, 0, len(many))
	for _, m := range many {
		var s string
		if err := json.Unmarshal(m, &s); err == nil {
			out = append(out, s)
		}
	}
	*t = out
	return nil
}

// RawCourse is the external record shape as stored in the course document
// store. Only the fields below are read; anything else in the document is
// ignored.
type RawCourse struct {
	CourseID     string          `json:"courseID"`
	LegacyID     string          `json:"courseId,omitempty"`
	Title        string          `json:"title"`
	Instructor   string          `json:"instructor"`
	MeetingTimes TimeStrings     `json:"meetingTimes,omitempty"`
	Location     string          `json:"location,omitempty"`
	Campus       string          `json:"campus,omitempty"`
	Description  string          `json:"description,omitempty"`
	Requirements [][]Requirement `json:"requirements,omitempty"`
}

// ID returns the authoritative course ID, preferring the modern field over
// the legacy "courseId" spelling.
func (r RawCourse) ID() string {
	if r.CourseID != "" {
		return r.CourseID
	}
	return r.LegacyID
}

// Adapt converts a raw record into a normalized Course. Missing string
// fields default to empty strings and malformed meeting-time rows are
// silently dropped (a data-quality policy, not an error).
func Adapt(raw RawCourse) Course {
	id := raw.ID()
	return Course{
		CourseID:     id,
		Title:        raw.Title,
		Instructor:   raw.Instructor,
		MeetingTimes: ParseMeetingTimes(raw.MeetingTimes),
		Subject:      SubjectOf(id),
		Location:     raw.Location,
		Campus:       raw.Campus,
		Description:  raw.Description,
		Requirements: raw.Requirements,
	}
}

// AdaptAll converts many raw records.
func AdaptAll(rows []RawCourse) []Course {
	out := make([]Course, 0, len(rows))
	for _, r := range rows {
		out = append(out, Adapt(r))
	}
	return out
}

// ParseMeetingTimes expands raw "<days> - <start> - <end>" strings into one
// TimeSlot per recognized day letter. A "MWF - 10:00 - 11:00" row yields
// three slots sharing the same start and end. Rows that do not split into
// exactly three non-empty parts are dropped; unknown day characters are
// ignored.
func ParseMeetingTimes(raw TimeStrings) []TimeSlot {
	out := []TimeSlot{}
	for _, s := range raw {
		parts := strings.Split(s, " - ")
		if len(parts) != 3 {
			continue
		}
		days := strings.TrimSpace(parts[0])
		start := strings.TrimSpace(parts[1])
		end := strings.TrimSpace(parts[2])
		if days == "" || start == "" || end == "" {
			continue
		}
		for _, ch := range days {
			if strings.ContainsRune(DayCodes, ch) {
				out = append(out, TimeSlot{Day: string(ch), Start: start, End: end})
			}
		}
	}
	return out
}

// SubjectOf derives the subject from the leading alphabetic run of a course
// ID, uppercased. IDs that do not start with a letter yield "".
func SubjectOf(courseID string) string {
	id := strings.TrimSpace(courseID)
	i := 0
	for i < len(id) && isAlpha(id[i]) {
		i++
	}
	return strings.ToUpper(id[:i])
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
