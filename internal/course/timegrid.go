package course

// DayCodes lists the recognized single-letter day codes in week order.
const DayCodes = "MTWRFSU"

// ToMinutes parses a strict "HH:MM" string into minutes since midnight.
// Anything that does not match two digits, a colon, two digits returns
// ok=false. Callers must treat a failed parse as "never matches" in
// interval comparisons rather than as an error.
func ToMinutes(hhmm string) (minutes int, ok bool) {
	if len(hhmm) != 5 || hhmm[2] != ':' {
		return 0, false
	}
	for _, i := range [...]int{0, 1, 3, 4} {
		if hhmm[i] < '0' || hhmm[i] > '9' {
			return 0, false
		}
	}
	h := int(hhmm[0]-'0')*10 + int(hhmm[1]-'0')
	m := int(hhmm[3]-'0')*10 + int(hhmm[4]-'0')
	return h*60 + m, true
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching boundaries do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// SlotOverlapsWindow reports whether a meeting slot intersects the window
// [winStart, winEnd) given in minutes. A slot with a malformed start or
// end never matches.
func SlotOverlapsWindow(slot TimeSlot, winStart, winEnd int) bool {
	a, ok := ToMinutes(slot.Start)
	if !ok {
		return false
	}
	b, ok := ToMinutes(slot.End)
	if !ok {
		return false
	}
	return Overlaps(a, b, winStart, winEnd)
}
