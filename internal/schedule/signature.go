package schedule

import (
	"sort"
	"strconv"
	"strings"
)

// A schedule signature is the canonical key for a person's day: every fully
// timed slot rendered as HH:MM-HH:MM, sorted lexicographically, joined with
// "+". Sorting makes the signature independent of which caja or turno the
// segments came from.

const segmentSeparator = "+"

// displaySeparator is only for human-facing output; stored keys always use
// the canonical "+" form.
const displaySeparator = " / "

// BuildSignature returns the canonical signature for a person's day, or ""
// when the person has no fully timed slot. Slots missing either time are
// ignored.
func BuildSignature(day *DaySchedule, name string) string {
	var segments []string
	for _, slot := range day.SlotsOf(name) {
		if !slot.Timed() {
			continue
		}
		segments = append(segments, slot.Entrada+"-"+slot.Salida)
	}
	if len(segments) == 0 {
		return ""
	}
	sort.Strings(segments)
	return strings.Join(segments, segmentSeparator)
}

// Humanize converts a canonical signature to its display form.
func Humanize(signature string) string {
	return strings.ReplaceAll(signature, segmentSeparator, displaySeparator)
}

// ComputeDuration sums the worked hours of a signature. A segment whose end
// does not come after its start contributes zero; shifts never wrap past
// midnight.
func ComputeDuration(signature string) float64 {
	if signature == "" {
		return 0
	}
	totalMinutes := 0
	for _, segment := range strings.Split(signature, segmentSeparator) {
		start, end, ok := strings.Cut(segment, "-")
		if !ok {
			continue
		}
		startMin, okStart := clockMinutes(start)
		endMin, okEnd := clockMinutes(end)
		if !okStart || !okEnd {
			continue
		}
		if endMin > startMin {
			totalMinutes += endMin - startMin
		}
	}
	return float64(totalMinutes) / 60
}

// ValidSignature reports whether a string is a well-formed signature of one
// or two segments. Longer signatures are rejected: the grid offers three
// turnos but payroll codes only exist for whole or split (cortado) shifts.
func ValidSignature(signature string) bool {
	segments := strings.Split(signature, segmentSeparator)
	if len(segments) < 1 || len(segments) > 2 {
		return false
	}
	for _, segment := range segments {
		start, end, ok := strings.Cut(segment, "-")
		if !ok {
			return false
		}
		if !ValidClock(start) || !ValidClock(end) {
			return false
		}
	}
	return true
}

// ValidClock reports whether a string is a zero-padded HH:MM time of day.
func ValidClock(value string) bool {
	_, ok := clockMinutes(value)
	return ok
}

func clockMinutes(value string) (int, bool) {
	if len(value) != 5 || value[2] != ':' {
		return 0, false
	}
	hours, err := strconv.Atoi(value[:2])
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(value[3:])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}
