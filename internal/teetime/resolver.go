package teetime

import (
	"encoding/json"
	"regexp"
	"strings"

	"teemail/internal/booking"
)

// Unspecified is the canonical sentinel for a tee time nobody recorded.
// Older rows may carry "TBD" instead; both are treated as unset on input.
const Unspecified = "Not Specified"

var (
	// "Tee Time: 3:45 PM" — the explicit label wins over a bare "Time:".
	teeTimeLabelRe = regexp.MustCompile(`(?i)tee\s+time:\s*(\d{1,2}:\d{2}\s*[AaPp][Mm])`)
	timeLabelRe    = regexp.MustCompile(`(?i)\btime:\s*(\d{1,2}:\d{2}\s*[AaPp][Mm])`)

	// Legacy stringified-map format from an older intake service,
	// e.g. "map[course:Blue time:10:35 AM]".
	mapTimeRe = regexp.MustCompile(`(?i)time:(\d{1,2}:\d{2}\s*[AaPp][Mm])`)

	// A value that is already just the time string.
	bareTimeRe = regexp.MustCompile(`(?i)^\d{1,2}:\d{2}\s*[AaPp][Mm]$`)
)

// Resolve reconciles the disagreeing representations of a booking's tee time
// into one canonical display string.
//
// Priority:
//  1. tee_time column, when it holds a real value
//  2. structured rounds / selected_tee_times text (JSON, legacy map, bare time)
//  3. note field ("Tee Time:" / "Time:" labels)
//  4. the Unspecified sentinel
//
// Deterministic and side-effect-free; malformed input yields the sentinel,
// never an error.
func Resolve(b booking.Booking) string {
	if v := strings.TrimSpace(b.TeeTime); v != "" && !isSentinel(v) {
		return v
	}

	if len(b.Rounds) > 0 {
		if v := strings.TrimSpace(b.Rounds[0].Time); v != "" {
			return v
		}
	}
	if v := FromSelected(b.SelectedTeeTimesRaw); v != "" {
		return v
	}

	if v := FromNote(b.Note); v != "" {
		return v
	}

	return Unspecified
}

func isSentinel(v string) bool {
	return strings.EqualFold(v, Unspecified) || strings.EqualFold(v, "TBD")
}

// FromSelected extracts a time from the selected_tee_times column text,
// trying each historical producer format in turn.
func FromSelected(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	// JSON object or list with a "time" field.
	if strings.HasPrefix(raw, "{") {
		var entry struct {
			Time string `json:"time"`
		}
		if err := json.Unmarshal([]byte(raw), &entry); err == nil && entry.Time != "" {
			return strings.TrimSpace(entry.Time)
		}
	}
	if strings.HasPrefix(raw, "[") {
		var entries []struct {
			Time string `json:"time"`
		}
		if err := json.Unmarshal([]byte(raw), &entries); err == nil && len(entries) > 0 && entries[0].Time != "" {
			return strings.TrimSpace(entries[0].Time)
		}
	}

	// Legacy stringified map.
	if m := mapTimeRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}

	// Already just the time string.
	if bareTimeRe.MatchString(raw) {
		return raw
	}

	return ""
}

// FromNote extracts a tee time from free-text note content and normalizes it
// to uppercase AM/PM with trimmed whitespace.
func FromNote(note string) string {
	if strings.TrimSpace(note) == "" {
		return ""
	}

	if m := teeTimeLabelRe.FindStringSubmatch(note); m != nil {
		return normalize(m[1])
	}
	if m := timeLabelRe.FindStringSubmatch(note); m != nil {
		return normalize(m[1])
	}
	return ""
}

func normalize(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}
