package attendance

import (
	"fmt"
	"strings"
)

// ParsePresence normalizes the presence flag sent by scanners and forms.
// Accepted (case-insensitive): in/out, true/false, 1/0, present/absent,
// punch in/punch out, check in/check out.
func ParsePresence(s string) (bool, error) {
	switch strings.ToLower(strings.Join(strings.Fields(s), " ")) {
	case "in", "true", "1", "present", "punch in", "check in", "punch_in", "check_in":
		return true, nil
	case "out", "false", "0", "absent", "punch out", "check out", "punch_out", "check_out":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", ErrInvalidPresence, s)
}

// PresenceLabel is the display form of a presence flag.
func PresenceLabel(in bool) string {
	if in {
		return "IN"
	}
	return "OUT"
}
