// Package description toggles the charging marker in a video description.
//
// The marker is present exactly while the engagement gate is closed. Sync only
// reports a change when the description actually needs rewriting, so callers
// skip the update call on a stable state.
package description

import "strings"

// Sync returns the description for the observed gate state and whether it
// differs from current. An empty marker never changes anything.
func Sync(current, marker string, gateOpen bool) (string, bool) {
	if marker == "" {
		return current, false
	}
	present := strings.Contains(current, marker)
	switch {
	case !gateOpen && !present:
		return marker + "\n" + current, true
	case gateOpen && present:
		return Strip(current, marker), true
	default:
		return current, false
	}
}

// Strip removes the marker in the form it was inserted (followed by a newline)
// and then any remaining bare occurrence. Removal repeats until no occurrence
// is left, since deleting one can join its neighbours into a new one.
func Strip(current, marker string) string {
	if marker == "" {
		return current
	}
	out := current
	for strings.Contains(out, marker) {
		out = strings.ReplaceAll(out, marker+"\n", "")
		out = strings.ReplaceAll(out, marker, "")
	}
	return out
}

// HasMarker reports whether the description carries the marker.
func HasMarker(current, marker string) bool {
	return marker != "" && strings.Contains(current, marker)
}
