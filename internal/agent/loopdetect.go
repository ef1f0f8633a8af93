package agent

import "encoding/json"

// maxCommandRepeats is how many consecutive identical re-issues of a
// command the loop tolerates before declaring the run stuck.
const maxCommandRepeats = 3

// stallDetector tracks consecutive identical commands. Identity covers
// both the tool name and the full params payload; any difference resets
// the counter.
type stallDetector struct {
	lastKey string
	repeats int
}

// commandKey canonicalizes a command for comparison. json.Marshal sorts
// map keys, so structurally equal params serialize identically.
func commandKey(cmd *Command) string {
	b, err := json.Marshal(cmd)
	if err != nil {
		return cmd.Name
	}
	return string(b)
}

// Observe records a command about to be dispatched and reports whether
// the loop should abort instead. The first three dispatches of an
// identical command go through; the fourth consecutive occurrence
// trips the detector.
func (d *stallDetector) Observe(cmd *Command) bool {
	key := commandKey(cmd)
	if key == d.lastKey {
		d.repeats++
	} else {
		d.lastKey = key
		d.repeats = 0
	}
	return d.repeats >= maxCommandRepeats
}
