// Package status collects unit status conditions raised during a convergence
// pass and reduces them to the single most severe one.
//
// Steps record Waiting or Blocked conditions as they discover them instead of
// returning errors; at the end of the pass the recorder yields one Status
// (blocked beats waiting, the first condition of the highest severity wins).
package status

import "fmt"

// Level orders status severity. Higher values are more severe.
type Level int

const (
	// LevelReady means no unmet condition was recorded.
	LevelReady Level = iota
	// LevelWaiting means a connected collaborator has not produced
	// required data yet; resolved automatically on a later pass.
	LevelWaiting
	// LevelBlocked means a required collaborator is not connected at all;
	// requires external topology change.
	LevelBlocked
)

// Status is a single condition with a human-readable reason.
type Status struct {
	Level  Level
	Reason string
}

// Ready is the zero condition.
var Ready = Status{Level: LevelReady}

// Waiting builds a waiting-level status.
func Waiting(reason string) Status {
	return Status{Level: LevelWaiting, Reason: reason}
}

// Blocked builds a blocked-level status.
func Blocked(reason string) Status {
	return Status{Level: LevelBlocked, Reason: reason}
}

// String renders the status in the stable "level: reason" form.
func (s Status) String() string {
	switch s.Level {
	case LevelBlocked:
		return fmt.Sprintf("blocked: %s", s.Reason)
	case LevelWaiting:
		return fmt.Sprintf("waiting: %s", s.Reason)
	default:
		return "ready"
	}
}

// Recorder accumulates conditions over one convergence pass.
// The zero value is ready to use.
type Recorder struct {
	conditions []Status
}

// Add records a condition. Ready-level conditions are ignored.
func (r *Recorder) Add(s Status) {
	if s.Level == LevelReady {
		return
	}
	r.conditions = append(r.conditions, s)
}

// Worst returns the most severe recorded condition, or Ready if none were
// recorded. Among conditions of equal severity the first recorded wins, so
// the reported reason matches the earliest step that could not proceed.
func (r *Recorder) Worst() Status {
	worst := Ready
	for _, c := range r.conditions {
		if c.Level > worst.Level {
			worst = c
		}
	}
	return worst
}

// Reset clears all recorded conditions for the next pass.
func (r *Recorder) Reset() {
	r.conditions = r.conditions[:0]
}
