package tracker

import (
	"math"
	"time"
)

// Goal is a target for one activity type over an inclusive window.
type Goal struct {
	ID     string
	UserID uint
	Type   ActivityType
	Target float64
	Start  time.Time
	End    time.Time
}

// Window returns the goal's inclusive date range.
func (g Goal) Window() Range {
	return Range{Start: g.Start, End: g.End}
}

// ActiveOn reports whether t falls inside the goal window.
func (g Goal) ActiveOn(t time.Time) bool {
	return g.Window().Contains(t)
}

// ActiveGoals keeps the goals whose window contains t.
func ActiveGoals(goals []Goal, t time.Time) []Goal {
	active := make([]Goal, 0, len(goals))
	for _, g := range goals {
		if g.ActiveOn(t) {
			active = append(active, g)
		}
	}
	return active
}

// RelatedRecords returns the records that count toward g.
func RelatedRecords(g Goal, records []Record) []Record {
	return recordsIn(records, g.Type, g.Window())
}

func recordsIn(records []Record, t ActivityType, window Range) []Record {
	matched := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Type == t && window.Contains(r.Date) {
			matched = append(matched, r)
		}
	}
	return matched
}

// Progress is the completion state of one goal.
type Progress struct {
	Goal Goal
	// Completed is the raw sum of matching values; it may exceed the target.
	Completed float64
	// Ratio is Completed/Target clamped to 1.
	Ratio float64
}

// Achieved reports whether the target has been reached.
func (p Progress) Achieved() bool {
	return p.Ratio >= 1.0
}

// CompletedShown is the completed amount as displayed on the goal card: Ratio × Target.
func (p Progress) CompletedShown() float64 {
	return p.Ratio * p.Goal.Target
}

// Remaining is max(Target − Ratio×Target, 0).
func (p Progress) Remaining() float64 {
	return math.Max(p.Goal.Target-p.CompletedShown(), 0)
}

// GoalProgress measures completion over the whole goal window. g.Target must be > 0.
func GoalProgress(g Goal, records []Record) Progress {
	return progressFor(g, records, g.Window())
}

// GoalProgressAsOf measures completion from the goal start through the end of day,
// never past the goal end.
func GoalProgressAsOf(g Goal, records []Record, day time.Time) Progress {
	window := g.Window()
	if cutoff := EndOfDay(day); cutoff.Before(window.End) {
		window.End = cutoff
	}
	return progressFor(g, records, window)
}

func progressFor(g Goal, records []Record, window Range) Progress {
	var completed float64
	for _, r := range recordsIn(records, g.Type, window) {
		completed += r.Value
	}
	return Progress{
		Goal:      g,
		Completed: completed,
		Ratio:     math.Min(completed/g.Target, 1.0),
	}
}
