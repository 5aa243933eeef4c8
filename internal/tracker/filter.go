package tracker

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Range is an inclusive timestamp range.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether Start <= t <= End at full timestamp precision.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// StartOfDay returns 00:00:00 of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// DayRange covers the whole calendar day of t.
func DayRange(t time.Time) Range {
	return Range{Start: StartOfDay(t), End: EndOfDay(t)}
}

// NormalizeRange turns a From/To date pick into a filter range: From snaps to the
// start of its day, To to the end of its day. A To earlier than From is reset to
// the end of From's day.
func NormalizeRange(from, to time.Time) Range {
	start := StartOfDay(from)
	end := EndOfDay(to)
	if end.Before(start) {
		end = EndOfDay(start)
	}
	return Range{Start: start, End: end}
}

// SameDay compares calendar days in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// Query selects records for one user within a range. Title, when non-empty, must be a
// case-insensitive substring of the record title.
type Query struct {
	UserID uint
	Range  Range
	Title  string
}

// Filter returns the records matching q, keeping input order. The caller guarantees
// q.Range.Start <= q.Range.End.
func Filter(records []Record, q Query) []Record {
	// a Caser is stateful; never share one across goroutines
	folder := cases.Fold()
	needle := folder.String(strings.TrimSpace(q.Title))

	matched := make([]Record, 0, len(records))
	for _, r := range records {
		if r.UserID != q.UserID {
			continue
		}
		if !q.Range.Contains(r.Date) {
			continue
		}
		if needle != "" && !strings.Contains(folder.String(r.Title), needle) {
			continue
		}
		matched = append(matched, r)
	}
	return matched
}

// FilterByType keeps records of type t.
func FilterByType(records []Record, t ActivityType) []Record {
	matched := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Type == t {
			matched = append(matched, r)
		}
	}
	return matched
}

// GroupByType partitions records by type, in ActivityTypes order. Types without
// records are omitted.
func GroupByType(records []Record) []TypeGroup {
	groups := make([]TypeGroup, 0, len(ActivityTypes))
	for _, t := range ActivityTypes {
		items := FilterByType(records, t)
		if len(items) == 0 {
			continue
		}
		groups = append(groups, TypeGroup{Type: t, Records: items})
	}
	return groups
}

// TypeGroup is one section of the activity list.
type TypeGroup struct {
	Type    ActivityType
	Records []Record
}
