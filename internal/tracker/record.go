// Package tracker holds the filtering, aggregation and formatting rules behind the
// activity list, goal and weekly analysis screens. Everything here is pure: callers
// pass in a snapshot of records and get values back.
package tracker

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ActivityType is the fixed classification of a logged event.
type ActivityType string

const (
	Exercise  ActivityType = "Exercise"
	Hydration ActivityType = "Hydration"
	Sleep     ActivityType = "Sleep"
)

// ActivityTypes lists every type in display order.
var ActivityTypes = []ActivityType{Exercise, Hydration, Sleep}

// ErrUnknownActivityType is returned by ParseActivityType.
var ErrUnknownActivityType = errors.New("unknown activity type")

// ParseActivityType accepts the canonical name in any letter case.
func ParseActivityType(raw string) (ActivityType, error) {
	trimmed := strings.TrimSpace(raw)
	for _, t := range ActivityTypes {
		if strings.EqualFold(trimmed, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownActivityType, raw)
}

// Unit returns the measurement unit used for values of this type.
func (t ActivityType) Unit() string {
	switch t {
	case Exercise:
		return "kcal"
	case Hydration:
		return "ml"
	case Sleep:
		return "hrs"
	default:
		return ""
	}
}

// Timed reports whether records of this type carry a start/end time.
func (t ActivityType) Timed() bool {
	return t == Exercise || t == Sleep
}

// Timing separates records that carry a time range from those that do not.
// The only implementations are Untimed and Interval.
type Timing interface {
	timing()
}

// Untimed marks a record without start/end time (Hydration).
type Untimed struct{}

func (Untimed) timing() {}

// Interval is the start/end time of an Exercise or Sleep record.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (Interval) timing() {}

// Hours returns the interval length in hours.
func (i Interval) Hours() float64 {
	return i.End.Sub(i.Start).Hours()
}

// Record is one logged activity.
type Record struct {
	ID     string
	UserID uint
	Type   ActivityType
	Title  string
	Value  float64
	Date   time.Time
	Notes  string
	Timing Timing
}

// Interval returns the record's time range when it has one.
func (r Record) Interval() (Interval, bool) {
	iv, ok := r.Timing.(Interval)
	return iv, ok
}

// NewHydration builds a hydration record. Hydration never carries a time range.
func NewHydration(userID uint, ml float64, date time.Time, notes string) Record {
	return Record{
		UserID: userID,
		Type:   Hydration,
		Title:  string(Hydration),
		Value:  ml,
		Date:   date,
		Notes:  notes,
		Timing: Untimed{},
	}
}

// NewExercise builds an exercise record. A zero interval means no time range was given.
func NewExercise(userID uint, title string, kcal float64, date time.Time, iv Interval, notes string) Record {
	var timing Timing = Untimed{}
	if !iv.Start.IsZero() && !iv.End.IsZero() {
		timing = iv
	}
	return Record{
		UserID: userID,
		Type:   Exercise,
		Title:  title,
		Value:  kcal,
		Date:   date,
		Notes:  notes,
		Timing: timing,
	}
}

// NewSleep builds a sleep record. The value is the interval length in hours and the
// anchor date is the start time, so the night lands in the bucket of the day it began.
func NewSleep(userID uint, iv Interval, notes string) Record {
	return Record{
		UserID: userID,
		Type:   Sleep,
		Title:  string(Sleep),
		Value:  iv.Hours(),
		Date:   iv.Start,
		Notes:  notes,
		Timing: iv,
	}
}
