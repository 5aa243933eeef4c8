package tracker

import "time"

// WeekLength is the fixed window of the weekly analysis. Averages always divide by it,
// days without records included.
const WeekLength = 7

// Sum adds the values of records of type t.
func Sum(records []Record, t ActivityType) float64 {
	var total float64
	for _, r := range records {
		if r.Type == t {
			total += r.Value
		}
	}
	return total
}

// Totals holds one number per activity type.
type Totals struct {
	Exercise  float64
	Hydration float64
	Sleep     float64
}

// Get returns the field for t.
func (t Totals) Get(kind ActivityType) float64 {
	switch kind {
	case Exercise:
		return t.Exercise
	case Hydration:
		return t.Hydration
	case Sleep:
		return t.Sleep
	default:
		return 0
	}
}

func (t *Totals) add(kind ActivityType, v float64) {
	switch kind {
	case Exercise:
		t.Exercise += v
	case Hydration:
		t.Hydration += v
	case Sleep:
		t.Sleep += v
	}
}

// SumByType reduces records to per-type sums.
func SumByType(records []Record) Totals {
	var totals Totals
	for _, r := range records {
		totals.add(r.Type, r.Value)
	}
	return totals
}

// DayBucket is the per-type sum for one calendar day.
type DayBucket struct {
	Date time.Time
	Totals
}

// WeeklyBuckets returns exactly WeekLength buckets for the days start..start+6 in
// ascending order. Records are assigned by calendar day in start's location.
func WeeklyBuckets(records []Record, start time.Time) []DayBucket {
	loc := start.Location()
	first := StartOfDay(start)

	buckets := make([]DayBucket, WeekLength)
	for i := range buckets {
		buckets[i].Date = first.AddDate(0, 0, i)
	}

	for _, r := range records {
		for i := range buckets {
			if SameDay(r.Date, buckets[i].Date, loc) {
				buckets[i].add(r.Type, r.Value)
				break
			}
		}
	}

	return buckets
}

// TrailingWeekStart is the first day of the seven-day window that ends on now's day.
func TrailingWeekStart(now time.Time) time.Time {
	return StartOfDay(now).AddDate(0, 0, -(WeekLength - 1))
}

// WeeklySummary is the reduced weekly analysis.
type WeeklySummary struct {
	Start    time.Time
	End      time.Time
	Buckets  []DayBucket
	Total    Totals
	Averages Totals
}

// Summarize totals the buckets and divides by WeekLength.
func Summarize(buckets []DayBucket) WeeklySummary {
	var summary WeeklySummary
	summary.Buckets = buckets
	if len(buckets) > 0 {
		summary.Start = buckets[0].Date
		summary.End = EndOfDay(buckets[len(buckets)-1].Date)
	}

	for _, b := range buckets {
		summary.Total.Exercise += b.Exercise
		summary.Total.Hydration += b.Hydration
		summary.Total.Sleep += b.Sleep
	}

	summary.Averages = Totals{
		Exercise:  summary.Total.Exercise / WeekLength,
		Hydration: summary.Total.Hydration / WeekLength,
		Sleep:     summary.Total.Sleep / WeekLength,
	}
	return summary
}

// Weekly buckets records from start and summarizes them.
func Weekly(records []Record, start time.Time) WeeklySummary {
	return Summarize(WeeklyBuckets(records, start))
}

// Series extracts the values of one type across the buckets, for charting.
func Series(buckets []DayBucket, t ActivityType) []float64 {
	values := make([]float64, len(buckets))
	for i, b := range buckets {
		values[i] = b.Get(t)
	}
	return values
}
