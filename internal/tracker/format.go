package tracker

import (
	"strconv"
	"time"

	"github.com/healthlog/internal/locale"
)

const clockLayout = "15:04"

// Fixed renders v with exactly places decimals.
func Fixed(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64)
}

// Formatter turns aggregation results into display strings.
type Formatter struct {
	Language string
	// Location for clock times; nil keeps each timestamp's own location.
	Location *time.Location
}

// NewFormatter builds a formatter for the given language code.
func NewFormatter(language string, loc *time.Location) Formatter {
	return Formatter{Language: language, Location: loc}
}

func (f Formatter) pick(english, chinese string) string {
	return locale.Pick(f.Language, english, chinese)
}

func (f Formatter) metricLabel(t ActivityType) string {
	switch t {
	case Exercise:
		return f.pick("Calories", "卡路里")
	case Hydration:
		return f.pick("Water", "飲水")
	case Sleep:
		return f.pick("Sleep", "睡眠")
	default:
		return string(t)
	}
}

// Detail is the one-line summary in the activity list, e.g. "Water: 500.0 ml".
func (f Formatter) Detail(r Record) string {
	return f.metricLabel(r.Type) + ": " + Fixed(r.Value, 1) + " " + r.Type.Unit()
}

// Amount is the value line on the record detail screen. Hydration and exercise are
// whole numbers, sleep keeps one decimal.
func (f Formatter) Amount(r Record) string {
	switch r.Type {
	case Hydration:
		return f.pick("Amount", "數量") + ": " + Fixed(r.Value, 0) + " ml"
	case Sleep:
		return f.pick("Duration", "時長") + ": " + Fixed(r.Value, 1) + " hrs"
	case Exercise:
		return f.pick("Calories", "卡路里") + ": " + Fixed(r.Value, 0) + " kcal"
	default:
		return Fixed(r.Value, 1)
	}
}

// ValueWithUnit renders "<value> <unit>" at one decimal, as in goal related records.
func (f Formatter) ValueWithUnit(r Record) string {
	return Fixed(r.Value, 1) + " " + r.Type.Unit()
}

// TimeRange renders "HH:MM - HH:MM". ok is false when the record has no time range,
// and the line should be omitted.
func (f Formatter) TimeRange(r Record) (string, bool) {
	iv, ok := r.Interval()
	if !ok {
		return "", false
	}
	return f.clock(iv.Start) + " - " + f.clock(iv.End), true
}

func (f Formatter) clock(t time.Time) string {
	if f.Location != nil {
		t = t.In(f.Location)
	}
	return t.Format(clockLayout)
}

// WeeklyLine is the total/average pair for one type.
type WeeklyLine struct {
	Type    ActivityType
	Total   string
	Average string
}

// WeeklyLines renders totals and averages at one decimal.
func (f Formatter) WeeklyLines(s WeeklySummary) []WeeklyLine {
	lines := make([]WeeklyLine, 0, len(ActivityTypes))
	for _, t := range ActivityTypes {
		unit := t.Unit()
		lines = append(lines, WeeklyLine{
			Type:    t,
			Total:   f.pick("Total", "總計") + ": " + Fixed(s.Total.Get(t), 1) + " " + unit,
			Average: f.pick("Average", "平均") + ": " + Fixed(s.Averages.Get(t), 1) + " " + unit + f.pick("/day", "/天"),
		})
	}
	return lines
}

// GoalCard is the display form of a Progress.
type GoalCard struct {
	Target    string
	Completed string
	Remaining string
	Percent   string
	Achieved  bool
}

// GoalCard renders target, completed and remaining at one decimal.
func (f Formatter) GoalCard(p Progress) GoalCard {
	return GoalCard{
		Target:    f.pick("Target", "目標") + ": " + Fixed(p.Goal.Target, 1),
		Completed: f.pick("Completed", "已完成") + ": " + Fixed(p.CompletedShown(), 1),
		Remaining: f.pick("Remaining", "剩餘") + ": " + Fixed(p.Remaining(), 1),
		Percent:   Fixed(p.Ratio*100, 0) + "%",
		Achieved:  p.Achieved(),
	}
}
