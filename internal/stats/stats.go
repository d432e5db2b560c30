// Package stats folds study sessions into the aggregate shapes the
// dashboard consumes. Everything here is pure computation over already
// validated records; no I/O and no re-validation. Callers pass a
// normalized reference day, so results are fully deterministic.
package stats

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Sh16coder/Trackitstudy/internal"
	"github.com/Sh16coder/Trackitstudy/internal/dateutil"
)

// NoFavorite is reported when no subject has any recorded hours.
const NoFavorite = "None"

type DayBucket struct {
	Weekday string  `json:"weekday"`
	Hours   float64 `json:"hours"`
}

// Aggregates is the raw fold output before windowing.
type Aggregates struct {
	DailyBuckets  map[string]DayBucket
	SubjectTotals map[string]float64
	TotalHours    float64
	TodayHours    float64
}

// AggregateView is the composed read model handed to the presentation
// layer. DailySeries always has exactly 7 entries, oldest first.
type AggregateView struct {
	TodayHours    float64            `json:"today_hours"`
	WeeklyHours   float64            `json:"weekly_hours"`
	DailySeries   []DayBucket        `json:"daily_series"`
	SubjectTotals map[string]float64 `json:"subject_totals"`
	TotalHours    float64            `json:"total_hours"`
}

// SharedView is the read-only summary shown for another user's data.
type SharedView struct {
	DisplayName     string             `json:"display_name"`
	TotalHours      float64            `json:"total_hours"`
	FavoriteSubject string             `json:"favorite_subject"`
	WeeklyAverage   float64            `json:"weekly_average"`
	SubjectTotals   map[string]float64 `json:"subject_totals"`
}

// Aggregate folds sessions into daily and subject buckets. Addition is
// commutative, so input order never changes the result.
func Aggregate(sessions []internal.StudySession, referenceDay string) Aggregates {
	agg := Aggregates{
		DailyBuckets:  make(map[string]DayBucket),
		SubjectTotals: make(map[string]float64),
	}
	today := dateutil.BucketKey(referenceDay)
	for _, s := range sessions {
		key := dateutil.BucketKey(s.Date)
		b, ok := agg.DailyBuckets[key]
		if !ok {
			b = DayBucket{Weekday: dateutil.WeekdayLabel(s.Date)}
		}
		b.Hours += s.DurationHours
		agg.DailyBuckets[key] = b

		agg.SubjectTotals[s.Subject] += s.DurationHours
		agg.TotalHours += s.DurationHours
		if key == today {
			agg.TodayHours += s.DurationHours
		}
	}
	return agg
}

// WeeklyHours sums the trailing 7 calendar dates ending at referenceDay.
// This is a sliding window, not an ISO week; days with no sessions
// contribute zero.
func WeeklyHours(daily map[string]DayBucket, referenceDay string) float64 {
	total := 0.0
	for _, day := range dateutil.LastNDates(7, referenceDay) {
		total += daily[day].Hours
	}
	return total
}

// DailySeries returns one entry per trailing calendar date, oldest
// first, with zero-hour entries for empty days.
func DailySeries(daily map[string]DayBucket, referenceDay string) []DayBucket {
	days := dateutil.LastNDates(7, referenceDay)
	series := make([]DayBucket, 0, len(days))
	for _, day := range days {
		series = append(series, DayBucket{
			Weekday: dateutil.WeekdayLabel(day),
			Hours:   daily[day].Hours,
		})
	}
	return series
}

// WeeklyAverage averages hours over the trailing weeks*7 days, cutoff
// inclusive, rounded to one decimal for display. ISO day strings compare
// lexicographically, so the window test is a plain string comparison.
func WeeklyAverage(sessions []internal.StudySession, referenceDay string, weeks int) float64 {
	if weeks <= 0 {
		return 0
	}
	cutoff := dateutil.DaysAgo(weeks*7, referenceDay)
	total := 0.0
	for _, s := range sessions {
		if s.Date >= cutoff {
			total += s.DurationHours
		}
	}
	return Round1(total / float64(weeks))
}

// FavoriteSubject picks the subject with strictly greatest cumulative
// hours, returned as stored. Ties resolve to the first subject in
// ascending label order, keeping the result stable across map
// iteration orders.
func FavoriteSubject(subjectTotals map[string]float64) string {
	if len(subjectTotals) == 0 {
		return NoFavorite
	}
	labels := make([]string, 0, len(subjectTotals))
	for label := range subjectTotals {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	favorite := NoFavorite
	maxHours := 0.0
	for _, label := range labels {
		if subjectTotals[label] > maxHours {
			maxHours = subjectTotals[label]
			favorite = label
		}
	}
	return favorite
}

// DisplayLabel capitalizes a subject for display; stored labels keep
// their submitted case for bucketing.
func DisplayLabel(subject string) string {
	if subject == "" {
		return subject
	}
	first, width := utf8.DecodeRuneInString(subject)
	return strings.ToUpper(string(first)) + subject[width:]
}

// Round1 rounds to one decimal for display values.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// BuildView composes the full dashboard read model from raw sessions.
func BuildView(sessions []internal.StudySession, referenceDay string) AggregateView {
	agg := Aggregate(sessions, referenceDay)
	return AggregateView{
		TodayHours:    agg.TodayHours,
		WeeklyHours:   WeeklyHours(agg.DailyBuckets, referenceDay),
		DailySeries:   DailySeries(agg.DailyBuckets, referenceDay),
		SubjectTotals: agg.SubjectTotals,
		TotalHours:    agg.TotalHours,
	}
}

// BuildSharedView composes the read-only summary for a resolved share
// code, over a 4-week trailing average like the owner's dashboard card.
func BuildSharedView(displayName string, sessions []internal.StudySession, referenceDay string) SharedView {
	agg := Aggregate(sessions, referenceDay)
	favorite := FavoriteSubject(agg.SubjectTotals)
	if favorite != NoFavorite {
		favorite = DisplayLabel(favorite)
	}
	return SharedView{
		DisplayName:     displayName,
		TotalHours:      Round1(agg.TotalHours),
		FavoriteSubject: favorite,
		WeeklyAverage:   WeeklyAverage(sessions, referenceDay, 4),
		SubjectTotals:   agg.SubjectTotals,
	}
}
