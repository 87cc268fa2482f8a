// Package temporal parses export timestamps and derives the coarse time
// aggregates (hour buckets, sessions) that the extractors publish instead of
// exact activity times.
package temporal

import (
	"fmt"
	"sort"
	"time"
)

const (
	// Layout is the only timestamp shape found in TikTok exports.
	Layout = "2006-01-02 15:04:05"
	// MinuteLayout is used when a timestamp is published with minute precision.
	MinuteLayout = "2006-01-02 15:04"
	// DayLayout is used for calendar-day columns.
	DayLayout = "2006-01-02"
	// HourLayout is used for hour-bucket columns.
	HourLayout = "2006-01-02 15:00:00"

	// SessionGap is the largest gap between two activities of the same session.
	SessionGap = 5 * time.Minute
)

// FormatError reports a field that does not have the literal shape the export
// schema promises.
type FormatError struct {
	Value  string
	Layout string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("value %q does not match %q: %v", e.Value, e.Layout, e.Err)
	}
	return fmt.Sprintf("value %q does not match %q", e.Value, e.Layout)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// ParseInstant parses text in Layout. Anything that does not format back to
// the same text (single digit hours, fractional seconds) is rejected.
func ParseInstant(text string) (time.Time, error) {
	t, err := time.Parse(Layout, text)
	if err != nil {
		return time.Time{}, &FormatError{Value: text, Layout: Layout, Err: err}
	}
	if t.Format(Layout) != text {
		return time.Time{}, &FormatError{Value: text, Layout: Layout}
	}
	return t, nil
}

// Window is a half-open range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// DefaultWindow is the analysis window applied to every table.
var DefaultWindow = Window{
	Start: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Dated pairs an item with its parsed timestamp.
type Dated[T any] struct {
	At   time.Time
	Item T
}

// FilterByWindow parses the date of every item and keeps those inside w, in
// source order. The first malformed date aborts the scan.
func FilterByWindow[T any](items []T, date func(T) string, w Window) ([]Dated[T], error) {
	var kept []Dated[T]
	for _, item := range items {
		at, err := ParseInstant(date(item))
		if err != nil {
			return nil, err
		}
		if !w.Contains(at) {
			continue
		}
		kept = append(kept, Dated[T]{At: at, Item: item})
	}
	return kept, nil
}

// Instants drops the items and keeps the timestamps.
func Instants[T any](dated []Dated[T]) []time.Time {
	out := make([]time.Time, len(dated))
	for i, d := range dated {
		out[i] = d.At
	}
	return out
}

// HourKey floors t to the start of its hour.
func HourKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// DayKey floors t to the start of its calendar day.
func DayKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// HourSlot labels the hour-of-day bucket of t, e.g. "14-15".
func HourSlot(t time.Time) string {
	return fmt.Sprintf("%d-%d", t.Hour(), t.Hour()+1)
}

// Bucket is the number of instants sharing one key.
type Bucket struct {
	Key   time.Time
	Count int
}

// BucketCount groups instants by key and returns the buckets in ascending key
// order.
func BucketCount(instants []time.Time, key func(time.Time) time.Time) []Bucket {
	counts := make(map[time.Time]int)
	for _, t := range instants {
		counts[key(t)]++
	}

	buckets := make([]Bucket, 0, len(counts))
	for k, n := range counts {
		buckets = append(buckets, Bucket{Key: k, Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Key.Before(buckets[j].Key)
	})
	return buckets
}

// Session is a run of activity with no gap larger than SessionGap.
type Session struct {
	Start    time.Time
	End      time.Time
	Duration time.Duration
}

// SegmentSessions sorts a copy of instants and splits it wherever two
// consecutive instants are more than SessionGap apart.
func SegmentSessions(instants []time.Time) []Session {
	if len(instants) == 0 {
		return nil
	}

	sorted := make([]time.Time, len(instants))
	copy(sorted, instants)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var sessions []Session
	start, end := sorted[0], sorted[0]
	for _, cur := range sorted[1:] {
		if cur.Sub(end) > SessionGap {
			sessions = append(sessions, Session{Start: start, End: end, Duration: end.Sub(start)})
			start = cur
		}
		end = cur
	}
	sessions = append(sessions, Session{Start: start, End: end, Duration: end.Sub(start)})
	return sessions
}
