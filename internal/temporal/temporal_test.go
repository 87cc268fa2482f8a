package temporal

import (
	"errors"
	"testing"
	"time"
)

func at(text string) time.Time {
	t, err := ParseInstant(text)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseInstant(t *testing.T) {
	got, err := ParseInstant("2023-04-05 06:07:08")
	if err != nil {
		t.Fatalf("ParseInstant returned error: %v", err)
	}
	want := time.Date(2023, 4, 5, 6, 7, 8, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected instant: %s", got)
	}
}

func TestParseInstantRejectsOtherShapes(t *testing.T) {
	cases := []string{
		"",
		"2023-04-05",
		"2023-04-05T06:07:08",
		"2023-04-05 6:07:08",
		"2023-04-05 06:07:08.123",
		"2023-04-05 06:07:08 ",
		"05-04-2023 06:07:08",
	}
	for _, text := range cases {
		_, err := ParseInstant(text)
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Fatalf("ParseInstant(%q) expected FormatError, got %v", text, err)
		}
		if fe.Value != text {
			t.Fatalf("FormatError carries %q, want %q", fe.Value, text)
		}
	}
}

func TestWindowIsHalfOpen(t *testing.T) {
	w := DefaultWindow
	if !w.Contains(at("2021-01-01 00:00:00")) {
		t.Fatal("window start must be included")
	}
	if w.Contains(at("2025-01-01 00:00:00")) {
		t.Fatal("window end must be excluded")
	}
	if w.Contains(at("2020-12-31 23:59:59")) {
		t.Fatal("instant before start must be excluded")
	}
	if !w.Contains(at("2024-12-31 23:59:59")) {
		t.Fatal("last second before end must be included")
	}
}

type item struct{ Date string }

func TestFilterByWindow(t *testing.T) {
	items := []item{
		{"2020-06-01 10:00:00"},
		{"2022-06-01 10:00:00"},
		{"2025-01-01 00:00:00"},
		{"2021-01-01 00:00:00"},
	}
	kept, err := FilterByWindow(items, func(i item) string { return i.Date }, DefaultWindow)
	if err != nil {
		t.Fatalf("FilterByWindow returned error: %v", err)
	}
	if len(kept) != 2 {
		t.Fatalf("expected 2 items, got %d", len(kept))
	}
	if kept[0].Item.Date != "2022-06-01 10:00:00" || kept[1].Item.Date != "2021-01-01 00:00:00" {
		t.Fatalf("source order not preserved: %+v", kept)
	}
}

func TestFilterByWindowPropagatesFormatError(t *testing.T) {
	items := []item{{"2022-06-01 10:00:00"}, {"yesterday"}}
	_, err := FilterByWindow(items, func(i item) string { return i.Date }, DefaultWindow)
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestBucketCount(t *testing.T) {
	instants := []time.Time{
		at("2022-01-02 10:59:59"),
		at("2022-01-01 23:10:00"),
		at("2022-01-02 10:00:00"),
		at("2022-01-01 23:45:00"),
		at("2022-01-02 11:00:00"),
	}

	hourly := BucketCount(instants, HourKey)
	want := []Bucket{
		{at("2022-01-01 23:00:00"), 2},
		{at("2022-01-02 10:00:00"), 2},
		{at("2022-01-02 11:00:00"), 1},
	}
	if len(hourly) != len(want) {
		t.Fatalf("expected %d buckets, got %d", len(want), len(hourly))
	}
	for i := range want {
		if !hourly[i].Key.Equal(want[i].Key) || hourly[i].Count != want[i].Count {
			t.Fatalf("bucket %d: got %+v, want %+v", i, hourly[i], want[i])
		}
	}

	daily := BucketCount(instants, DayKey)
	if len(daily) != 2 || daily[0].Count != 2 || daily[1].Count != 3 {
		t.Fatalf("unexpected daily buckets: %+v", daily)
	}
}

func TestHourSlot(t *testing.T) {
	if got := HourSlot(at("2022-01-01 14:30:00")); got != "14-15" {
		t.Fatalf("unexpected slot: %s", got)
	}
	if got := HourSlot(at("2022-01-01 00:00:00")); got != "0-1" {
		t.Fatalf("unexpected slot: %s", got)
	}
	if got := HourSlot(at("2022-01-01 23:59:59")); got != "23-24" {
		t.Fatalf("unexpected slot: %s", got)
	}
}

func TestSegmentSessionsEdgeCases(t *testing.T) {
	if got := SegmentSessions(nil); len(got) != 0 {
		t.Fatalf("expected no sessions, got %d", len(got))
	}

	single := SegmentSessions([]time.Time{at("2022-01-01 12:00:00")})
	if len(single) != 1 || single[0].Duration != 0 || !single[0].Start.Equal(single[0].End) {
		t.Fatalf("expected one zero-length session, got %+v", single)
	}
}

func TestSegmentSessions(t *testing.T) {
	instants := []time.Time{
		at("2022-01-01 12:10:00"),
		at("2022-01-01 12:00:00"),
		at("2022-01-01 12:05:00"), // exactly SessionGap after 12:00
		at("2022-01-01 12:15:01"), // one second over the gap
		at("2022-01-02 08:00:00"),
	}

	sessions := SegmentSessions(instants)
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d: %+v", len(sessions), sessions)
	}
	if sessions[0].Duration != 10*time.Minute {
		t.Fatalf("unexpected first duration: %s", sessions[0].Duration)
	}
	if !sessions[1].Start.Equal(at("2022-01-01 12:15:01")) || sessions[1].Duration != 0 {
		t.Fatalf("unexpected second session: %+v", sessions[1])
	}
	if !sessions[2].Start.Equal(at("2022-01-02 08:00:00")) {
		t.Fatalf("unexpected third session: %+v", sessions[2])
	}

	if !instants[0].Equal(at("2022-01-01 12:10:00")) {
		t.Fatal("input slice must not be reordered")
	}
}

func TestSegmentSessionsPartition(t *testing.T) {
	base := at("2023-03-01 00:00:00")
	offsets := []int{0, 3, 9, 10, 20, 26, 27, 40, 41, 47, 200}
	var instants []time.Time
	for _, m := range offsets {
		instants = append(instants, base.Add(time.Duration(m)*time.Minute))
	}
	reversed := make([]time.Time, len(instants))
	for i := range instants {
		reversed[len(instants)-1-i] = instants[i]
	}

	sessions := SegmentSessions(instants)
	if got := len(SegmentSessions(reversed)); got != len(sessions) {
		t.Fatalf("session count depends on input order: %d vs %d", got, len(sessions))
	}

	idx := 0
	for s, sess := range sessions {
		if !sess.Start.Equal(instants[idx]) {
			t.Fatalf("session %d does not start at the next instant", s)
		}
		for idx+1 < len(instants) && !instants[idx].Equal(sess.End) {
			if gap := instants[idx+1].Sub(instants[idx]); gap > SessionGap {
				t.Fatalf("gap %s inside session %d", gap, s)
			}
			idx++
		}
		idx++
		if s+1 < len(sessions) {
			if gap := sessions[s+1].Start.Sub(sess.End); gap <= SessionGap {
				t.Fatalf("gap %s between sessions %d and %d", gap, s, s+1)
			}
		}
	}
	if idx != len(instants) {
		t.Fatalf("sessions cover %d of %d instants", idx, len(instants))
	}
}
