package extractor

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xaenox/datadonation/internal/export"
	"github.com/xaenox/datadonation/internal/models"
	"github.com/xaenox/datadonation/internal/temporal"
	"go.uber.org/zap/zaptest"
)

func fixturePath() string {
	return filepath.Join("..", "..", "testdata", "tiktok_export.json")
}

func loadFixture(t *testing.T) *export.Document {
	t.Helper()
	doc, err := export.NewReader(zaptest.NewLogger(t)).Load(fixturePath())
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return doc
}

func parseDoc(t *testing.T, raw string) *export.Document {
	t.Helper()
	var doc export.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("unmarshal document: %v", err)
	}
	return &doc
}

func assertRows(t *testing.T, res *models.ExtractionResult, want [][]any) {
	t.Helper()
	if res == nil {
		t.Fatal("expected a table, got none")
	}
	if len(res.Table.Rows) != len(want) {
		t.Fatalf("%s: expected %d rows, got %d: %v", res.ID, len(want), len(res.Table.Rows), res.Table.Rows)
	}
	for i := range want {
		if !reflect.DeepEqual(res.Table.Rows[i], want[i]) {
			t.Fatalf("%s row %d: got %#v, want %#v", res.ID, i, res.Table.Rows[i], want[i])
		}
	}
}

func TestSummary(t *testing.T) {
	res, err := Summary(loadFixture(t), temporal.DefaultWindow)
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}
	if res.ID != SummaryID {
		t.Fatalf("unexpected id: %s", res.ID)
	}
	assertRows(t, res, [][]any{
		{"Followers", 1},
		{"Following", 1},
		{"Likes received", 42},
		{"Videos posted", 3},
		{"Likes given", 3},
		{"Comments posted", 2},
		{"Messages sent", 1},
		{"Messages received", 2},
		{"Videos watched", 3},
	})
}

func TestSummaryLikesReceivedDefaultsToZero(t *testing.T) {
	doc := parseDoc(t, `{"Profile": {"Profile Information": {"ProfileMap": {"userName": "alice", "likesReceived": "None"}}}}`)
	res, err := Summary(doc, temporal.DefaultWindow)
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}
	if got := res.Table.Rows[2][1]; got != 0 {
		t.Fatalf("likes received should be 0, got %v", got)
	}
	for _, row := range res.Table.Rows {
		if row[1] != 0 {
			t.Fatalf("expected all zero counts for an empty export, got %v", row)
		}
	}
}

func TestVideosViewed(t *testing.T) {
	res, err := VideosViewed(loadFixture(t), temporal.DefaultWindow)
	if err != nil {
		t.Fatalf("VideosViewed returned error: %v", err)
	}
	assertRows(t, res, [][]any{
		{"2022-03-01 14:05:00", "14-15", "https://www.tiktokv.com/share/video/1/"},
		{"2022-03-01 14:08:00", "14-15", "https://www.tiktokv.com/share/video/2/"},
		{"2022-03-01 20:00:00", "20-21", "https://www.tiktokv.com/share/video/3/"},
	})
	if len(res.Visualizations) != 1 || res.Visualizations[0].Values[0].Aggregate != "count_pct" {
		t.Fatalf("unexpected visualizations: %+v", res.Visualizations)
	}
}

func TestVideoPosts(t *testing.T) {
	res, err := VideoPosts(loadFixture(t), temporal.DefaultWindow)
	if err != nil {
		t.Fatalf("VideoPosts returned error: %v", err)
	}
	assertRows(t, res, [][]any{
		{"2022-03-01", "14-15", 2, 5},
		{"2022-03-05", "8-9", 1, 7},
	})
}

func TestVideoPostsMissingSection(t *testing.T) {
	res, err := VideoPosts(parseDoc(t, `{"Video": {}}`), temporal.DefaultWindow)
	if err != nil {
		t.Fatalf("VideoPosts returned error: %v", err)
	}
	if res != nil {
		t.Fatalf("expected no table, got %+v", res)
	}

	res, err = VideoPosts(parseDoc(t, `{"Video": {"Videos": {"VideoList": []}}}`), temporal.DefaultWindow)
	if err != nil {
		t.Fatalf("VideoPosts returned error: %v", err)
	}
	assertRows(t, res, nil)
}

func TestVideoPostsMalformedLikes(t *testing.T) {
	doc := parseDoc(t, `{"Video": {"Videos": {"VideoList": [{"Date": "2022-01-01 10:00:00", "Likes": "lots"}]}}}`)
	_, err := VideoPosts(doc, temporal.DefaultWindow)
	var fe *temporal.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestCommentsAndLikes(t *testing.T) {
	res, err := CommentsAndLikes(loadFixture(t), temporal.DefaultWindow)
	if err != nil {
		t.Fatalf("CommentsAndLikes returned error: %v", err)
	}
	assertRows(t, res, [][]any{
		{"2022-03-01 14:00:00", "14-15", 1, 2},
		{"2022-03-01 18:00:00", "18-19", 1, 0},
		{"2022-03-02 09:00:00", "9-10", 0, 1},
	})
}

func TestCommentsAndLikesWithoutLikeList(t *testing.T) {
	doc := parseDoc(t, `{
		"Activity": {},
		"Comment": {"Comments": {"CommentsList": [{"Date": "2022-03-01 14:12:00", "Comment": "nice"}]}}
	}`)
	res, err := CommentsAndLikes(doc, temporal.DefaultWindow)
	if err != nil {
		t.Fatalf("CommentsAndLikes returned error: %v", err)
	}
	if res != nil {
		t.Fatalf("expected no table, got %+v", res)
	}
}

func TestSessionInfo(t *testing.T) {
	res, err := SessionInfo(loadFixture(t), temporal.DefaultWindow)
	if err != nil {
		t.Fatalf("SessionInfo returned error: %v", err)
	}
	assertRows(t, res, [][]any{
		{"2022-03-01 14:05", 7.0},
		{"2022-03-01 14:50", 0.0},
		{"2022-03-01 18:00", 0.0},
		{"2022-03-01 20:00", 0.0},
		{"2022-03-05 08:00", 0.0},
	})
	if len(res.Visualizations) != 3 {
		t.Fatalf("expected 3 visualizations, got %d", len(res.Visualizations))
	}
}

func TestSessionInfoRoundsMinutes(t *testing.T) {
	doc := parseDoc(t, `{"Comment": {"Comments": {"CommentsList": [
		{"Date": "2022-03-01 14:00:00"},
		{"Date": "2022-03-01 14:00:20"}
	]}}}`)
	res, err := SessionInfo(doc, temporal.DefaultWindow)
	if err != nil {
		t.Fatalf("SessionInfo returned error: %v", err)
	}
	assertRows(t, res, [][]any{{"2022-03-01 14:00", 0.33}})
}

func TestDirectMessages(t *testing.T) {
	res, err := DirectMessages(loadFixture(t), temporal.DefaultWindow)
	if err != nil {
		t.Fatalf("DirectMessages returned error: %v", err)
	}
	assertRows(t, res, [][]any{
		{2, "2022-03-01 12:00"},
		{1, "2022-03-01 12:01"},
		{3, "2022-03-02 12:00"},
	})
}

func TestDirectMessagesAnonymousIDs(t *testing.T) {
	doc := parseDoc(t, `{
		"Profile": {"Profile Information": {"ProfileMap": {"userName": "me"}}},
		"Direct Messages": {"Chat History": {"ChatHistory": {
			"one": [
				{"Date": "2022-01-01 10:00:00", "From": "x"},
				{"Date": "2022-01-01 10:01:00", "From": "y"},
				{"Date": "2022-01-01 10:02:00", "From": "x"}
			],
			"two": [
				{"Date": "2022-01-02 10:00:00", "From": "z"},
				{"Date": "2022-01-02 10:01:00", "From": "me"},
				{"Date": "2022-01-02 10:02:00", "From": "y"}
			]
		}}}
	}`)
	res, err := DirectMessages(doc, temporal.DefaultWindow)
	if err != nil {
		t.Fatalf("DirectMessages returned error: %v", err)
	}

	var ids []any
	for _, row := range res.Table.Rows {
		ids = append(ids, row[0])
	}
	want := []any{2, 3, 2, 4, 1, 3}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("unexpected ids: %v, want %v", ids, want)
	}
	for _, col := range res.Table.Columns {
		if col == "From" || col == "Content" {
			t.Fatalf("column %q must not be published", col)
		}
	}
}

func TestDirectMessagesEmptyHistory(t *testing.T) {
	for _, raw := range []string{
		`{"Direct Messages": {"Chat History": {"ChatHistory": {}}}}`,
		`{}`,
	} {
		res, err := DirectMessages(parseDoc(t, raw), temporal.DefaultWindow)
		if err != nil {
			t.Fatalf("DirectMessages returned error: %v", err)
		}
		assertRows(t, res, nil)
	}
}

func TestDormantExtractors(t *testing.T) {
	doc := loadFixture(t)

	res, err := CommentActivity(doc, temporal.DefaultWindow)
	if err != nil {
		t.Fatalf("CommentActivity returned error: %v", err)
	}
	assertRows(t, res, [][]any{{"2022-03-01 14:12"}, {"2022-03-01 18:00"}})

	res, err = VideosLiked(doc, temporal.DefaultWindow)
	if err != nil {
		t.Fatalf("VideosLiked returned error: %v", err)
	}
	assertRows(t, res, [][]any{{"2022-03-03 10:00"}})
}

func TestDataMinimizationPolicy(t *testing.T) {
	var ids []string
	for _, e := range DataMinimization.Active() {
		ids = append(ids, e.ID)
	}
	want := []string{SummaryID, VideosViewedID, VideoPostsID, CommentsAndLikesID, SessionInfoID, DirectMessagesID}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("unexpected active extractors: %v", ids)
	}

	if n := len(Policy{}.Active()); n != len(All) {
		t.Fatalf("empty policy should keep all %d extractors, got %d", len(All), n)
	}
}
