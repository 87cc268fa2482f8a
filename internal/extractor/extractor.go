// Package extractor turns a TikTok export into the tables offered for
// donation. Message contents and user names never end up in a table.
package extractor

import (
	"time"

	"github.com/xaenox/datadonation/internal/export"
	"github.com/xaenox/datadonation/internal/models"
	"github.com/xaenox/datadonation/internal/temporal"
)

const (
	SummaryID          = "tiktok_summary"
	VideosViewedID     = "tiktok_videos_viewed"
	VideoPostsID       = "tiktok_posts"
	CommentsAndLikesID = "tiktok_comments_and_likes"
	SessionInfoID      = "tiktok_session_info"
	DirectMessagesID   = "tiktok_direct_messages"
	CommentActivityID  = "tiktok_comment_activity"
	VideosLikedID      = "tiktok_videos_liked"
)

// Func builds one table from doc. A nil result means the source section is
// missing and no table should be offered.
type Func func(doc *export.Document, w temporal.Window) (*models.ExtractionResult, error)

type Extractor struct {
	ID      string
	Extract Func
}

// All is every known extractor, in the order tables are presented.
var All = []Extractor{
	{ID: SummaryID, Extract: Summary},
	{ID: VideosViewedID, Extract: VideosViewed},
	{ID: VideoPostsID, Extract: VideoPosts},
	{ID: CommentsAndLikesID, Extract: CommentsAndLikes},
	{ID: SessionInfoID, Extract: SessionInfo},
	{ID: DirectMessagesID, Extract: DirectMessages},
	{ID: CommentActivityID, Extract: CommentActivity},
	{ID: VideosLikedID, Extract: VideosLiked},
}

// Policy names the tables that must not be extracted.
type Policy struct {
	Name     string
	Excluded []string
}

// DataMinimization excludes the per-comment and per-liked-video timelines,
// which the research team asked to stop collecting.
var DataMinimization = Policy{
	Name:     "data-minimization",
	Excluded: []string{CommentActivityID, VideosLikedID},
}

func (p Policy) Excludes(id string) bool {
	for _, ex := range p.Excluded {
		if ex == id {
			return true
		}
	}
	return false
}

// Active returns the extractors of All that p does not exclude.
func (p Policy) Active() []Extractor {
	var active []Extractor
	for _, e := range All {
		if !p.Excludes(e.ID) {
			active = append(active, e)
		}
	}
	return active
}

func inWindow[T export.Timestamped](items []T, w temporal.Window) ([]temporal.Dated[T], error) {
	return temporal.FilterByWindow(items, func(item T) string { return item.Timestamp() }, w)
}

func countInWindow[T export.Timestamped](items []T, w temporal.Window) (int, error) {
	kept, err := inWindow(items, w)
	if err != nil {
		return 0, err
	}
	return len(kept), nil
}

func instantsInWindow[T export.Timestamped](items []T, w temporal.Window) ([]time.Time, error) {
	kept, err := inWindow(items, w)
	if err != nil {
		return nil, err
	}
	return temporal.Instants(kept), nil
}

func hourCycle(title models.Translatable, values ...models.Value) models.Visualization {
	return models.Visualization{
		Title:  title,
		Type:   "bar",
		Group:  models.Group{Column: "Date", Label: "Hour of the day", DateFormat: "hour_cycle"},
		Values: values,
	}
}
