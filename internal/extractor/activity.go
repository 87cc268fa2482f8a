package extractor

import (
	"math"
	"sort"
	"time"

	"github.com/xaenox/datadonation/internal/export"
	"github.com/xaenox/datadonation/internal/models"
	"github.com/xaenox/datadonation/internal/temporal"
)

// CommentsAndLikes joins hourly comment and hourly like counts. Without any
// likes given there is nothing to offer.
func CommentsAndLikes(doc *export.Document, w temporal.Window) (*models.ExtractionResult, error) {
	commented, err := instantsInWindow(doc.Comments().Items, w)
	if err != nil {
		return nil, err
	}
	liked, err := instantsInWindow(doc.LikedVideos().Items, w)
	if err != nil {
		return nil, err
	}

	likeCounts := temporal.BucketCount(liked, temporal.HourKey)
	if len(likeCounts) == 0 {
		return nil, nil
	}
	commentCounts := temporal.BucketCount(commented, temporal.HourKey)

	type hourly struct{ comments, likes int }
	joined := make(map[time.Time]*hourly)
	get := func(k time.Time) *hourly {
		h, ok := joined[k]
		if !ok {
			h = &hourly{}
			joined[k] = h
		}
		return h
	}
	for _, b := range commentCounts {
		get(b.Key).comments = b.Count
	}
	for _, b := range likeCounts {
		get(b.Key).likes = b.Count
	}

	hours := make([]time.Time, 0, len(joined))
	for k := range joined {
		hours = append(hours, k)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i].Before(hours[j]) })

	table := models.NewTable("Date", "Timeslot", "Comment posts", "Likes given")
	for _, k := range hours {
		h := joined[k]
		table.Append(k.Format(temporal.HourLayout), temporal.HourSlot(k), h.comments, h.likes)
	}

	return &models.ExtractionResult{
		ID:          CommentsAndLikesID,
		Title:       models.Translatable{"en": "Comments and likes", "nl": "Comments en likes"},
		Table:       table,
		Description: models.Translatable{"en": "This table contains the number of likes you gave and comments you made."},
		Visualizations: []models.Visualization{
			hourCycle(
				models.Translatable{
					"en": "The average number of likes and comments you gave within each hour of the day",
					"nl": "The gemiddelde aantal likes en comments dat je gaf binnen elk uur van de dag",
				},
				models.Value{Column: "Comment posts", Label: "Average number of comments made", Aggregate: "mean", AddZeroes: true},
				models.Value{Column: "Likes given", Label: "Average number of likes given", Aggregate: "mean", AddZeroes: true},
			),
		},
	}, nil
}

// SessionInfo segments posting, viewing and commenting activity into
// sessions and reports their start and length.
func SessionInfo(doc *export.Document, w temporal.Window) (*models.ExtractionResult, error) {
	var instants []time.Time

	posted, err := instantsInWindow(doc.PostedVideos().Items, w)
	if err != nil {
		return nil, err
	}
	instants = append(instants, posted...)

	viewed, err := instantsInWindow(doc.BrowsedVideos().Items, w)
	if err != nil {
		return nil, err
	}
	instants = append(instants, viewed...)

	commented, err := instantsInWindow(doc.Comments().Items, w)
	if err != nil {
		return nil, err
	}
	instants = append(instants, commented...)

	table := models.NewTable("Start", "Duration (in minutes)")
	for _, s := range temporal.SegmentSessions(instants) {
		table.Append(s.Start.Format(temporal.MinuteLayout), roundMinutes(s.Duration))
	}

	sessionValue := func(aggregate string) models.Value {
		return models.Value{Column: "Duration (in minutes)", Label: "Number of minutes", Aggregate: aggregate, AddZeroes: true}
	}

	return &models.ExtractionResult{
		ID:          SessionInfoID,
		Title:       models.Translatable{"en": "Session information", "nl": "Sessie informatie"},
		Table:       table,
		Description: models.Translatable{"en": "This table contains the start date and duration of your TikTok sessions"},
		Visualizations: []models.Visualization{
			{
				Title:  models.Translatable{"en": "Number of minutes spent on TikTok per month"},
				Type:   "area",
				Group:  models.Group{Column: "Start", Label: "Month", DateFormat: "month"},
				Values: []models.Value{sessionValue("sum")},
			},
			{
				Title:  models.Translatable{"en": "Average time spent on TikTok per day of the week"},
				Type:   "bar",
				Group:  models.Group{Column: "Start", Label: "Day of the week", DateFormat: "weekday_cycle"},
				Values: []models.Value{sessionValue("pct")},
			},
			{
				Title:  models.Translatable{"en": "Average time spent on TikTok per hour of the day"},
				Type:   "bar",
				Group:  models.Group{Column: "Start", Label: "Hour of the day", DateFormat: "hour_cycle"},
				Values: []models.Value{sessionValue("pct")},
			},
		},
	}, nil
}

func roundMinutes(d time.Duration) float64 {
	return math.Round(d.Minutes()*100) / 100
}
