package extractor

import (
	"sort"
	"time"

	"github.com/xaenox/datadonation/internal/export"
	"github.com/xaenox/datadonation/internal/models"
	"github.com/xaenox/datadonation/internal/temporal"
)

// VideosViewed lists every watched video with its hour slot.
func VideosViewed(doc *export.Document, w temporal.Window) (*models.ExtractionResult, error) {
	viewed, err := inWindow(doc.BrowsedVideos().Items, w)
	if err != nil {
		return nil, err
	}

	table := models.NewTable("Date", "Timeslot", "Link")
	for _, v := range viewed {
		table.Append(string(v.Item.Date), temporal.HourSlot(v.At), v.Item.Link)
	}

	return &models.ExtractionResult{
		ID:          VideosViewedID,
		Title:       models.Translatable{"en": "Video views", "nl": "Videos gezien"},
		Table:       table,
		Description: models.Translatable{"en": "This table contains the videos you watched on TikTok"},
		Visualizations: []models.Visualization{
			hourCycle(
				models.Translatable{
					"en": "The percentage of videos viewed within each hour from your daily total",
					"nl": "Het percentage van bekeken video's binnen elk uur van je dagelijkse totaal",
				},
				models.Value{Column: "Link", Label: "Percentage of videos viewed", Aggregate: "count_pct", AddZeroes: true},
			),
		},
	}, nil
}

type postStats struct {
	videos int
	likes  int
}

// VideoPosts groups the user's own videos by the hour they were posted, so
// the exact posting time is not disclosed.
func VideoPosts(doc *export.Document, w temporal.Window) (*models.ExtractionResult, error) {
	list := doc.PostedVideos()
	if !list.Present {
		return nil, nil
	}

	posts, err := inWindow(list.Items, w)
	if err != nil {
		return nil, err
	}

	stats := make(map[time.Time]*postStats)
	for _, p := range posts {
		likes, err := p.Item.Likes.Int()
		if err != nil {
			return nil, err
		}
		key := temporal.HourKey(p.At)
		s, ok := stats[key]
		if !ok {
			s = &postStats{}
			stats[key] = s
		}
		s.videos++
		s.likes += likes
	}

	hours := make([]time.Time, 0, len(stats))
	for h := range stats {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i].Before(hours[j]) })

	table := models.NewTable("Date", "Timeslot", "Videos", "Likes received")
	for _, h := range hours {
		s := stats[h]
		table.Append(h.Format(temporal.DayLayout), temporal.HourSlot(h), s.videos, s.likes)
	}

	return &models.ExtractionResult{
		ID:    VideoPostsID,
		Title: models.Translatable{"en": "Video posts", "nl": "Video posts"},
		Table: table,
		Description: models.Translatable{
			"en": "This table contains the number of videos you yourself posted and the number of likes you received. For anonymization, videos are grouped by the hour they were posted and the exact time removed",
		},
	}, nil
}
