package extractor

import (
	"github.com/xaenox/datadonation/internal/export"
	"github.com/xaenox/datadonation/internal/models"
	"github.com/xaenox/datadonation/internal/temporal"
)

// CommentActivity lists when each comment was posted. Excluded by
// DataMinimization.
func CommentActivity(doc *export.Document, w temporal.Window) (*models.ExtractionResult, error) {
	list := doc.Comments()
	if !list.Present {
		return nil, nil
	}
	comments, err := inWindow(list.Items, w)
	if err != nil {
		return nil, err
	}

	table := models.NewTable("Posted on")
	for _, c := range comments {
		table.Append(c.At.Format(temporal.MinuteLayout))
	}

	return &models.ExtractionResult{
		ID:    CommentActivityID,
		Title: models.Translatable{"en": "Comment Activity", "nl": "Commentaar activiteit"},
		Table: table,
	}, nil
}

// VideosLiked lists when each favorite video was saved. Excluded by
// DataMinimization.
func VideosLiked(doc *export.Document, w temporal.Window) (*models.ExtractionResult, error) {
	list := doc.FavoriteVideos()
	if !list.Present {
		return nil, nil
	}
	liked, err := inWindow(list.Items, w)
	if err != nil {
		return nil, err
	}

	table := models.NewTable("Liked")
	for _, v := range liked {
		table.Append(v.At.Format(temporal.MinuteLayout))
	}

	return &models.ExtractionResult{
		ID:    VideosLikedID,
		Title: models.Translatable{"en": "Videos liked", "nl": "Gelikete videos"},
		Table: table,
	}, nil
}
