package extractor

import (
	"github.com/xaenox/datadonation/internal/export"
	"github.com/xaenox/datadonation/internal/models"
	"github.com/xaenox/datadonation/internal/temporal"
)

// Summary counts the user's activity inside the window. Likes received is
// the profile counter as exported.
func Summary(doc *export.Document, w temporal.Window) (*models.ExtractionResult, error) {
	followers, err := countInWindow(doc.Followers().Items, w)
	if err != nil {
		return nil, err
	}
	following, err := countInWindow(doc.Following().Items, w)
	if err != nil {
		return nil, err
	}
	likesReceived, err := doc.LikesReceived().Int()
	if err != nil {
		return nil, err
	}
	posted, err := countInWindow(doc.PostedVideos().Items, w)
	if err != nil {
		return nil, err
	}
	likesGiven, err := countInWindow(doc.LikedVideos().Items, w)
	if err != nil {
		return nil, err
	}
	comments, err := countInWindow(doc.Comments().Items, w)
	if err != nil {
		return nil, err
	}
	watched, err := countInWindow(doc.BrowsedVideos().Items, w)
	if err != nil {
		return nil, err
	}

	messages, err := inWindow(doc.ChatHistory().Messages(), w)
	if err != nil {
		return nil, err
	}
	user := doc.UserName()
	var sent, received int
	for _, m := range messages {
		if m.Item.From == user {
			sent++
		} else {
			received++
		}
	}

	table := models.NewTable("Description", "Number")
	table.Append("Followers", followers)
	table.Append("Following", following)
	table.Append("Likes received", likesReceived)
	table.Append("Videos posted", posted)
	table.Append("Likes given", likesGiven)
	table.Append("Comments posted", comments)
	table.Append("Messages sent", sent)
	table.Append("Messages received", received)
	table.Append("Videos watched", watched)

	return &models.ExtractionResult{
		ID:    SummaryID,
		Title: models.Translatable{"en": "Summary information", "nl": "Samenvatting gegevens"},
		Table: table,
	}, nil
}
