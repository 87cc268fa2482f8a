package extractor

import (
	"github.com/xaenox/datadonation/internal/export"
	"github.com/xaenox/datadonation/internal/models"
	"github.com/xaenox/datadonation/internal/temporal"
)

// anonymizer hands out sequential ids in first-seen order.
type anonymizer struct {
	ids  map[string]int
	next int
}

// newAnonymizer reserves id 1 for self.
func newAnonymizer(self string) *anonymizer {
	a := &anonymizer{ids: make(map[string]int), next: 1}
	a.id(self)
	return a
}

func (a *anonymizer) id(name string) int {
	if id, ok := a.ids[name]; ok {
		return id
	}
	id := a.next
	a.ids[name] = id
	a.next++
	return id
}

// DirectMessages lists when messages were sent and by whom, with senders
// replaced by anonymous ids. The donating user is always 1.
func DirectMessages(doc *export.Document, w temporal.Window) (*models.ExtractionResult, error) {
	messages, err := inWindow(doc.ChatHistory().Messages(), w)
	if err != nil {
		return nil, err
	}

	anon := newAnonymizer(doc.UserName())
	table := models.NewTable("Anonymous ID", "Sent")
	for _, m := range messages {
		table.Append(anon.id(m.Item.From), m.At.Format(temporal.MinuteLayout))
	}

	return &models.ExtractionResult{
		ID:    DirectMessagesID,
		Title: models.Translatable{"en": "Direct Message Activity", "nl": "Berichten activiteit"},
		Table: table,
		Description: models.Translatable{
			"en": "This table contains the times at which you sent or received direct messages. The content of the messages is not included, and user names are replaced with anonymous IDs.",
		},
	}, nil
}
