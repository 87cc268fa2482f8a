package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/datadonation/internal/format"
	"github.com/xaenox/datadonation/internal/models"
	"go.uber.org/zap"
)

const (
	previewRows = 15
	// Telegram rejects messages longer than 4096 characters.
	maxMessageRunes = 4000
)

// render shows the pending page of sess. The caller holds sess.mu.
func (b *Bot) render(chatID int64, sess *chatSession) {
	page := sess.page
	header := page.Header.Text(b.locale)

	switch body := page.Body.(type) {
	case models.FilePrompt:
		b.sendMessage(chatID, fmt.Sprintf("%s (%d%%)\n\n%s\n\nSend your download (%s) as a document, or /cancel to stop.",
			header, page.Progress, body.Description.Text(b.locale), body.Extensions))

	case models.ConfirmPrompt:
		msg := tgbotapi.NewMessage(chatID, body.Text.Text(b.locale))
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(body.Ok.Text(b.locale), callbackRetryYes),
				tgbotapi.NewInlineKeyboardButtonData(body.Cancel.Text(b.locale), callbackRetryNo),
			),
		)
		b.send(chatID, msg)

	case models.ConsentForm:
		b.sendMessage(chatID, fmt.Sprintf("%s (%d%%)\n\n%s", header, page.Progress, body.Description.Text(b.locale)))
		for _, t := range body.Tables {
			b.sendMessage(chatID, b.tablePreview(t))
		}
		for _, t := range body.MetaTables {
			b.sendMessage(chatID, b.tablePreview(t))
		}

		msg := tgbotapi.NewMessage(chatID, "Tap a table to leave it out of your donation, then choose Donate or Decline.")
		msg.ReplyMarkup = consentKeyboard(body, sess.kept, b.locale)
		b.send(chatID, msg)

	default:
		b.logger.Error("Unsupported page body", zap.String("type", fmt.Sprintf("%T", page.Body)))
	}
}

func (b *Bot) updateConsentKeyboard(chatID int64, messageID int, form models.ConsentForm, kept map[string]bool) {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, consentKeyboard(form, kept, b.locale))
	if _, err := b.api.Request(edit); err != nil {
		b.logger.Error("Failed to update consent keyboard",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) send(chatID int64, msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func consentKeyboard(form models.ConsentForm, kept map[string]bool, locale string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(form.Tables)+1)
	for _, t := range form.Tables {
		mark := "✅"
		if !kept[t.ID] {
			mark = "❌"
		}
		label := fmt.Sprintf("%s %s", mark, t.Title.Text(locale))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, callbackTogglePrefix+t.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Donate", callbackDonate),
		tgbotapi.NewInlineKeyboardButtonData("Decline", callbackDecline),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// tablePreview renders the title and the first rows of t as TSV.
func (b *Bot) tablePreview(t models.ExtractionResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d rows)\n", t.Title.Text(b.locale), t.Table.Len())
	if d := t.Description.Text(b.locale); d != "" {
		sb.WriteString(d)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	head := t.Table
	if len(head.Rows) > previewRows {
		head.Rows = head.Rows[:previewRows]
	}
	if err := format.WriteTableTSV(&sb, head); err != nil {
		b.logger.Warn("Failed to render table preview", zap.Error(err), zap.String("table", t.ID))
	}
	if more := t.Table.Len() - len(head.Rows); more > 0 {
		fmt.Fprintf(&sb, "... and %d more rows\n", more)
	}
	return truncate(sb.String(), maxMessageRunes)
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-3]) + "..."
}
