package bot

import (
	"context"
	"strings"
	"sync"

	"github.com/xaenox/datadonation/internal/flow"
	"github.com/xaenox/datadonation/internal/format"
	"github.com/xaenox/datadonation/internal/models"
	"go.uber.org/zap"
)

type answerKind int

const (
	answerFile answerKind = iota
	answerCancel
	answerRetry
	answerConsent
)

// answer is the user's reaction to the page a chat is waiting on.
type answer struct {
	kind   answerKind
	path   string
	ok     bool
	toggle string
}

var cancelAnswer = answer{kind: answerCancel}

func fileAnswer(path string) answer {
	return answer{kind: answerFile, path: path}
}

const (
	callbackRetryYes     = "retry:yes"
	callbackRetryNo      = "retry:no"
	callbackDonate       = "consent:donate"
	callbackDecline      = "consent:decline"
	callbackTogglePrefix = "toggle:"
)

func parseCallback(data string) (answer, bool) {
	switch data {
	case callbackRetryYes:
		return answer{kind: answerRetry, ok: true}, true
	case callbackRetryNo:
		return answer{kind: answerRetry, ok: false}, true
	case callbackDonate:
		return answer{kind: answerConsent, ok: true}, true
	case callbackDecline:
		return answer{kind: answerConsent, ok: false}, true
	}
	if id, found := strings.CutPrefix(data, callbackTogglePrefix); found && id != "" {
		return answer{toggle: id}, true
	}
	return answer{}, false
}

// chatSession is the donation running in one chat. Its mutex serializes the
// updates of that chat.
type chatSession struct {
	mu     sync.Mutex
	script *flow.Script
	page   *models.Page
	kept   map[string]bool
}

func (s *chatSession) awaitingFile() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page == nil {
		return false
	}
	_, ok := s.page.Body.(models.FilePrompt)
	return ok
}

// response translates a to the payload expected by the pending page.
func (s *chatSession) response(a answer) (models.Response, bool, error) {
	if s.page == nil {
		return models.Response{}, false, nil
	}
	if a.kind == answerCancel {
		return models.VoidResponse(), true, nil
	}

	switch body := s.page.Body.(type) {
	case models.FilePrompt:
		if a.kind == answerFile {
			return models.FileResponse(a.path), true, nil
		}
	case models.ConfirmPrompt:
		if a.kind == answerRetry {
			return models.ConfirmResponse(a.ok), true, nil
		}
	case models.ConsentForm:
		if a.kind != answerConsent {
			break
		}
		if !a.ok {
			return models.VoidResponse(), true, nil
		}
		payload, err := format.DonationPayload(s.approved(body))
		if err != nil {
			return models.Response{}, false, err
		}
		return models.JSONResponse(payload), true, nil
	}
	return models.Response{}, false, nil
}

func (s *chatSession) approved(form models.ConsentForm) []models.ExtractionResult {
	var tables []models.ExtractionResult
	for _, t := range form.Tables {
		if s.kept[t.ID] {
			tables = append(tables, t)
		}
	}
	return append(tables, form.MetaTables...)
}

func (b *Bot) session(chatID int64) *chatSession {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessions[chatID]
}

func (b *Bot) dropSession(chatID int64, sess *chatSession) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sessions[chatID] == sess {
		delete(b.sessions, chatID)
	}
}

func (b *Bot) startSession(ctx context.Context, chatID int64) {
	sessionID := flow.NewSessionID()
	sess := &chatSession{script: b.newScript(sessionID)}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	b.mu.Lock()
	if _, exists := b.sessions[chatID]; exists {
		b.logger.Info("Replacing running donation", zap.Int64("chat_id", chatID))
	}
	b.sessions[chatID] = sess
	b.mu.Unlock()

	b.logger.Info("Donation session started", zap.Int64("chat_id", chatID), zap.String("session_id", sessionID))
	b.execute(ctx, chatID, sess, sess.script.Start())
}

// answer feeds a to the chat's pending page. It reports false when no page
// is waiting for this kind of answer.
func (b *Bot) answer(ctx context.Context, chatID int64, a answer) bool {
	sess := b.session(chatID)
	if sess == nil {
		return false
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	resp, ok, err := sess.response(a)
	if err != nil {
		b.logger.Error("Failed to build response", zap.Error(err), zap.Int64("chat_id", chatID))
		b.sendErrorMessage(chatID, "Sorry, something went wrong while preparing your donation.")
		return true
	}
	if !ok {
		return false
	}

	sess.page = nil
	b.execute(ctx, chatID, sess, sess.script.Step(resp))
	return true
}

// execute runs commands until the script waits on a page or finishes. The
// caller holds sess.mu.
func (b *Bot) execute(ctx context.Context, chatID int64, sess *chatSession, cmd models.Command) {
	for cmd != nil {
		switch c := cmd.(type) {
		case models.DonateCommand:
			if err := b.storage.Donate(ctx, c.Key, c.Payload); err != nil {
				b.logger.Error("Failed to store donation",
					zap.Error(err),
					zap.Int64("chat_id", chatID),
					zap.String("key", c.Key))
				b.sendErrorMessage(chatID, "Sorry, your donation could not be stored. Please try again later.")
				b.dropSession(chatID, sess)
				return
			}
			cmd = sess.script.Step(models.VoidResponse())

		case models.RenderCommand:
			page := c.Page
			sess.page = &page
			if form, ok := page.Body.(models.ConsentForm); ok {
				sess.kept = make(map[string]bool, len(form.Tables))
				for _, t := range form.Tables {
					sess.kept[t.ID] = true
				}
			}
			b.render(chatID, sess)
			return

		default:
			b.logger.Error("Unknown command", zap.Any("command", cmd))
			return
		}
	}

	b.finish(chatID, sess)
}

func (b *Bot) finish(chatID int64, sess *chatSession) {
	state := sess.script.Flow().State()
	b.logger.Info("Donation session ended",
		zap.Int64("chat_id", chatID),
		zap.String("session_id", sess.script.SessionID()),
		zap.Stringer("state", state))

	if state == flow.Done {
		b.sendMessage(chatID, "Thank you! Your donation was received.")
	} else {
		b.sendMessage(chatID, "The donation was stopped. Your data was not donated. Send /start to try again.")
	}
	b.dropSession(chatID, sess)
}

func (b *Bot) toggleTable(chatID int64, messageID int, tableID string) {
	sess := b.session(chatID)
	if sess == nil {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.page == nil {
		return
	}
	form, ok := sess.page.Body.(models.ConsentForm)
	if !ok {
		return
	}
	if _, known := sess.kept[tableID]; !known {
		return
	}
	sess.kept[tableID] = !sess.kept[tableID]

	b.updateConsentKeyboard(chatID, messageID, form, sess.kept)
}
