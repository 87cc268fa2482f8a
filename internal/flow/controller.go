// Package flow sequences the donation steps: file prompt, extraction, retry
// confirmation, consent and donation. A Controller never blocks; it is fed
// the boundary's response to its previous command and returns the next one.
package flow

import (
	"errors"
	"fmt"

	"github.com/xaenox/datadonation/internal/export"
	"github.com/xaenox/datadonation/internal/models"
	"github.com/xaenox/datadonation/internal/temporal"
	"go.uber.org/zap"
)

type State int

const (
	AwaitingFile State = iota
	Extracting
	RetryPrompt
	ConsentPrompt
	Donating
	Done
	Abandoned
)

func (s State) String() string {
	switch s {
	case AwaitingFile:
		return "awaiting_file"
	case Extracting:
		return "extracting"
	case RetryPrompt:
		return "retry_prompt"
	case ConsentPrompt:
		return "consent_prompt"
	case Donating:
		return "donating"
	case Done:
		return "done"
	case Abandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further command will be issued.
func (s State) Terminal() bool {
	return s == Done || s == Abandoned
}

const (
	progressFile    = 0
	progressConsent = 50
	progressDonated = 100
)

// ExtractFunc is satisfied by (*extractor.Pipeline).Extract.
type ExtractFunc func(path string) ([]models.ExtractionResult, error)

// Stepper is implemented by Controller and Script.
type Stepper interface {
	Start() models.Command
	Step(resp models.Response) models.Command
}

type Config struct {
	Platform  string
	MimeTypes string
}

// Controller holds the working state of one donation flow.
type Controller struct {
	platform  string
	mimeTypes string
	sessionID string
	extract   ExtractFunc
	logger    *zap.Logger

	state    State
	progress int
	log      []models.LogEntry
	// finalRetry is set when the pending retry prompt ends the flow whatever
	// the answer.
	finalRetry bool
}

func NewController(cfg Config, sessionID string, extract ExtractFunc, logger *zap.Logger) *Controller {
	return &Controller{
		platform:  cfg.Platform,
		mimeTypes: cfg.MimeTypes,
		sessionID: sessionID,
		extract:   extract,
		logger:    logger.With(zap.String("session_id", sessionID), zap.String("platform", cfg.Platform)),
		state:     AwaitingFile,
	}
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Progress() int {
	return c.progress
}

// Log returns a copy of the user-visible session log.
func (c *Controller) Log() []models.LogEntry {
	out := make([]models.LogEntry, len(c.log))
	copy(out, c.log)
	return out
}

// DonationKey is the key of the consent donation.
func (c *Controller) DonationKey() string {
	return fmt.Sprintf("%s-%s", c.sessionID, c.platform)
}

// Start issues the file prompt.
func (c *Controller) Start() models.Command {
	return c.promptFile()
}

// Step consumes resp, the answer to the previous command, and returns the
// next command. It returns nil once the flow is over.
func (c *Controller) Step(resp models.Response) models.Command {
	from := c.state
	cmd := c.transition(resp)
	c.logger.Debug("flow step",
		zap.Stringer("from", from),
		zap.Stringer("to", c.state),
		zap.String("response", string(resp.Type)))
	return cmd
}

func (c *Controller) transition(resp models.Response) models.Command {
	switch c.state {
	case AwaitingFile:
		if resp.Type != models.PayloadFile {
			c.logger.Info("file selection skipped")
			c.state = Abandoned
			return nil
		}
		return c.extractFile(resp.Value)

	case RetryPrompt:
		if c.finalRetry {
			c.logger.Info("flow ended after unreadable file")
			c.state = Abandoned
			return nil
		}
		if resp.Type == models.PayloadTrue {
			return c.promptFile()
		}
		c.logger.Info("retry declined")
		c.state = Abandoned
		return nil

	case ConsentPrompt:
		if resp.Type != models.PayloadJSON {
			c.logger.Info("consent declined")
			c.state = Abandoned
			return nil
		}
		c.record("donate consent data")
		c.state = Donating
		c.progress = progressDonated
		return models.DonateCommand{Key: c.DonationKey(), Payload: resp.Value}

	case Donating:
		c.logger.Info("donation handed off")
		c.state = Done
		return nil
	}

	return nil
}

func (c *Controller) extractFile(path string) models.Command {
	c.state = Extracting
	c.record("extracting file")

	results, err := c.extract(path)

	var formatErr *temporal.FormatError
	switch {
	case errors.Is(err, export.ErrInvalidFile):
		c.logger.Warn("invalid file", zap.Error(err))
		c.record("invalid file detected")
		return c.promptRetry(false)

	case errors.As(err, &formatErr):
		c.logger.Warn("malformed export data", zap.Error(err))
		c.record("malformed data detected")
		return c.promptRetry(false)

	case err != nil:
		c.logger.Error("extraction failed", zap.Error(err))
		c.record("file could not be read")
		return c.promptRetry(true)

	case len(results) == 0:
		c.logger.Warn("nothing extracted")
		c.record("no data extracted")
		return c.promptRetry(false)
	}

	c.logger.Info("extraction successful", zap.Int("tables", len(results)))
	c.record("extraction successful, go to consent form")
	return c.promptConsent(results)
}

func (c *Controller) promptFile() models.Command {
	c.state = AwaitingFile
	c.progress = progressFile
	c.record("prompt file")
	return c.render(filePrompt(c.platform, c.mimeTypes))
}

func (c *Controller) promptRetry(final bool) models.Command {
	c.state = RetryPrompt
	c.finalRetry = final
	c.record("prompt confirmation to retry file selection")
	return c.render(retryConfirmation(c.platform))
}

func (c *Controller) promptConsent(results []models.ExtractionResult) models.Command {
	c.state = ConsentPrompt
	c.progress = progressConsent
	c.record("prompt consent")
	return c.render(consentForm(results, c.Log()))
}

func (c *Controller) record(message string) {
	c.log = append(c.log, models.LogEntry{Type: "debug", Message: fmt.Sprintf("%s: %s", c.platform, message)})
}

func (c *Controller) render(body models.Body) models.Command {
	return models.RenderCommand{Page: models.Page{
		Platform: c.platform,
		Header:   models.Translatable{"en": c.platform, "nl": c.platform},
		Body:     body,
		Progress: c.progress,
	}}
}
