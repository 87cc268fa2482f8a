package flow

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/xaenox/datadonation/internal/models"
)

const trackingPayload = `[{ "message": "user entered script" }]`

// NewSessionID returns a fresh donation session id.
func NewSessionID() string {
	return uuid.New().String()
}

// Script is a whole donation session: a tracking donation followed by the
// controller's flow.
type Script struct {
	sessionID string
	flow      *Controller
	tracked   bool
}

func NewScript(sessionID string, flow *Controller) *Script {
	return &Script{sessionID: sessionID, flow: flow}
}

func (s *Script) SessionID() string {
	return s.sessionID
}

func (s *Script) Flow() *Controller {
	return s.flow
}

// Start emits the tracking donation; it is sent whatever happens afterwards.
func (s *Script) Start() models.Command {
	return models.DonateCommand{Key: fmt.Sprintf("%s-tracking", s.sessionID), Payload: trackingPayload}
}

func (s *Script) Step(resp models.Response) models.Command {
	if !s.tracked {
		s.tracked = true
		return s.flow.Start()
	}
	return s.flow.Step(resp)
}

func (s *Script) Done() bool {
	return s.tracked && s.flow.State().Terminal()
}
