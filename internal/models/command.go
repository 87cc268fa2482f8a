package models

import "time"

// Command is an outgoing request of the donation flow: either a page to render
// or data to donate.
type Command interface {
	command()
}

type RenderCommand struct {
	Page Page
}

type DonateCommand struct {
	Key     string
	Payload string
}

func (RenderCommand) command() {}
func (DonateCommand) command() {}

// Donation is a stored donate command.
type Donation struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}
