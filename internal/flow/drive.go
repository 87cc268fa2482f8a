package flow

import (
	"context"
	"fmt"

	"github.com/xaenox/datadonation/internal/models"
)

// Renderer shows a page and blocks until the user answers.
type Renderer interface {
	Render(ctx context.Context, page models.Page) (models.Response, error)
}

// Donor stores donated data.
type Donor interface {
	Donate(ctx context.Context, key, payload string) error
}

// Drive runs s to completion against a blocking renderer. Donation commands
// are answered with a void response.
func Drive(ctx context.Context, s Stepper, r Renderer, d Donor) error {
	cmd := s.Start()
	for cmd != nil {
		if err := ctx.Err(); err != nil {
			return err
		}

		var resp models.Response
		switch c := cmd.(type) {
		case models.RenderCommand:
			var err error
			resp, err = r.Render(ctx, c.Page)
			if err != nil {
				return fmt.Errorf("render page: %w", err)
			}
		case models.DonateCommand:
			if err := d.Donate(ctx, c.Key, c.Payload); err != nil {
				return fmt.Errorf("donate %s: %w", c.Key, err)
			}
			resp = models.VoidResponse()
		default:
			return fmt.Errorf("unknown command %T", cmd)
		}

		cmd = s.Step(resp)
	}
	return nil
}
