// Package console renders donation pages on a terminal and reads the user's
// answers line by line.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xaenox/datadonation/internal/format"
	"github.com/xaenox/datadonation/internal/models"
)

type Renderer struct {
	in     *bufio.Scanner
	out    io.Writer
	locale string
}

func NewRenderer(in io.Reader, out io.Writer, locale string) *Renderer {
	return &Renderer{in: bufio.NewScanner(in), out: out, locale: locale}
}

// Render implements flow.Renderer. End of input answers any prompt with a
// void payload.
func (r *Renderer) Render(ctx context.Context, page models.Page) (models.Response, error) {
	fmt.Fprintf(r.out, "\n== %s (%d%%) ==\n", page.Header.Text(r.locale), page.Progress)

	switch body := page.Body.(type) {
	case models.FilePrompt:
		return r.renderFilePrompt(ctx, body)
	case models.ConfirmPrompt:
		return r.renderConfirm(ctx, body)
	case models.ConsentForm:
		return r.renderConsent(ctx, body)
	default:
		return models.Response{}, fmt.Errorf("unsupported page body %T", page.Body)
	}
}

func (r *Renderer) renderFilePrompt(ctx context.Context, body models.FilePrompt) (models.Response, error) {
	fmt.Fprintln(r.out, body.Description.Text(r.locale))
	fmt.Fprintf(r.out, "File (%s), empty to skip: ", body.Extensions)

	line, ok, err := r.readLine(ctx)
	if err != nil || !ok || line == "" {
		return models.VoidResponse(), err
	}
	return models.FileResponse(line), nil
}

func (r *Renderer) renderConfirm(ctx context.Context, body models.ConfirmPrompt) (models.Response, error) {
	fmt.Fprintln(r.out, body.Text.Text(r.locale))
	fmt.Fprintf(r.out, "[y] %s  [n] %s: ", body.Ok.Text(r.locale), body.Cancel.Text(r.locale))

	line, ok, err := r.readLine(ctx)
	if err != nil || !ok {
		return models.VoidResponse(), err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return models.ConfirmResponse(true), nil
	default:
		return models.ConfirmResponse(false), nil
	}
}

func (r *Renderer) renderConsent(ctx context.Context, body models.ConsentForm) (models.Response, error) {
	fmt.Fprintln(r.out, body.Description.Text(r.locale))

	kept := make([]models.ExtractionResult, len(body.Tables))
	copy(kept, body.Tables)

	for _, t := range kept {
		r.printTable(t)
	}
	for _, t := range body.MetaTables {
		r.printTable(t)
	}

	for {
		fmt.Fprintf(r.out, "\nDonating: %s\n", tableIDs(kept))
		fmt.Fprint(r.out, "Type table ids to remove, 'yes' to donate or 'no' to stop: ")

		line, ok, err := r.readLine(ctx)
		if err != nil || !ok {
			return models.VoidResponse(), err
		}

		switch strings.ToLower(line) {
		case "yes", "y":
			approved := append(append([]models.ExtractionResult{}, kept...), body.MetaTables...)
			payload, err := format.DonationPayload(approved)
			if err != nil {
				return models.Response{}, err
			}
			return models.JSONResponse(payload), nil
		case "no", "n", "":
			return models.VoidResponse(), nil
		}

		kept = removeTables(kept, strings.Fields(line))
	}
}

func (r *Renderer) printTable(t models.ExtractionResult) {
	fmt.Fprintf(r.out, "\n# %s: %s\n", t.ID, t.Title.Text(r.locale))
	if d := t.Description.Text(r.locale); d != "" {
		fmt.Fprintln(r.out, d)
	}
	format.WriteTableTSV(r.out, t.Table)
}

func (r *Renderer) readLine(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if !r.in.Scan() {
		return "", false, r.in.Err()
	}
	return strings.TrimSpace(r.in.Text()), true, nil
}

func tableIDs(tables []models.ExtractionResult) string {
	if len(tables) == 0 {
		return "(nothing)"
	}
	ids := make([]string, len(tables))
	for i, t := range tables {
		ids[i] = t.ID
	}
	return strings.Join(ids, ", ")
}

func removeTables(tables []models.ExtractionResult, ids []string) []models.ExtractionResult {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := tables[:0]
	for _, t := range tables {
		if !drop[t.ID] {
			kept = append(kept, t)
		}
	}
	return kept
}
