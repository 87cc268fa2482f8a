package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xaenox/datadonation/internal/models"
	"gopkg.in/yaml.v3"
)

// WriteResults writes extraction results to w in the requested format.
// Titles of the tsv format are taken from locale.
func WriteResults(w io.Writer, results []models.ExtractionResult, format, locale string) error {
	switch format {
	case "tsv":
		return writeResultsTSV(w, results, locale)
	case "json":
		return writeResultsJSON(w, results)
	case "yaml":
		return writeResultsYAML(w, results)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeResultsTSV(w io.Writer, results []models.ExtractionResult, locale string) error {
	for i, res := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "# %s: %s (%d rows)\n", res.ID, res.Title.Text(locale), res.Table.Len()); err != nil {
			return err
		}
		if err := WriteTableTSV(w, res.Table); err != nil {
			return err
		}
	}
	return nil
}

// WriteTableTSV writes the header line followed by one line per row.
func WriteTableTSV(w io.Writer, table models.Table) error {
	if _, err := fmt.Fprintln(w, strings.Join(table.Columns, "\t")); err != nil {
		return err
	}
	for _, row := range table.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = escapeCell(fmt.Sprint(cell))
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return nil
}

func writeResultsJSON(w io.Writer, results []models.ExtractionResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func writeResultsYAML(w io.Writer, results []models.ExtractionResult) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(results); err != nil {
		return err
	}
	return enc.Close()
}

func escapeCell(text string) string {
	text = strings.ReplaceAll(text, "\t", " ")
	return strings.ReplaceAll(text, "\n", "\\n")
}
