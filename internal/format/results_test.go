package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/xaenox/datadonation/internal/models"
	"gopkg.in/yaml.v3"
)

func sampleResults() []models.ExtractionResult {
	summary := models.NewTable("Description", "Number")
	summary.Append("Followers", 3)
	summary.Append("Likes received", 42)

	sessions := models.NewTable("Start", "Duration (in minutes)")
	sessions.Append("2022-03-01 14:05", 7.5)

	return []models.ExtractionResult{
		{ID: "tiktok_summary", Title: models.Translatable{"en": "Summary information", "nl": "Samenvatting gegevens"}, Table: summary},
		{ID: "tiktok_session_info", Title: models.Translatable{"en": "Session information"}, Table: sessions},
	}
}

func TestWriteResultsTSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResults(&buf, sampleResults(), "tsv", "nl"); err != nil {
		t.Fatalf("WriteResults tsv returned error: %v", err)
	}

	expected := strings.Join([]string{
		"# tiktok_summary: Samenvatting gegevens (2 rows)",
		"Description	Number",
		"Followers	3",
		"Likes received	42",
		"",
		"# tiktok_session_info: Session information (1 rows)",
		"Start	Duration (in minutes)",
		"2022-03-01 14:05	7.5",
	}, "\n") + "\n"

	if got := buf.String(); got != expected {
		t.Fatalf("tsv output mismatch:\nexpected: %q\nactual:   %q", expected, got)
	}
}

func TestWriteResultsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResults(&buf, sampleResults(), "json", "en"); err != nil {
		t.Fatalf("WriteResults json returned error: %v", err)
	}

	var decoded []models.ExtractionResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(decoded) != 2 || decoded[0].ID != "tiktok_summary" {
		t.Fatalf("unexpected decoded results: %+v", decoded)
	}
}

func TestWriteResultsYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResults(&buf, sampleResults(), "yaml", "en"); err != nil {
		t.Fatalf("WriteResults yaml returned error: %v", err)
	}

	var decoded []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if len(decoded) != 2 || decoded[1]["id"] != "tiktok_session_info" {
		t.Fatalf("unexpected decoded results: %+v", decoded)
	}
}

func TestWriteResultsInvalidFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResults(&buf, sampleResults(), "xml", "en"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestDonationPayload(t *testing.T) {
	payload, err := DonationPayload(sampleResults()[:1])
	if err != nil {
		t.Fatalf("DonationPayload returned error: %v", err)
	}
	want := `[{"id":"tiktok_summary","data_frame":[{"Description":"Followers","Number":3},{"Description":"Likes received","Number":42}]}]`
	if payload != want {
		t.Fatalf("unexpected payload:\n got %s\nwant %s", payload, want)
	}
}
