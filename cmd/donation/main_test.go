package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xaenox/datadonation/internal/extractor"
	"github.com/xaenox/datadonation/pkg/config"
)

var fixture = filepath.Join("..", "..", "testdata", "tiktok_export.json")

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	configPath := filepath.Join(t.TempDir(), "missing.yaml")
	cmd.SetArgs(append(args, "--config", configPath))
	err := cmd.Execute()
	return out.String(), err
}

func TestExtractCommandJSON(t *testing.T) {
	out, err := execute(t, "", "extract", fixture, "--format", "json")
	if err != nil {
		t.Fatalf("extract command failed: %v", err)
	}

	var results []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(results) != 6 || results[0].ID != extractor.SummaryID {
		t.Fatalf("unexpected tables: %+v", results)
	}
}

func TestExtractCommandRejectsUnknownFormat(t *testing.T) {
	if _, err := execute(t, "", "extract", fixture, "--format", "xml"); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestRunCommandDonates(t *testing.T) {
	out, err := execute(t, "yes\n", "run", fixture)
	if err != nil {
		t.Fatalf("run command failed: %v", err)
	}
	if !strings.Contains(out, "Thank you for your donation.") {
		t.Fatalf("session did not finish with a donation:\n%s", out)
	}
}

func TestRunCommandDeclines(t *testing.T) {
	out, err := execute(t, "no\n", "run", fixture)
	if err != nil {
		t.Fatalf("run command failed: %v", err)
	}
	if !strings.Contains(out, "Your data was not donated.") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestExtractionPolicy(t *testing.T) {
	policy, err := extractionPolicy([]string{extractor.DirectMessagesID})
	if err != nil {
		t.Fatalf("extractionPolicy returned error: %v", err)
	}
	if !policy.Excludes(extractor.DirectMessagesID) || policy.Excludes(extractor.SummaryID) {
		t.Fatalf("unexpected policy: %+v", policy)
	}

	if !policy.Excludes(extractor.CommentActivityID) || !policy.Excludes(extractor.VideosLikedID) {
		t.Fatalf("data minimization lost: %+v", policy)
	}

	if _, err := extractionPolicy([]string{"tiktok_unknown"}); err == nil {
		t.Fatal("expected an error for an unknown table id")
	}
}

func TestExtractionPolicyKeepsDormantTablesOff(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("extraction:\n  disabled: []\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	policy, err := extractionPolicy(cfg.Extraction.Disabled)
	if err != nil {
		t.Fatalf("extractionPolicy returned error: %v", err)
	}
	active := policy.Active()
	if len(active) != 6 {
		t.Fatalf("expected 6 active extractors, got %d", len(active))
	}
	for _, e := range active {
		if e.ID == extractor.CommentActivityID || e.ID == extractor.VideosLikedID {
			t.Fatalf("dormant extractor %s enabled by config", e.ID)
		}
	}
}

func TestAnalysisWindow(t *testing.T) {
	w, err := analysisWindow(config.AnalysisConfig{Start: "2022-01-01", End: "2023-01-01"})
	if err != nil {
		t.Fatalf("analysisWindow returned error: %v", err)
	}
	if w.Start.Year() != 2022 || w.End.Year() != 2023 {
		t.Fatalf("unexpected window: %+v", w)
	}

	if _, err := analysisWindow(config.AnalysisConfig{Start: "2023-01-01", End: "2022-01-01"}); err == nil {
		t.Fatal("expected an error for an empty window")
	}
}
