package extractor

import (
	"fmt"

	"github.com/xaenox/datadonation/internal/export"
	"github.com/xaenox/datadonation/internal/models"
	"github.com/xaenox/datadonation/internal/temporal"
	"go.uber.org/zap"
)

// Loader is satisfied by *export.Reader.
type Loader interface {
	Load(path string) (*export.Document, error)
}

// Pipeline loads one export and runs the active extractors over it.
type Pipeline struct {
	loader     Loader
	extractors []Extractor
	window     temporal.Window
	logger     *zap.Logger
}

func NewPipeline(loader Loader, policy Policy, window temporal.Window, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		loader:     loader,
		extractors: policy.Active(),
		window:     window,
		logger:     logger,
	}
}

// Extract loads path and returns the non-empty tables in presentation order.
// It returns (nil, nil) when the file holds no export.
func (p *Pipeline) Extract(path string) ([]models.ExtractionResult, error) {
	doc, err := p.loader.Load(path)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		p.logger.Info("no export found in file")
		return nil, nil
	}
	return p.Run(doc)
}

// Run applies the active extractors to doc.
func (p *Pipeline) Run(doc *export.Document) ([]models.ExtractionResult, error) {
	results := make([]models.ExtractionResult, 0, len(p.extractors))
	for _, e := range p.extractors {
		res, err := e.Extract(doc, p.window)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", e.ID, err)
		}
		if res == nil {
			p.logger.Debug("source section missing, table skipped", zap.String("table", e.ID))
			continue
		}
		p.logger.Debug("table extracted", zap.String("table", e.ID), zap.Int("rows", res.Table.Len()))
		results = append(results, *res)
	}
	return results, nil
}
