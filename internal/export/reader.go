package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

var (
	// ErrInvalidFile means the file is JSON but not a recognized export.
	ErrInvalidFile = errors.New("file does not match expected export format")
	// ErrUnreadable means the file is neither a JSON document nor a zip archive.
	ErrUnreadable = errors.New("file is not readable as a JSON document or zip archive")
)

// Reader loads exports from disk. TikTok hands out either a bare JSON file or
// a zip archive wrapping it.
type Reader struct {
	logger *zap.Logger
}

func NewReader(logger *zap.Logger) *Reader {
	return &Reader{logger: logger}
}

// Load reads the file at path. It returns (nil, nil) when the file is a zip
// archive without any valid export in it.
func (r *Reader) Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return r.Parse(data)
}

// Parse tries data as a JSON export first and as a zip archive second.
func (r *Reader) Parse(data []byte) (*Document, error) {
	if isJSON(data) {
		doc, err := decode(data)
		if err != nil {
			return nil, err
		}
		if err := doc.Validate(); err != nil {
			return nil, err
		}
		return doc, nil
	}

	r.logger.Debug("file is not JSON, scanning as zip archive", zap.Int("size", len(data)))
	return r.fromZip(data)
}

func (r *Reader) fromZip(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, ".json") {
			continue
		}

		doc, err := readEntry(f)
		if err != nil {
			r.logger.Debug("skipping zip entry", zap.String("entry", f.Name), zap.Error(err))
			continue
		}

		r.logger.Debug("export found in zip archive", zap.String("entry", f.Name))
		return doc, nil
	}

	r.logger.Info("no valid export in zip archive", zap.Int("entries", len(zr.File)))
	return nil, nil
}

func readEntry(f *zip.File) (*Document, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	if !isJSON(data) {
		return nil, errors.New("entry is not a JSON document")
	}

	doc, err := decode(data)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func isJSON(data []byte) bool {
	return utf8.Valid(data) && json.Valid(data)
}

func decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return &doc, nil
}
