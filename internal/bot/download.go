package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// maxDownloadSize matches the Bot API limit for files fetched by bots.
const maxDownloadSize = 20 << 20

// download stores the document in a temporary file and returns its path.
func (b *Bot) download(ctx context.Context, doc *tgbotapi.Document) (string, error) {
	if doc.FileSize > maxDownloadSize {
		return "", fmt.Errorf("file %q is too large: %d bytes", doc.FileName, doc.FileSize)
	}

	url, err := b.api.GetFileDirectURL(doc.FileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch file: status %s", resp.Status)
	}

	f, err := os.CreateTemp(b.downloadDir, "export-*"+filepath.Ext(doc.FileName))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(f, io.LimitReader(resp.Body, maxDownloadSize+1)); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return f.Name(), nil
}

func (b *Bot) removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		b.logger.Warn("Failed to remove downloaded file", zap.Error(err), zap.String("path", path))
	}
}
