package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jonathan/interview-pilot/internal/types"
)

// MaxFileSize caps uploaded document size. Resumes and cover letters are
// small; anything larger is almost certainly the wrong file.
const MaxFileSize = 1 << 20 // 1 MiB

// FileItem is the ingestion result for one uploaded document. A per-file
// failure is recorded in Err and never aborts the batch.
type FileItem struct {
	ID   string
	Name string
	Text string
	Err  error
}

// ExtractText reads one plain-text document, enforcing the size cap and
// UTF-8 validity, and returns its cleaned text.
func ExtractText(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", path)
		}
		return "", fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > MaxFileSize {
		return "", fmt.Errorf("file too large: %s (%d bytes, max %d)", path, info.Size(), MaxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if !utf8.Valid(content) {
		return "", fmt.Errorf("file is not valid UTF-8 text: %s", path)
	}

	return CleanText(string(content)), nil
}

// ReadFiles extracts text from each uploaded document path. Failures are
// per-item; the returned slice always has one entry per input path.
func ReadFiles(paths []string) []FileItem {
	items := make([]FileItem, 0, len(paths))
	for _, path := range paths {
		item := FileItem{
			ID:   uuid.NewString(),
			Name: filepath.Base(path),
		}
		item.Text, item.Err = ExtractText(path)
		items = append(items, item)
	}
	return items
}

// Usable converts successfully ingested items into the shared UploadedFile
// type, dropping failed ones.
func Usable(items []FileItem) []types.UploadedFile {
	var files []types.UploadedFile
	for _, item := range items {
		if item.Err != nil || item.Text == "" {
			continue
		}
		files = append(files, types.UploadedFile{
			ID:   item.ID,
			Name: item.Name,
			Text: item.Text,
		})
	}
	return files
}
