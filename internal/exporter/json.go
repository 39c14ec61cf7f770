package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"mtracecli/pkg/contracts/domain"
)

// EncodeJSON writes v as indented JSON.
func EncodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteJSON writes the payload to filePath, creating parent directories.
func WriteJSON(filePath string, payload domain.ExportPayload) error {
	slog.Info("Writing JSON export",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(payload.Records)),
		slog.Int("event_count", len(payload.Events)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := EncodeJSON(file, payload); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	return file.Close()
}
