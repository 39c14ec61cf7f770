package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	apperrors "mtracecli/internal/errors"
)

// FileValidator checks input exports and output directories before a run
// touches them, so failures surface with the offending path attached.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputFile checks that path is a readable regular file with one of
// the given extensions. Office lock files (~$name.xlsx) are rejected.
// Failures are ingestion errors: the batch cannot be read at all.
func (v *FileValidator) ValidateInputFile(path string, extensions ...string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("Input file does not exist",
			slog.String("file", path))
		return apperrors.NewIngestionError("input file does not exist", err).WithContext("source", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat input file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewIngestionError("stat input file", err).WithContext("source", path)
	}
	if info.IsDir() {
		v.logger.Error("Input path is a directory, not a file",
			slog.String("path", path))
		return apperrors.NewIngestionError(fmt.Sprintf("%s is a directory, not a file", path), nil).
			WithContext("source", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if len(extensions) > 0 && !slices.Contains(extensions, ext) {
		v.logger.Error("Unsupported input extension",
			slog.String("file", path),
			slog.String("extension", ext))
		return apperrors.NewIngestionError(
			fmt.Sprintf("unsupported input extension %q (want one of %s)", ext, strings.Join(extensions, ", ")), nil).
			WithContext("source", path)
	}

	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Refusing Office lock file",
			slog.String("file", path))
		return apperrors.NewIngestionError(fmt.Sprintf("%s is an Office lock file", path), nil).
			WithContext("source", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("Input file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewIngestionError("input file is not readable", err).WithContext("source", path)
	}
	file.Close()

	v.logger.Debug("Input file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures the output directory exists or can be
// created, and that it is writable.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("create output directory %s", dir), err)
	}

	probe, err := os.CreateTemp(dir, ".write_test-*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
