package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains the resolved file system locations of one process.
type Paths struct {
	BaseDir   string
	OutputDir string
	LogsDir   string
}

// ResolvePaths makes the configured directories absolute. Relative entries
// are taken relative to base; an empty base means the working directory.
func ResolvePaths(cfg PathsConfig, base string) (*Paths, error) {
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	return &Paths{
		BaseDir:   base,
		OutputDir: resolveAgainst(base, cfg.OutputDir),
		LogsDir:   resolveAgainst(base, cfg.LogsDir),
	}, nil
}

func resolveAgainst(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// EnsureDirectories creates the output and logs directories.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.OutputDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// OutputFile names an export artifact: <output>/<stem>-<runID>.<ext>.
func (p *Paths) OutputFile(source, runID, ext string) string {
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		stem = "analysis"
	}
	short := runID
	if len(short) > 8 {
		short = short[:8]
	}
	return filepath.Join(p.OutputDir, fmt.Sprintf("%s-%s.%s", stem, short, strings.TrimPrefix(ext, ".")))
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("paths resolved",
		slog.String("base_dir", p.BaseDir),
		slog.String("output_dir", p.OutputDir),
		slog.String("logs_dir", p.LogsDir))
}
