package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths(t *testing.T) {
	base := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere")

	tests := []struct {
		name       string
		cfg        PathsConfig
		wantOutput string
		wantLogs   string
	}{
		{
			name:       "relative entries join the base",
			cfg:        PathsConfig{OutputDir: "out", LogsDir: "logs"},
			wantOutput: filepath.Join(base, "out"),
			wantLogs:   filepath.Join(base, "logs"),
		},
		{
			name:       "absolute entries are kept",
			cfg:        PathsConfig{OutputDir: abs, LogsDir: "logs"},
			wantOutput: abs,
			wantLogs:   filepath.Join(base, "logs"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ResolvePaths(tt.cfg, base)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOutput, p.OutputDir)
			assert.Equal(t, tt.wantLogs, p.LogsDir)
		})
	}
}

func TestResolvePaths_DefaultsToWorkingDirectory(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	p, err := ResolvePaths(PathsConfig{OutputDir: "out", LogsDir: "logs"}, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "out"), p.OutputDir)
}

func TestPaths_EnsureDirectories(t *testing.T) {
	p, err := ResolvePaths(PathsConfig{OutputDir: "a/b", LogsDir: "c"}, t.TempDir())
	require.NoError(t, err)
	require.NoError(t, p.EnsureDirectories())

	for _, dir := range []string{p.OutputDir, p.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestPaths_OutputFile(t *testing.T) {
	p := &Paths{OutputDir: "/out"}

	assert.Equal(t, filepath.Join("/out", "trace-0123abcd.json"),
		p.OutputFile("/data/trace.csv", "0123abcd-4567-89ef", "json"))
	assert.Equal(t, filepath.Join("/out", "analysis-run.xlsx"),
		p.OutputFile("", "run", ".xlsx"))
}
