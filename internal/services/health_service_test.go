package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"mtracecli/internal/config"
	"mtracecli/internal/shared/testutil"
	"mtracecli/pkg/contracts"
)

func TestHealthService_HealthCheck(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService(nil, logger)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, contracts.Version, status.Version)
	assert.False(t, status.Timestamp.IsZero())
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	assert.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	tests := []struct {
		name  string
		paths *config.Paths
		want  string
	}{
		{name: "no paths", paths: nil, want: "ready"},
		{name: "existing dir", paths: &config.Paths{OutputDir: dir}, want: "ready"},
		{name: "missing dir", paths: &config.Paths{OutputDir: filepath.Join(dir, "missing")}, want: "not_ready"},
		{name: "not a dir", paths: &config.Paths{OutputDir: file}, want: "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHealthService(tt.paths, nil)
			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.want, status.Status)
			assert.Equal(t, tt.want, status.Services["output"].Status)
		})
	}
}

func TestHealthService_Liveness(t *testing.T) {
	hs := NewHealthService(nil, nil)
	status := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", status.Status)
	assert.Contains(t, status.Runtime, "goroutines")
}

func TestHealthService_Version(t *testing.T) {
	hs := NewHealthService(nil, nil)
	v := hs.Version()
	assert.Equal(t, contracts.Version, v["version"])
	assert.Equal(t, contracts.APIVersion, v["api_version"])
	assert.Contains(t, v, "uptime")
}
