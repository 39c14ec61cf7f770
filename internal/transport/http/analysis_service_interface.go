package http

import (
	"context"

	"mtracecli/internal/services"
)

// AnalysisServiceInterface defines the analysis operations the handlers need
type AnalysisServiceInterface interface {
	Analyze(ctx context.Context, req services.AnalysisRequest) (*services.Analysis, error)
	Decode(ctx context.Context, blob string) services.DecodeResult
}

// HealthServiceInterface defines the health operations the handlers need
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}
