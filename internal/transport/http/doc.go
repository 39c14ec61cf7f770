// Package http implements the HTTP request handlers of mtrace serve. It is a
// thin layer between the chi router and the service layer: handlers parse
// and validate requests, call a service, and render the result.
//
// # Endpoints
//
//	POST /api/v1/analyses   CSV body, xlsx body or multipart "file" field;
//	                        responds with the export payload
//	POST /api/v1/decode     {"blob": "..."}; responds with decoded events
//	GET  /api/health        liveness summary (plus /ready and /live)
//	GET  /api/version       build information
//	GET  /metrics           Prometheus scrape endpoint
//
// Analyses accept the query overrides topN, tz, events, timelines and
// source.
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details and go through
// errors.ErrorHandler:
//
//	{
//	    "type": "/errors/analysis/ingestion-failed",
//	    "title": "Input Could Not Be Read",
//	    "status": 422,
//	    "detail": "[INGESTION] read header: input contains no header row",
//	    "instance": "/api/v1/analyses",
//	    "trace_id": "..."
//	}
//
// # Testing
//
// Handlers depend on AnalysisServiceInterface and HealthServiceInterface
// and are tested with httptest against testify mocks.
package http
