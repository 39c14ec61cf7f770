// Package config provides configuration management for mtrace.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. A YAML configuration file
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern MTRACE_<SECTION>_<FIELD>:
//
//	MTRACE_SERVER_PORT=8080
//	MTRACE_LOGGING_LEVEL=debug
//	MTRACE_ANALYSIS_TIMEZONE=Europe/Berlin
//	MTRACE_ANALYSIS_WORKERS=8
//	MTRACE_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Validation
//
// The merged configuration is validated with go-playground/validator struct
// tags; an invalid value fails Load with every offending field listed.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	paths, err := config.ResolvePaths(cfg.Paths, "")
package config
