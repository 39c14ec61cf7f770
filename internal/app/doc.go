// Package app provides application initialization and lifecycle management
// for mtrace serve. It wires configuration, telemetry, services, handlers and
// middleware together at startup.
//
// # Initialization Flow
//
//  1. Resolve and create the output and logs directories
//  2. Initialize OpenTelemetry and the analysis metrics
//  3. Initialize services with their dependencies
//  4. Set up the chi router, middleware and handlers
//  5. Configure the HTTP server from the server section of the config
//
// # Usage
//
//	a, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return a.Run(ctx)
//
// # Graceful Shutdown
//
// Run handles SIGINT and SIGTERM: in-flight requests are given
// ShutdownTimeout to complete and the telemetry providers are flushed.
//
// # Error Handling
//
// All initialization errors are returned to the caller. The app never calls
// os.Exit, leaving the exit code to the command.
package app
