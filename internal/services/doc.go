// Package services implements the business logic layer of mtrace. It sits
// between the HTTP handlers or CLI commands and the analysis packages, so
// both front ends run batches the same way.
//
// # Available Services
//
//   - AnalysisService: ingests an upload or file, runs the pipeline and
//     assembles the export payload; decodes single grammar blobs
//   - HealthService: health, readiness, liveness and version reporting
//
// # Error Handling
//
// Ingestion failures come back as *errors.AppError of type INGESTION and
// reject the whole batch. Bad per-request overrides are VALIDATION errors.
// Every other anomaly in the data is absorbed by the pipeline and reported
// in the result diagnostics.
//
// # Testing
//
// Handlers depend on small interfaces satisfied by these services and are
// tested against testify mocks; the services themselves are tested end to
// end over the shared trace fixtures.
package services
