// Package exporter turns analysis results into output artifacts.
//
// Assemble converts a dataprocessing.Result into the domain.ExportPayload
// handed to the presentation layer. The payload can then be written as:
//
//   - JSON (WriteJSON), the complete payload
//   - CSV (CSVWriter.WriteRecordsCSV, CSVWriter.WriteEventsCSV), UTF-8 with a
//     BOM so Excel opens it correctly
//   - xlsx (WriteWorkbook) with Records, Events, Statistics and Hourly sheets
//
// Example usage:
//
//	payload := exporter.Assemble(result, exporter.AssembleOptions{Format: "json", IncludeEvents: true})
//	err := exporter.WriteJSON("out/trace.json", payload)
//
//	writer := exporter.NewCSVWriter(paths)
//	err = writer.WriteRecordsCSV("trace-records.csv", payload)
package exporter
