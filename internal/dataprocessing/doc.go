// Package dataprocessing turns a message trace export into normalized
// records, decoded compliance events and statistics.
//
// # Architecture
//
// The package is organized into four components:
//
// 1. Reader: decodes CSV (UTF-8 or UTF-16, comma/tab/semicolon) and xlsx
// exports into a Dataset of header-keyed rows
// 2. Resolver: maps every canonical field to the first catalog synonym
// present in the header, once per dataset
// 3. Normalizer: builds one NormalizedRecord per row from the mapping
// 4. Pipeline: runs normalization and annotation decoding over bounded
// workers, then the aggregators, preserving input order
//
// # Usage
//
//	ds, err := dataprocessing.ReadFile("trace.csv")
//	if err != nil {
//	    return err
//	}
//
//	p := dataprocessing.NewPipeline(logger, dataprocessing.PipelineConfig{Workers: 4}, metrics)
//	result, err := p.Run(ctx, ds)
//
// # Error Handling
//
// Only ingestion failures are errors. Missing columns, ragged rows, bad
// timestamps and undecodable annotation sections are absorbed per row and
// reported in Result.Diagnostics.
package dataprocessing
