// Package shared groups helpers used by more than one package.
//
// The testutil subpackage provides:
//
//   - BufferedSlogHandler and NewTestLogger for asserting on structured logs
//   - message trace fixtures (TraceHeader, TraceRows, annotation blobs) and
//     helpers that render them as CSV or write them to temp files
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    path := testutil.WriteTempFile(t, "trace.csv", []byte(testutil.SampleTraceCSV(t)))
//	    ...
//	    testutil.AssertNoErrors(t, logs)
//	}
package shared
