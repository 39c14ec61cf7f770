// mtrace analyzes message trace exports: it maps the export's columns onto
// canonical fields, decodes the compliance annotations carried in each row,
// and produces statistics plus a structured export.
//
// Usage:
//
//	# Analyze an export and write JSON to ./out
//	mtrace analyze --in trace.csv
//
//	# Write every format with a custom top-N and time zone
//	mtrace analyze --in trace.xlsx --format json,csv,xlsx --top 25 --tz Europe/Berlin
//
//	# Decode a single annotation blob
//	mtrace decode 'S:DPA=DPR|ruleId=abc|predicate=CCSI|timeSpent=3;'
//
//	# Serve the HTTP API
//	mtrace serve --port 8080
package main

import "os"

func main() {
	os.Exit(Execute(os.Args[1:]))
}
