// Package analytics computes the aggregate views of a message trace: the
// statistics bundle over normalized records, the compliance summary over
// decoded events and per-message timelines.
//
// Every function here is a pure function of its input slice. Nothing is
// accumulated across calls; a new run recomputes everything.
package analytics
