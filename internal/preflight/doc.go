// Package preflight checks that a conversion run can succeed before any file
// is touched: the state and output directories must be writable and the
// remote effect service must answer.
//
// The convert command runs the filesystem checks (RunAll with a nil service)
// and aborts on the first failed one. The "deepart check" command runs every
// check, including the service round-trip, and prints the results.
package preflight
