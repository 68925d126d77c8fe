// Package progress renders conversion progress on the console.
//
// Console implements converter.ProgressSink. On a terminal it keeps one line
// per file and rewrites those lines in place, pulsing the trailing dots of
// running steps once per second. When the writer is not a terminal every
// state change is printed as its own line instead, which keeps redirected
// output readable.
//
// The package also owns the rounded go-pretty table used by the CLI for
// effect listings, marker listings and the end-of-batch summary.
package progress
