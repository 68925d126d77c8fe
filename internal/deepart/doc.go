// Package deepart is a client for the Deep Art conversion REST API.
//
// The service accepts an uploaded media file, runs an effect over it as an
// asynchronous operation, and serves the converted bytes once the operation
// finishes. Identifiers for uploaded media and submitted operations are
// returned in the Location header of the creating request.
package deepart
