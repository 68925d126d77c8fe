// Package converter drives files through the remote conversion pipeline.
//
// Each file runs five strictly sequential steps: read alpha, upload, submit,
// wait for the result, and apply alpha. The file's marker is persisted before
// and after every step, so an interrupted run can be resumed. Steps whose
// outcome is already recorded in the restored marker are skipped.
//
// ConvertFiles runs a batch with bounded parallelism and an optional global
// deadline. After the first failure no new files are started; files already
// in flight run to completion and all failures are reported together.
package converter
