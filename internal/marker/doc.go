// Package marker records how far each file got through the conversion
// pipeline so an interrupted batch can resume without redoing finished work.
//
// A Marker holds the remote identifiers issued for one target file and the
// outcome of its last attempt. Exactly one durable record exists per target at
// any time. FileStore keeps it next to the target in one of three files whose
// extension encodes the outcome; SQLiteStore keeps it as a single row with an
// explicit outcome column.
package marker
