// Command deepart converts images with Deep Art effects.
//
// Running deepart with one or more files or directories discovers the images
// to convert, resolves the effect (from --effect or an interactive prompt),
// confirms overwrites and converts every file concurrently while drawing one
// progress line per file. Interrupted runs resume from their marker records
// when markers are enabled.
//
// Additional subcommands list the available effects, show the marker state of
// a set of files, check the environment and manage the configuration file.
package main
