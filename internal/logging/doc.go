// Package logger provides leveled logging for lockpass commands.
//
// Verbosity is controlled by two flags:
//
//   - --verbose: shows info messages
//   - --debug: shows info and debug messages
//
// Warnings and errors are always shown, on stderr.
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Loaded %d records", n)
//
// The root command builds the logger in PersistentPreRunE and hands it
// to internal/core.
package logger
