// Package log provides a simple, leveled logging interface for hive-go.
//
// The engine, the debug session and the tools all log through the Logger
// interface so applications can decide where diagnostics go without the
// framework taking that decision for them.
//
// # Log Levels
//
// Five levels, in order of increasing severity:
//
//   - LogLevelDebug: Detailed debugging information for development
//   - LogLevelInfo: General informational messages about normal operation
//   - LogLevelWarn: Warning messages for potentially problematic situations
//   - LogLevelError: Error messages for failures that need attention
//   - LogLevelNone: Disables all logging output
//
// # Example Usage
//
//	logger := log.NewDefaultLogger(log.LogLevelInfo)
//
//	logger.Info("executor starting")
//	logger.Debug("node inputs: %v", inputs)
//	logger.Warn("breakpoint set on unknown node %q", id)
//	logger.Error("node failed: %v", err)
//
// # golog Integration
//
// For users who prefer the `github.com/kataras/golog` library, a minimal
// wrapper is provided:
//
//	glogger := golog.New()
//	glogger.SetPrefix("[hive] ")
//
//	logger := log.NewGologLogger(glogger)
//	logger.SetLevel(log.LogLevelDebug)
//
// # Package-Level Logger
//
// A package-level default logger is available for code that does not want
// to thread a Logger through every constructor:
//
//	log.SetLogLevel(log.LogLevelDebug)
//	log.Debug("attached debug hook to executor")
//
// # Thread Safety
//
// DefaultLogger is safe for concurrent use; the underlying standard library
// log.Logger handles synchronization internally.
package log
