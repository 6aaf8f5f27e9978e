// Package logging provides structured logging for budgetgrid.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the grid engine, the commit sink and the sink
// server.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Cell transitions, wire message bodies, ignored stale events
//   - Info: Commits, connections, dataset reloads
//   - Warn: Reverted commits, retries
//   - Error: Persistence failures, startup failures
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Dataset reloaded",
//	    zap.String("path", "budget.json"),
//	    zap.Int("rows", 1200),
//	)
//
// # Specialized Logging
//
// Grid events:
//
//	logging.LogTransition("r1/amount", "focused", "editing")
//	logging.LogCommit("r1/amount", 7, 42.5)
//	logging.LogRevert("r1/amount", 7, "database is locked")
//
// Sink server events:
//
//	logging.LogConnection(remoteAddr, "websocket_upgraded")
//	logging.LogWireMessage(remoteAddr, "received", payload)
//
// # Configuration
//
// Logging is silent unless a level is given, either explicitly or through
// BUDGETGRID_LOG_LEVEL. The interactive editor owns the terminal, so set
// BUDGETGRID_LOG_FILE to send its logs to a file:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically. Initialize and SetLogger are meant to
// be called once at startup.
package logging
