// Package log provides logging utilities for wikigraph, built on top of
// the standard slog package.
//
// This package extends slog to provide:
//   - Automatic truncation of oversized attribute values (raw HTML, snapshots)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Truncation
//
// The crawler routinely logs page markup and extracted link sets while
// debugging. A single rendered wiki article can be hundreds of kilobytes,
// which makes raw debug logs unreadable and can fill disks on long crawls.
// The TrimHandler caps every string attribute at MaxAttrLen bytes and marks
// truncated values so it is obvious data was elided.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	logger.Debug("page fetched",
//	    "page", "Hollow_Knight",
//	    "html", html, // Truncated to MaxAttrLen bytes
//	)
//
//	slog.SetDefault(logger)
package log
