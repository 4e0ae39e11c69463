// Package logging provides structured logging with secret redaction.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - JSON or text output to a log file, never to the dashboard's terminal
//   - Redaction of every attribute through the redact package
//   - Context-aware fields (request_id, service, scope)
//   - A level that can be changed while running
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    File:   "talos-tui.log",
//	})
//	defer logger.Close()
//
//	logger.Info("http attempt",
//	    "method", "GET",
//	    "authorization", "Bearer abc", // written as ***REDACTED***
//	)
//
//	ctx = logging.WithRequestID(ctx, "8f14e45f")
//	logger.InfoContext(ctx, "polling") // includes request_id
//
// # Redaction
//
// Attribute keys on the redact denylist are replaced whatever their value.
// String values are scanned for PEM blocks and JWTs and truncated when
// oversized. Map and slice values are sanitized recursively. Error values
// are rendered to strings before scanning.
package logging
