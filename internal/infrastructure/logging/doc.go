// Package logging provides structured logging for the evaluation service.
//
// It wraps log/slog so every entry carries the service name and build
// version, and components tag their output with a component field.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr, discard
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	log := logger.Component("pipeline")
//	log.Info("run complete", "run_id", id, "events", n)
package logging
