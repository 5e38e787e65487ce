// Package logging provides structured logging for the on/off device service.
//
// It wraps log/slog so every component logs through the same handler with
// the same default attributes (service, version).
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	pool.SetLogger(logger.ForComponent("hardware"))
//	logger.Error("build failed", "instance_id", id, "error", err)
//
// Never log secrets, tokens or passwords. JWT secrets and MQTT credentials
// stay in configuration only.
package logging
