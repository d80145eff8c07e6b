// Package logger defines the minimal leveled logging surface the client
// emits to. Adapters exist for log/slog (this package) and rs/zerolog
// (the zero subpackage); anything that satisfies Logger can be plugged in
// through the client Config.
package logger

import "log/slog"

// Logger accepts a message plus alternating key/value pairs, slog style.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

// Nop returns a Logger that discards everything. It is the default when a
// Config carries no logger.
func Nop() Logger {
	return nop{}
}

type nop struct{}

func (nop) Error(msg string, args ...any) {}
func (nop) Warn(msg string, args ...any)  {}
func (nop) Info(msg string, args ...any)  {}
func (nop) Debug(msg string, args ...any) {}

// SlogHandler adapts a log/slog handler to the Logger interface.
type SlogHandler struct {
	logger *slog.Logger
}

// NewSlog wraps the given slog handler.
func NewSlog(h slog.Handler) *SlogHandler {
	return &SlogHandler{logger: slog.New(h)}
}

func (handler *SlogHandler) Error(msg string, args ...any) {
	handler.logger.Error(msg, args...)
}

func (handler *SlogHandler) Warn(msg string, args ...any) {
	handler.logger.Warn(msg, args...)
}

func (handler *SlogHandler) Info(msg string, args ...any) {
	handler.logger.Info(msg, args...)
}

func (handler *SlogHandler) Debug(msg string, args ...any) {
	handler.logger.Debug(msg, args...)
}
