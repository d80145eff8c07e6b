// Package zero adapts a zerolog.Logger to the logger.Logger interface.
package zero

import (
	"fmt"

	"github.com/rs/zerolog"
)

type Handler struct {
	logger zerolog.Logger
}

func New(l zerolog.Logger) *Handler {
	return &Handler{logger: l}
}

func (h *Handler) Error(msg string, args ...any) {
	h.logger.Error().Fields(fields(args)).Msg(msg)
}

func (h *Handler) Warn(msg string, args ...any) {
	h.logger.Warn().Fields(fields(args)).Msg(msg)
}

func (h *Handler) Info(msg string, args ...any) {
	h.logger.Info().Fields(fields(args)).Msg(msg)
}

func (h *Handler) Debug(msg string, args ...any) {
	h.logger.Debug().Fields(fields(args)).Msg(msg)
}

// fields converts alternating key/value args into a zerolog fields map.
// A trailing key with no value is kept with a nil value rather than dropped.
func fields(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	m := make(map[string]any, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		if i+1 < len(args) {
			m[key] = args[i+1]
		} else {
			m[key] = nil
		}
	}
	return m
}
