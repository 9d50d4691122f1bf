package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger writes JSON lines to w (stdout when nil), through a console writer when pretty is set.
func NewZerologLogger(level string, w io.Writer, pretty bool) Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if w == nil {
		w = os.Stdout
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	log := zerolog.New(w).Level(lvl).With().
		Timestamp().
		Str("component", "tonpay").
		Logger()

	return &ZerologLogger{log: log}
}

func (z *ZerologLogger) Debug(msg string, fields map[string]any) {
	z.log.Debug().Fields(fields).Msg(msg)
}

func (z *ZerologLogger) Info(msg string, fields map[string]any) {
	z.log.Info().Fields(fields).Msg(msg)
}

func (z *ZerologLogger) Warn(msg string, fields map[string]any) {
	z.log.Warn().Fields(fields).Msg(msg)
}

func (z *ZerologLogger) Error(msg string, fields map[string]any) {
	z.log.Error().Fields(fields).Msg(msg)
}
