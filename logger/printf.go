package logger

import (
	"fmt"
	"strings"
)

// PrintfLogger adapts a Logger to printf-style loggers such as resty's.
type PrintfLogger struct {
	log    Logger
	fields map[string]any
}

// NewPrintfLogger tags every message with source.
func NewPrintfLogger(l Logger, source string) *PrintfLogger {
	return &PrintfLogger{
		log:    OrNoop(l),
		fields: map[string]any{"source": source},
	}
}

func (p *PrintfLogger) Errorf(format string, v ...any) {
	p.log.Error(sprintf(format, v), p.fields)
}

func (p *PrintfLogger) Warnf(format string, v ...any) {
	p.log.Warn(sprintf(format, v), p.fields)
}

func (p *PrintfLogger) Debugf(format string, v ...any) {
	p.log.Debug(sprintf(format, v), p.fields)
}

func sprintf(format string, v []any) string {
	return strings.TrimSpace(fmt.Sprintf(format, v...))
}
