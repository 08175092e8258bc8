package logger

import (
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// ColoredLogger colours level tags when the output is a terminal.
type ColoredLogger struct {
	*StandardLogger
}

// NewColoredLogger returns a logger configured for colourful terminal output
// when possible. NO_COLOR disables colours regardless of the terminal.
func NewColoredLogger(options ...Option) *ColoredLogger {
	std := NewStandardLogger(options...)

	std.formatter = &ColoredFormatter{
		TimestampFormat: "15:04:05",
		EnableColors:    supportsColor(std.output) && os.Getenv("NO_COLOR") == "",
	}

	return &ColoredLogger{StandardLogger: std}
}

// With keeps the coloured formatter on derived loggers.
func (c *ColoredLogger) With(fields ...Field) Logger {
	return &ColoredLogger{StandardLogger: c.StandardLogger.derive(fields...)}
}

var levelColors = map[Level]*color.Color{
	LevelDebug: color.New(color.FgCyan),
	LevelInfo:  color.New(color.FgBlue),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed),
}

// ColoredFormatter renders log entries with coloured levels when enabled.
type ColoredFormatter struct {
	TimestampFormat string
	EnableColors    bool
}

// Format converts the Entry into a coloured textual representation.
func (f *ColoredFormatter) Format(entry *Entry) ([]byte, error) {
	level := entry.Level.String()
	if !f.EnableColors {
		return formatEntry(entry, entry.Time.Format(f.TimestampFormat), level, nil), nil
	}

	if c := levelColors[entry.Level]; c != nil {
		level = c.Sprint(level)
	}

	faint := color.New(color.Faint)
	fieldText := func(field Field) string {
		return faint.Sprint(defaultFieldFormatter(field))
	}

	return formatEntry(entry, entry.Time.Format(f.TimestampFormat), level, fieldText), nil
}

func supportsColor(w io.Writer) bool {
	if file, ok := w.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}
