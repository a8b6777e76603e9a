package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// Level is the severity attached to a log message
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// Logger is the logging collaborator consumed by the loader, runner and reporter.
// Log is fire-and-forget.
type Logger interface {
	Log(message string, level Level)
}

// Console writes leveled messages through zerolog
type Console struct {
	zl    zerolog.Logger
	quiet bool
}

type options struct {
	writer  io.Writer
	noColor bool
	json    bool
	quiet   bool
}

type Option func(*options)

// WithWriter sets the destination, defaulting to stderr
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

// WithNoColor disables colored level labels
func WithNoColor(nc bool) Option {
	return func(o *options) {
		o.noColor = nc
	}
}

// WithJSON switches to one JSON object per line
func WithJSON(j bool) Option {
	return func(o *options) {
		o.json = j
	}
}

// WithQuiet drops info and success messages
func WithQuiet(q bool) Option {
	return func(o *options) {
		o.quiet = q
	}
}

func New(opts ...Option) *Console {
	o := &options{writer: os.Stderr}
	for _, opt := range opts {
		opt(o)
	}

	var w io.Writer = o.writer
	if !o.json {
		w = zerolog.ConsoleWriter{
			Out:         o.writer,
			NoColor:     o.noColor,
			TimeFormat:  "15:04:05",
			FormatLevel: formatLevel(o.noColor),
		}
	}

	return &Console{
		zl:    zerolog.New(w).With().Timestamp().Logger(),
		quiet: o.quiet,
	}
}

func (c *Console) Log(message string, level Level) {
	if c.quiet && (level == LevelInfo || level == LevelSuccess) {
		return
	}

	switch level {
	case LevelWarn:
		c.zl.Warn().Msg(message)
	case LevelError:
		c.zl.Error().Msg(message)
	case LevelSuccess:
		// zerolog has no success level; a level-less event carries it as a plain field
		c.zl.Log().Str(zerolog.LevelFieldName, string(LevelSuccess)).Msg(message)
	default:
		c.zl.Info().Msg(message)
	}
}

func formatLevel(noColor bool) zerolog.Formatter {
	return func(i any) string {
		s, _ := i.(string)
		label := strings.ToUpper(fmt.Sprintf("%-7s", s))

		var c *color.Color
		switch Level(s) {
		case LevelInfo:
			c = color.New(color.FgCyan)
		case LevelWarn:
			c = color.New(color.FgYellow)
		case LevelError:
			c = color.New(color.FgRed, color.Bold)
		case LevelSuccess:
			c = color.New(color.FgGreen)
		}
		if c == nil || noColor {
			return label
		}
		return c.Sprint(label)
	}
}

// Nop discards everything
type Nop struct{}

func (Nop) Log(string, Level) {}
