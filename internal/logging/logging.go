// Package logging builds the zerolog loggers every binary shares.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
)

// LogFile is the file name OpenFile creates inside the logs directory.
const LogFile = "broadside.log"

// Options selects the outputs.
type Options struct {
	Level          string
	Console        io.Writer // coloured; nil means os.Stdout
	File           io.Writer // plain; may be nil
	GraylogAddress string    // empty disables Graylog
}

// Loggers is the set Setup returns.
type Loggers struct {
	Logger zerolog.Logger
	// TraceSample is for per-tick output: 5 entries per 10s, then 1 in 100.
	TraceSample zerolog.Logger
	Graylog     *gelf.Writer
}

// ParseLevel maps a config string to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "TRACE":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

// Setup sets the global level and builds the loggers.
func Setup(o Options) (Loggers, error) {
	level := ParseLevel(o.Level)
	zerolog.SetGlobalLevel(level)
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	console := o.Console
	if console == nil {
		console = os.Stdout
	}
	writers := []io.Writer{
		// console format with colors
		zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: time.RFC3339,
		},
	}
	if o.File != nil {
		// console format without colors to file
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        o.File,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		})
	}

	var out Loggers
	if o.GraylogAddress != "" {
		gw, err := gelf.NewWriter(o.GraylogAddress)
		if err != nil {
			return Loggers{}, fmt.Errorf("connecting to graylog at %s: %w", o.GraylogAddress, err)
		}
		out.Graylog = gw
		writers = append(writers, gw)
	}

	out.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger().Level(level)
	out.TraceSample = out.Logger.With().
		Bool("sampled", true).Logger().Sample(&zerolog.BurstSampler{
		Burst:       5,
		Period:      10 * time.Second,
		NextSampler: &zerolog.BasicSampler{N: 100},
	})

	out.Logger.Info().Str("loglevel", level.String()).Bool("graylog", out.Graylog != nil).Msg("Logging set up")
	return out, nil
}

// OpenFile creates dir if needed and opens the log file for appending.
func OpenFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating logs dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, LogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}
