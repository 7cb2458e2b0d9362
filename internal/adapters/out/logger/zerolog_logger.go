package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/out"
)

type Options struct {
	Level    string
	Timezone string
	// Человекочитаемый вывод для локальной разработки
	Pretty bool
	Writer io.Writer
}

// ZerologLogger implements out.LoggerPort on top of zerolog. The event name
// becomes the log message, fields and module are attached as JSON keys.
type ZerologLogger struct {
	logger        zerolog.Logger
	defaultFields out.LogFields
	module        string
}

func NewZerologLogger(opts Options) *ZerologLogger {
	loc, err := time.LoadLocation(opts.Timezone)
	if err != nil || opts.Timezone == "" {
		loc = time.UTC
	}

	writer := opts.Writer
	if writer == nil {
		writer = os.Stdout
	}
	if opts.Pretty {
		writer = zerolog.ConsoleWriter{
			Out:        writer,
			TimeFormat: "2006-01-02 15:04:05.000",
		}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(writer).
		Level(level).
		Hook(timestampHook{location: loc})

	return &ZerologLogger{
		logger:        logger,
		defaultFields: make(out.LogFields),
	}
}

// NewNopLogger discards everything. Used by tests and one-shot commands.
func NewNopLogger() *ZerologLogger {
	return &ZerologLogger{
		logger:        zerolog.Nop(),
		defaultFields: make(out.LogFields),
	}
}

func (l *ZerologLogger) Zerolog() zerolog.Logger {
	return l.logger
}

func (l *ZerologLogger) WithFields(fields out.LogFields) out.LoggerPort {
	newLogger := &ZerologLogger{
		logger:        l.logger,
		defaultFields: make(out.LogFields, len(l.defaultFields)+len(fields)),
		module:        l.module,
	}

	for k, v := range l.defaultFields {
		newLogger.defaultFields[k] = v
	}
	for k, v := range fields {
		newLogger.defaultFields[k] = v
	}

	return newLogger
}

func (l *ZerologLogger) WithModule(module string) out.LoggerPort {
	return &ZerologLogger{
		logger:        l.logger,
		defaultFields: l.defaultFields,
		module:        module,
	}
}

func (l *ZerologLogger) Debug(event string, fields out.LogFields) {
	l.log(l.logger.Debug(), event, fields)
}

func (l *ZerologLogger) Info(event string, fields out.LogFields) {
	l.log(l.logger.Info(), event, fields)
}

func (l *ZerologLogger) Warn(event string, fields out.LogFields) {
	l.log(l.logger.Warn(), event, fields)
}

func (l *ZerologLogger) Error(event string, fields out.LogFields) {
	l.log(l.logger.Error(), event, fields)
}

// timestampHook пишет время в таймзоне из конфига
type timestampHook struct {
	location *time.Location
}

func (h timestampHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Time(zerolog.TimestampFieldName, time.Now().In(h.location))
}

func (l *ZerologLogger) log(evt *zerolog.Event, event string, fields out.LogFields) {
	// Уровень отключён
	if evt == nil {
		return
	}

	module := l.module
	if module == "" {
		module = "unknown"
	}

	evt.Str("module", module).
		Fields(map[string]interface{}(l.defaultFields)).
		Fields(map[string]interface{}(fields)).
		Msg(event)
}
