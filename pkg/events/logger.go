package events

import (
	"runtime"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

type LoggerOption func(*watermillLogger)

// WithCaller adds the watermill source location that emitted each record
// under the "source" key.
func WithCaller(enabled bool) LoggerOption {
	return func(w *watermillLogger) {
		w.caller = enabled
	}
}

// WithInfoLevel sets the level watermill info records are written at. It
// defaults to debug, since watermill logs every publish and subscribe at info.
func WithInfoLevel(level zerolog.Level) LoggerOption {
	return func(w *watermillLogger) {
		w.infoLevel = level
	}
}

type watermillLogger struct {
	logger    zerolog.Logger
	caller    bool
	infoLevel zerolog.Level
}

// NewWatermillLogger routes the router's watermill logs to logger.
func NewWatermillLogger(logger zerolog.Logger, options ...LoggerOption) watermill.LoggerAdapter {
	ret := &watermillLogger{
		logger:    logger.With().Str("component", "watermill").Logger(),
		infoLevel: zerolog.DebugLevel,
	}
	for _, o := range options {
		o(ret)
	}
	return ret
}

func (w *watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	w.write(zerolog.ErrorLevel, msg, err, fields)
}

func (w *watermillLogger) Info(msg string, fields watermill.LogFields) {
	w.write(w.infoLevel, msg, nil, fields)
}

func (w *watermillLogger) Debug(msg string, fields watermill.LogFields) {
	w.write(zerolog.DebugLevel, msg, nil, fields)
}

func (w *watermillLogger) Trace(msg string, fields watermill.LogFields) {
	w.write(zerolog.TraceLevel, msg, nil, fields)
}

func (w *watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillLogger{
		logger:    w.logger.With().Fields(map[string]interface{}(fields)).Logger(),
		caller:    w.caller,
		infoLevel: w.infoLevel,
	}
}

// write must be called directly from the LoggerAdapter methods, the source
// lookup depends on it.
func (w *watermillLogger) write(level zerolog.Level, msg string, err error, fields watermill.LogFields) {
	e := w.logger.WithLevel(level)
	if e == nil {
		return
	}
	if w.caller {
		if pc, file, line, ok := runtime.Caller(2); ok {
			e = e.Str("source", zerolog.CallerMarshalFunc(pc, file, line))
		}
	}
	if len(fields) > 0 {
		e = e.Fields(map[string]interface{}(fields))
	}
	if err != nil {
		e = e.Err(err)
	}
	e.Msg(msg)
}

var _ watermill.LoggerAdapter = &watermillLogger{}
