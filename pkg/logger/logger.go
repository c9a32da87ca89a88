package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var Log = zerolog.New(os.Stdout).With().Timestamp().Logger()

type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

func Init(level string, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	zerolog.TimeFieldFormat = time.RFC3339
	Log = zerolog.New(w).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Caller().
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type Attr struct {
	Key   string
	Value any
}

func Debug(msg string, attrs ...Attr) {
	emit(Log.Debug(), msg, attrs)
}

func Info(msg string, attrs ...Attr) {
	emit(Log.Info(), msg, attrs)
}

func Warn(msg string, attrs ...Attr) {
	emit(Log.Warn(), msg, attrs)
}

func Error(msg string, attrs ...Attr) {
	emit(Log.Error(), msg, attrs)
}

func emit(e *zerolog.Event, msg string, attrs []Attr) {
	for _, a := range attrs {
		switch v := a.Value.(type) {
		case string:
			e = e.Str(a.Key, v)
		case int:
			e = e.Int(a.Key, v)
		case int64:
			e = e.Int64(a.Key, v)
		case time.Duration:
			e = e.Dur(a.Key, v)
		case error:
			e = e.AnErr(a.Key, v)
		default:
			e = e.Interface(a.Key, v)
		}
	}
	e.Msg(msg)
}

func Err(err error) Attr {
	return Attr{Key: "error", Value: err}
}

func String(key, value string) Attr {
	return Attr{Key: key, Value: value}
}

func Int(key string, value int) Attr {
	return Attr{Key: key, Value: value}
}

func Int64(key string, value int64) Attr {
	return Attr{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Attr {
	return Attr{Key: key, Value: value}
}

func Any(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}
