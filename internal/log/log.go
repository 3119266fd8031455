// Package log is a thin key/value wrapper around logrus.
//
// Calls take a message followed by alternating keys and values:
//
//	log.Debug("executing request", "method", "GET", "url", url)
package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Level mirrors the logrus levels exposed by this package.
type Level = logrus.Level

const (
	LevelError = logrus.ErrorLevel
	LevelWarn  = logrus.WarnLevel
	LevelInfo  = logrus.InfoLevel
	LevelDebug = logrus.DebugLevel
	LevelTrace = logrus.TraceLevel
)

var defaultLogger = New(os.Stderr)

// Logger writes structured entries through a logrus logger.
type Logger struct {
	l *logrus.Logger
}

// New creates a Logger writing text entries to w at warn level.
func New(w io.Writer) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: false,
		FullTimestamp:    true,
	})
	return &Logger{l: l}
}

// Default returns the process-wide logger.
func Default() *Logger {
	return defaultLogger
}

// ParseLevel converts a level name such as "debug" or "warn".
func ParseLevel(name string) (Level, error) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(name))
	if err != nil {
		return logrus.WarnLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return lvl, nil
}

// SetLevel sets the level of the default logger by name.
func SetLevel(name string) error {
	lvl, err := ParseLevel(name)
	if err != nil {
		return err
	}
	defaultLogger.SetLevel(lvl)
	return nil
}

// SetOutput redirects the default logger.
func SetOutput(w io.Writer) {
	defaultLogger.l.SetOutput(w)
}

func (lg *Logger) SetLevel(lvl Level) {
	lg.l.SetLevel(lvl)
}

// IsLevelEnabled reports whether entries at lvl would be written.
func (lg *Logger) IsLevelEnabled(lvl Level) bool {
	return lg.l.IsLevelEnabled(lvl)
}

func (lg *Logger) Trace(msg string, keyvals ...interface{}) {
	lg.log(logrus.TraceLevel, msg, keyvals)
}

func (lg *Logger) Debug(msg string, keyvals ...interface{}) {
	lg.log(logrus.DebugLevel, msg, keyvals)
}

func (lg *Logger) Info(msg string, keyvals ...interface{}) {
	lg.log(logrus.InfoLevel, msg, keyvals)
}

func (lg *Logger) Warn(msg string, keyvals ...interface{}) {
	lg.log(logrus.WarnLevel, msg, keyvals)
}

func (lg *Logger) Error(msg string, keyvals ...interface{}) {
	lg.log(logrus.ErrorLevel, msg, keyvals)
}

func (lg *Logger) log(lvl logrus.Level, msg string, keyvals []interface{}) {
	if !lg.l.IsLevelEnabled(lvl) {
		return
	}
	lg.l.WithFields(fields(keyvals)).Log(lvl, msg)
}

// fields pairs up keyvals. A trailing key without a value is kept under
// "!BADKEY" so that nothing passed by the caller is silently dropped.
func fields(keyvals []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(keyvals)/2)
	for i := 0; i < len(keyvals); i += 2 {
		if i+1 >= len(keyvals) {
			f["!BADKEY"] = keyvals[i]
			break
		}
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprint(keyvals[i])
		}
		f[key] = keyvals[i+1]
	}
	return f
}

func Trace(msg string, keyvals ...interface{}) { defaultLogger.Trace(msg, keyvals...) }
func Debug(msg string, keyvals ...interface{}) { defaultLogger.Debug(msg, keyvals...) }
func Info(msg string, keyvals ...interface{})  { defaultLogger.Info(msg, keyvals...) }
func Warn(msg string, keyvals ...interface{})  { defaultLogger.Warn(msg, keyvals...) }
func Error(msg string, keyvals ...interface{}) { defaultLogger.Error(msg, keyvals...) }
