package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level controls which messages a Logger emits.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARNING
	ERROR
)

var levelNames = map[Level]string{
	DEBUG:   "DEBUG",
	INFO:    "INFO",
	WARNING: "WARNING",
	ERROR:   "ERROR",
}

// Logger writes leveled messages to stderr and, when configured with a
// directory, to a rotated log file as well.
type Logger struct {
	level Level
	out   *log.Logger
}

// New creates a logger writing to stderr only.
func New(level Level) *Logger {
	return &Logger{
		level: level,
		out:   log.New(os.Stderr, "", log.LstdFlags),
	}
}

// NewWithFile creates a logger that duplicates output into dir/chamada.log,
// rotated by size.
func NewWithFile(level Level, dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "chamada.log"),
		MaxSize:    50,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	return &Logger{
		level: level,
		out:   log.New(io.MultiWriter(os.Stderr, fileWriter), "", log.LstdFlags),
	}, nil
}

func (l *Logger) log(level Level, msg string) {
	if level < l.level {
		return
	}
	l.out.Output(3, fmt.Sprintf("[%s] %s", levelNames[level], msg))
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(DEBUG, fmt.Sprintf(format, args...))
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(INFO, fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(WARNING, fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(ERROR, fmt.Sprintf(format, args...))
}
