// Package logger emits one JSON object per log line on stdout, tagged with
// the service name so multiple processes can share a log stream.
package logger

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

// Logger is the leveled logging surface services depend on. Fields are
// merged into the emitted JSON object alongside the standard keys.
type Logger interface {
	Info(message string, fields map[string]interface{})
	Error(message string, fields map[string]interface{})
	Warn(message string, fields map[string]interface{})
	Debug(message string, fields map[string]interface{})
	Fatal(message string, fields map[string]interface{})
}

// New returns a Logger writing JSON lines to stdout.
func New(service string) Logger {
	return &jsonLogger{
		service: service,
		out:     log.New(os.Stdout, "", 0),
	}
}

type jsonLogger struct {
	service string
	out     *log.Logger
}

func (l *jsonLogger) emit(level, message string, fields map[string]interface{}) {
	line := make(map[string]interface{}, len(fields)+4)
	for k, v := range fields {
		line[k] = v
	}
	// Standard keys win over caller fields of the same name.
	line["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	line["level"] = level
	line["service"] = l.service
	line["message"] = message

	encoded, _ := json.Marshal(line)
	l.out.Println(string(encoded))
}

func (l *jsonLogger) Info(message string, fields map[string]interface{}) {
	l.emit("info", message, fields)
}

func (l *jsonLogger) Error(message string, fields map[string]interface{}) {
	l.emit("error", message, fields)
}

func (l *jsonLogger) Warn(message string, fields map[string]interface{}) {
	l.emit("warn", message, fields)
}

func (l *jsonLogger) Debug(message string, fields map[string]interface{}) {
	l.emit("debug", message, fields)
}

func (l *jsonLogger) Fatal(message string, fields map[string]interface{}) {
	l.emit("fatal", message, fields)
	os.Exit(1)
}

// NewNop returns a Logger that discards everything, for tests.
func NewNop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Fatal(string, map[string]interface{}) {}
