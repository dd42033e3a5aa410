package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ApplicationLogger defines the interface for structured application logging.
type ApplicationLogger interface {
	Debug(ctx context.Context, message string, fields Fields)
	Info(ctx context.Context, message string, fields Fields)
	Warn(ctx context.Context, message string, fields Fields)
	Error(ctx context.Context, message string, fields Fields)
	ErrorWithError(ctx context.Context, err error, message string, fields Fields)
	LogPerformance(ctx context.Context, operation string, duration time.Duration, fields Fields)
	WithComponent(component string) ApplicationLogger
}

// Fields represents structured logging fields.
type Fields map[string]interface{}

// Config represents logger configuration.
type Config struct {
	Level            string
	Format           string // json, text
	Output           string // stdout, stderr, buffer (for testing)
	EnableColors     bool
	TimestampFormat  string
	EnableStackTrace bool
}

// LogEntry represents the structure of log entries.
type LogEntry struct {
	Timestamp     string                 `json:"timestamp"`
	Level         string                 `json:"level"`
	Message       string                 `json:"message"`
	CorrelationID string                 `json:"correlation_id"`
	Component     string                 `json:"component"`
	Operation     string                 `json:"operation,omitempty"`
	Duration      string                 `json:"duration,omitempty"`
	Error         string                 `json:"error,omitempty"`
	StackTrace    string                 `json:"stack_trace,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

type applicationLoggerImpl struct {
	config    Config
	component string
	buffer    *bytes.Buffer // For testing
	logger    *log.Logger
}

// NewApplicationLogger creates a new application logger.
func NewApplicationLogger(config Config) (ApplicationLogger, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	logger := &applicationLoggerImpl{config: config}

	switch config.Output {
	case "buffer":
		logger.buffer = &bytes.Buffer{}
		logger.logger = log.New(logger.buffer, "", 0)
	case "stderr":
		logger.logger = log.New(os.Stderr, "", 0)
	case "stdout":
		fallthrough
	default:
		logger.logger = log.New(os.Stdout, "", 0)
	}

	return logger, nil
}

func validateConfig(config Config) error {
	switch strings.ToUpper(config.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("invalid log level: %s", config.Level)
	}

	switch config.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", config.Format)
	}

	switch config.Output {
	case "stdout", "stderr", "buffer":
	default:
		return fmt.Errorf("invalid log output: %s", config.Output)
	}

	return nil
}

var logLevels = map[string]int{
	"DEBUG": 0,
	"INFO":  1,
	"WARN":  2,
	"ERROR": 3,
}

func (l *applicationLoggerImpl) shouldLog(level string) bool {
	return logLevels[level] >= logLevels[strings.ToUpper(l.config.Level)]
}

// Debug logs debug messages.
func (l *applicationLoggerImpl) Debug(ctx context.Context, message string, fields Fields) {
	if l.shouldLog("DEBUG") {
		l.logEntry(ctx, "DEBUG", message, "", fields)
	}
}

// Info logs info messages.
func (l *applicationLoggerImpl) Info(ctx context.Context, message string, fields Fields) {
	if l.shouldLog("INFO") {
		l.logEntry(ctx, "INFO", message, "", fields)
	}
}

// Warn logs warning messages.
func (l *applicationLoggerImpl) Warn(ctx context.Context, message string, fields Fields) {
	if l.shouldLog("WARN") {
		l.logEntry(ctx, "WARN", message, "", fields)
	}
}

// Error logs error messages.
func (l *applicationLoggerImpl) Error(ctx context.Context, message string, fields Fields) {
	if l.shouldLog("ERROR") {
		l.logEntry(ctx, "ERROR", message, "", fields)
	}
}

// ErrorWithError logs error messages with an error object.
func (l *applicationLoggerImpl) ErrorWithError(ctx context.Context, err error, message string, fields Fields) {
	if l.shouldLog("ERROR") {
		errorStr := ""
		if err != nil {
			errorStr = err.Error()
		}
		l.logEntry(ctx, "ERROR", message, errorStr, fields)
	}
}

// LogPerformance logs the duration of a named operation at info level.
func (l *applicationLoggerImpl) LogPerformance(
	ctx context.Context,
	operation string,
	duration time.Duration,
	fields Fields,
) {
	if l.shouldLog("INFO") {
		if fields == nil {
			fields = make(Fields)
		}
		fields["operation"] = operation
		fields["duration"] = duration.String()
		l.logEntry(ctx, "INFO", fmt.Sprintf("Performance metrics for %s", operation), "", fields)
	}
}

// WithComponent creates a new logger instance with a specific component.
func (l *applicationLoggerImpl) WithComponent(component string) ApplicationLogger {
	return &applicationLoggerImpl{
		config:    l.config,
		component: component,
		buffer:    l.buffer,
		logger:    l.logger,
	}
}

func (l *applicationLoggerImpl) timestamp() string {
	format := l.config.TimestampFormat
	if format == "" {
		format = time.RFC3339
	}
	return time.Now().UTC().Format(format)
}

func (l *applicationLoggerImpl) logEntry(ctx context.Context, level, message, errorStr string, fields Fields) {
	component := l.component
	if component == "" {
		component = "default"
	}

	entry := &LogEntry{
		Timestamp:     l.timestamp(),
		Level:         level,
		Message:       message,
		CorrelationID: getOrGenerateCorrelationID(ctx),
		Component:     component,
		Error:         errorStr,
	}

	if len(fields) > 0 {
		entry.Metadata = make(map[string]interface{}, len(fields))
		for key, value := range fields {
			switch key {
			case "operation":
				if operation, ok := value.(string); ok {
					entry.Operation = operation
				}
			case "duration":
				if duration, ok := value.(string); ok {
					entry.Duration = duration
				}
			}
			entry.Metadata[key] = value
		}
	}

	if l.config.EnableStackTrace && level == "ERROR" {
		buf := make([]byte, 4096)
		entry.StackTrace = string(buf[:runtime.Stack(buf, false)])
	}

	l.writeLogEntry(entry)
}

func (l *applicationLoggerImpl) writeLogEntry(entry *LogEntry) {
	if l.config.Format == "json" {
		jsonData, err := json.Marshal(entry)
		if err != nil {
			return
		}
		l.logger.Println(string(jsonData))
		return
	}

	logLine := fmt.Sprintf("[%s] %s %s: %s", entry.Timestamp, entry.Level, entry.Component, entry.Message)
	if entry.Error != "" {
		logLine += " error=" + entry.Error
	}
	l.logger.Println(logLine)
}

func getOrGenerateCorrelationID(ctx context.Context) string {
	if correlationID := CorrelationIDFromContext(ctx); correlationID != "" {
		return correlationID
	}
	return uuid.New().String()
}

// getLoggerOutput returns the last non-empty buffered log line, for tests.
func getLoggerOutput(logger ApplicationLogger) string {
	appLogger, ok := logger.(*applicationLoggerImpl)
	if !ok || appLogger.buffer == nil {
		return ""
	}

	lines := strings.Split(strings.TrimSpace(appLogger.buffer.String()), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
