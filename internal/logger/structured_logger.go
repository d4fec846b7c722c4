package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// LogLevel represents logging severity levels
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// String returns string representation of log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string to a level, defaulting to INFO
func ParseLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return INFO
	}
}

// LogEntry represents a structured log entry
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Component string                 `json:"component,omitempty"`
	Operation string                 `json:"operation,omitempty"`
	Resource  string                 `json:"resource,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	File      string                 `json:"file,omitempty"`
	Line      int                    `json:"line,omitempty"`
	Function  string                 `json:"function,omitempty"`
}

// StructuredLogger writes one JSON object per line
type StructuredLogger struct {
	level        LogLevel
	service      string
	version      string
	output       io.Writer
	closer       io.Closer
	enableCaller bool
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level        LogLevel
	Service      string
	Version      string
	OutputPath   string
	EnableCaller bool
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(config LoggerConfig) (*StructuredLogger, error) {
	if config.OutputPath == "" || config.OutputPath == "stdout" {
		return NewWriterLogger(config, os.Stdout), nil
	}
	if config.OutputPath == "stderr" {
		return NewWriterLogger(config, os.Stderr), nil
	}

	// Ensure log directory exists
	if err := os.MkdirAll(filepath.Dir(config.OutputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(config.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	sl := NewWriterLogger(config, file)
	sl.closer = file
	return sl, nil
}

// NewWriterLogger logs to an arbitrary writer
func NewWriterLogger(config LoggerConfig, w io.Writer) *StructuredLogger {
	return &StructuredLogger{
		level:        config.Level,
		service:      config.Service,
		version:      config.Version,
		output:       w,
		enableCaller: config.EnableCaller,
	}
}

// Discard returns a logger that drops everything
func Discard() *StructuredLogger {
	return NewWriterLogger(LoggerConfig{Level: FATAL + 1}, io.Discard)
}

// log writes a structured log entry
func (sl *StructuredLogger) log(level LogLevel, message string, fields map[string]interface{}) {
	if sl == nil || level < sl.level {
		return
	}

	entry := &LogEntry{
		Timestamp: time.Now().UTC(),
		Level:     level.String(),
		Message:   message,
		Service:   sl.service,
		Version:   sl.version,
	}

	// Lift well known keys out of the free-form fields
	if v, ok := fields["component"].(string); ok {
		entry.Component = v
		delete(fields, "component")
	}
	if v, ok := fields["operation"].(string); ok {
		entry.Operation = v
		delete(fields, "operation")
	}
	if v, ok := fields["resource"].(string); ok {
		entry.Resource = v
		delete(fields, "resource")
	}
	if v, ok := fields["error"].(string); ok {
		entry.Error = v
		delete(fields, "error")
	}
	if len(fields) > 0 {
		entry.Fields = fields
	}

	if sl.enableCaller {
		if file, line, fn := sl.getCaller(3); file != "" {
			entry.File = file
			entry.Line = line
			entry.Function = fn
		}
	}

	jsonData, _ := json.Marshal(entry)
	fmt.Fprintf(sl.output, "%s\n", jsonData)
}

// Debug logs debug messages
func (sl *StructuredLogger) Debug(message string, fields ...map[string]interface{}) {
	sl.log(DEBUG, message, sl.mergeFields(fields...))
}

// Info logs info messages
func (sl *StructuredLogger) Info(message string, fields ...map[string]interface{}) {
	sl.log(INFO, message, sl.mergeFields(fields...))
}

// Warn logs warning messages
func (sl *StructuredLogger) Warn(message string, fields ...map[string]interface{}) {
	sl.log(WARN, message, sl.mergeFields(fields...))
}

// Error logs error messages
func (sl *StructuredLogger) Error(message string, err error, fields ...map[string]interface{}) {
	logFields := sl.mergeFields(fields...)
	if err != nil {
		logFields["error"] = err.Error()
	}
	sl.log(ERROR, message, logFields)
}

// LogBusinessEvent logs generation and export events
func (sl *StructuredLogger) LogBusinessEvent(event string, resource string, operation string, fields ...map[string]interface{}) {
	logFields := sl.mergeFields(fields...)
	logFields["component"] = "business"
	logFields["operation"] = operation
	logFields["resource"] = resource

	sl.log(INFO, event, logFields)
}

// LogSystemEvent logs system-level events
func (sl *StructuredLogger) LogSystemEvent(event string, fields ...map[string]interface{}) {
	logFields := sl.mergeFields(fields...)
	logFields["component"] = "system"

	sl.log(INFO, event, logFields)
}

// getCaller returns caller information
func (sl *StructuredLogger) getCaller(skip int) (string, int, string) {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "", 0, ""
	}

	fn := runtime.FuncForPC(pc)
	var fnName string
	if fn != nil {
		fnName = fn.Name()
		if parts := strings.Split(fnName, "."); len(parts) > 0 {
			fnName = parts[len(parts)-1]
		}
	}

	return filepath.Base(file), line, fnName
}

// mergeFields merges multiple field maps
func (sl *StructuredLogger) mergeFields(fields ...map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for _, field := range fields {
		for k, v := range field {
			result[k] = v
		}
	}
	return result
}

// Close closes the logger output, later calls are no-ops
func (sl *StructuredLogger) Close() error {
	if sl == nil || sl.closer == nil {
		return nil
	}
	closer := sl.closer
	sl.closer = nil
	sl.output = io.Discard
	return closer.Close()
}
