package logger

import (
	"fmt"
	"os"
	"sync"

	"github.com/ak/brewlab/internal/infrastructure/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// Logger wraps zap.Logger with the context fields used across brewlab:
// component, workflow and analysis id.
type Logger struct {
	*zap.Logger
	component string
}

// New creates a new Logger instance from configuration. An unparsable level
// falls back to info; an output other than stdout or stderr is a file path.
func New(cfg config.LoggingConfig) (*Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	sink, err := openSink(cfg.Output)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(newEncoder(cfg.Format), sink, level)
	return Wrap(zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))), nil
}

func newEncoder(format string) zapcore.Encoder {
	ec := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if format == "json" {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewJSONEncoder(ec)
	}
	return zapcore.NewConsoleEncoder(ec)
}

func openSink(output string) (zapcore.WriteSyncer, error) {
	switch output {
	case "", "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	}
	file, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log output %s: %w", output, err)
	}
	return zapcore.AddSync(file), nil
}

// Wrap adopts an existing zap logger
func Wrap(z *zap.Logger) *Logger {
	return &Logger{Logger: z}
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return Wrap(zap.NewNop())
}

// SetGlobal replaces the process-wide logger
func SetGlobal(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// Global returns the process-wide logger, or a no-op logger before SetGlobal
func Global() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger == nil {
		return NewNop()
	}
	return globalLogger
}

// Component reports the component name set by WithComponent
func (l *Logger) Component() string {
	return l.component
}

func (l *Logger) with(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...), component: l.component}
}

// WithComponent creates a child logger with a component name
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.Logger.With(zap.String("component", component)),
		component: component,
	}
}

// WithFields creates a child logger with additional fields
func (l *Logger) WithFields(fields ...zap.Field) *Logger {
	return l.with(fields...)
}

func (l *Logger) WithWorkflow(name string) *Logger {
	return l.with(zap.String("workflow", name))
}

func (l *Logger) WithAnalysis(analysisID string) *Logger {
	return l.with(zap.String("analysis_id", analysisID))
}
