// Package log provides the logging functionality for gpumon.
package log

import (
	"context"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Logger *gpumonLogger
var nopLogger = zap.NewNop().Sugar()

func init() {
	Logger = CreateLoggerWithConfig(DefaultLoggerConfig())
}

func DefaultLoggerConfig() *zap.Config {
	c := zap.NewProductionConfig()
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return &c
}

// CreateLoggerWithLumberjack creates a logger that writes to a rotating
// log file.
func CreateLoggerWithLumberjack(logFile string, maxSize int, logLevel zapcore.Level) *gpumonLogger {
	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    maxSize, // megabytes
		MaxBackups: 5,
		MaxAge:     3,    // days
		Compress:   true, // compress the rotated files
	})

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		w,
		logLevel,
	)
	logger := zap.New(core)
	return newGpumonLogger(logger.Sugar())
}

func ParseLogLevel(logLevel string) (zap.AtomicLevel, error) {
	zapLvl := zap.NewAtomicLevel() // info level by default
	if logLevel != "" && logLevel != "info" {
		var err error
		zapLvl, err = zap.ParseAtomicLevel(logLevel)
		if err != nil {
			return zap.AtomicLevel{}, err
		}
	}
	return zapLvl, nil
}

func CreateLogger(logLevel zap.AtomicLevel, logFile string) *gpumonLogger {
	if logFile != "" {
		return CreateLoggerWithLumberjack(logFile, 128, logLevel.Level())
	}

	lCfg := DefaultLoggerConfig()
	lCfg.Level = logLevel
	return CreateLoggerWithConfig(lCfg)
}

func CreateLoggerWithConfig(config *zap.Config) *gpumonLogger {
	if config == nil {
		config = DefaultLoggerConfig()
	}

	l, err := config.Build()
	if err != nil {
		panic(err)
	}

	return newGpumonLogger(l.Sugar())
}

type gpumonLogger struct {
	logger atomic.Pointer[zap.SugaredLogger]
}

func newGpumonLogger(logger *zap.SugaredLogger) *gpumonLogger {
	l := &gpumonLogger{}
	l.set(logger)
	return l
}

func (l *gpumonLogger) get() *zap.SugaredLogger {
	if l == nil {
		return nopLogger
	}
	logger := l.logger.Load()
	if logger == nil {
		return nopLogger
	}
	return logger
}

func (l *gpumonLogger) set(logger *zap.SugaredLogger) {
	if logger == nil {
		logger = nopLogger
	}
	l.logger.Store(logger)
}

func SetLogger(logger *gpumonLogger) {
	if logger == nil {
		Logger.set(nil)
		return
	}
	Logger.set(logger.get())
}

// Override the default logger's Errorw func to down level context canceled error
func (l *gpumonLogger) Errorw(msg string, keysAndValues ...interface{}) {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if keysAndValues[i] != "error" {
			continue
		}
		if err, ok := keysAndValues[i+1].(error); ok {
			if strings.Contains(err.Error(), context.Canceled.Error()) {
				l.get().Warnw(msg, keysAndValues...)
				return
			}
		}
	}

	l.get().Errorw(msg, keysAndValues...)
}

func (l *gpumonLogger) Debugw(msg string, keysAndValues ...interface{}) {
	l.get().Debugw(msg, keysAndValues...)
}

func (l *gpumonLogger) Infow(msg string, keysAndValues ...interface{}) {
	l.get().Infow(msg, keysAndValues...)
}

func (l *gpumonLogger) Warnw(msg string, keysAndValues ...interface{}) {
	l.get().Warnw(msg, keysAndValues...)
}

func (l *gpumonLogger) Fatalw(msg string, keysAndValues ...interface{}) {
	l.get().Fatalw(msg, keysAndValues...)
}

func (l *gpumonLogger) Debugf(format string, args ...interface{}) {
	l.get().Debugf(format, args...)
}

func (l *gpumonLogger) Infof(format string, args ...interface{}) {
	l.get().Infof(format, args...)
}

func (l *gpumonLogger) Warnf(format string, args ...interface{}) {
	l.get().Warnf(format, args...)
}

func (l *gpumonLogger) Errorf(format string, args ...interface{}) {
	l.get().Errorf(format, args...)
}

func (l *gpumonLogger) Sync() error {
	return l.get().Sync()
}
