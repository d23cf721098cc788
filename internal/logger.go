package internal

import (
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var (
	logLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger   atomic.Pointer[zap.SugaredLogger]

	// fileMu guards logFile and serializes logger swaps
	fileMu  sync.Mutex
	logFile *lumberjack.Logger
)

func init() {
	logger.Store(newLogger(nil))
}

func newLogger(file zapcore.WriteSyncer) *zap.SugaredLogger {
	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.TimeKey = ""
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleCfg),
		zapcore.Lock(os.Stderr),
		logLevel,
	)
	if file == nil {
		return zap.New(consoleCore).Sugar()
	}

	fileCfg := zap.NewProductionEncoderConfig()
	fileCfg.TimeKey = "timestamp"
	fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), file, zapcore.DebugLevel)
	return zap.New(zapcore.NewTee(consoleCore, fileCore)).Sugar()
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	switch level {
	case LogLevelError:
		logLevel.SetLevel(zapcore.ErrorLevel)
	case LogLevelWarn:
		logLevel.SetLevel(zapcore.WarnLevel)
	case LogLevelDebug:
		logLevel.SetLevel(zapcore.DebugLevel)
	default:
		logLevel.SetLevel(zapcore.InfoLevel)
	}
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelInfo)
	}
}

// SetLogFile additionally writes JSON logs to a rotating file.
// An empty path restores console-only logging. A previously opened file is
// closed.
func SetLogFile(path string) {
	fileMu.Lock()
	defer fileMu.Unlock()

	var sink zapcore.WriteSyncer
	var next *lumberjack.Logger
	if path != "" {
		next = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // Megabytes
			MaxBackups: 3,
			MaxAge:     28, // Days
		}
		sink = zapcore.AddSync(next)
	}
	_ = logger.Swap(newLogger(sink)).Sync()

	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = next
}

// SyncLogs flushes any buffered log entries
func SyncLogs() {
	_ = logger.Load().Sync()
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	logger.Load().Errorf(format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	logger.Load().Warnf(format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	logger.Load().Infof(format, args...)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	logger.Load().Debugf(format, args...)
}
