package logger

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// LogType tags an entry with the stream it belongs to
type LogType string

const (
	// UserLog entries are run progress for the person at the terminal
	UserLog LogType = "user"
	// OpLog entries are diagnostics for whoever operates the engine
	OpLog LogType = "op"
)

// UnifiedLogger owns the single logrus logger behind User and Op
type UnifiedLogger struct {
	mu     sync.RWMutex
	logger *logrus.Logger
}

var (
	unifiedLog *UnifiedLogger
	once       sync.Once
)

// GetLogger returns the process logger, creating it on first use
func GetLogger() *UnifiedLogger {
	once.Do(func() {
		l := logrus.New()
		l.SetOutput(os.Stderr)
		l.SetLevel(logrus.InfoLevel)
		l.SetFormatter(&CLIFormatter{DisableTimestamp: true, DisableColors: true})
		unifiedLog = &UnifiedLogger{logger: l}
	})
	return unifiedLog
}

// Configure swaps output, level and formatter in one step
func (l *UnifiedLogger) Configure(output io.Writer, level logrus.Level, formatter logrus.Formatter) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logger.SetOutput(output)
	l.logger.SetLevel(level)
	l.logger.SetFormatter(formatter)
}

// GetInternalLogger returns the underlying logrus logger
func (l *UnifiedLogger) GetInternalLogger() *logrus.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.logger
}

// Level reports the active level
func (l *UnifiedLogger) Level() logrus.Level {
	return l.GetInternalLogger().GetLevel()
}
