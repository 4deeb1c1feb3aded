package logger

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/Lutefd/coin-relay/internal/model"
	"github.com/Lutefd/coin-relay/internal/repository"
	"github.com/google/uuid"
)

var (
	InfoLogger          *log.Logger
	WarnLogger          *log.Logger
	ErrorLogger         *log.Logger
	logChan             chan model.Log
	logRepo             repository.LogRepository
	logSource           = "relay"
	loggerBufferSize    = 1000
	LoggerSleepDuration = 100 * time.Millisecond

	mu      sync.RWMutex
	started bool
	closed  bool
)

func init() {
	InfoLogger = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	WarnLogger = log.New(os.Stdout, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	logChan = make(chan model.Log, loggerBufferSize)
}

// InitLogger starts persisting log entries to repo. Calling it again swaps
// the repository without starting a second consumer.
func InitLogger(repo repository.LogRepository) {
	mu.Lock()
	defer mu.Unlock()
	logRepo = repo
	if !started {
		started = true
		go processLogs()
	}
}

// SetSource tags every persisted entry with the running process name.
func SetSource(source string) {
	mu.Lock()
	logSource = source
	mu.Unlock()
}

func currentRepo() repository.LogRepository {
	mu.RLock()
	defer mu.RUnlock()
	return logRepo
}

func processLogs() {
	for logEntry := range logChan {
		repo := currentRepo()
		if repo == nil {
			continue
		}
		if err := repo.SaveLog(context.Background(), logEntry); err != nil {
			ErrorLogger.Printf("failed to save log: %v", err)
		}
	}
}

func logAsync(level model.LogLevel, message string) {
	switch level {
	case model.LogLevelInfo:
		InfoLogger.Println(message)
	case model.LogLevelWarn:
		WarnLogger.Println(message)
	default:
		ErrorLogger.Println(message)
	}

	mu.RLock()
	defer mu.RUnlock()
	if closed {
		return
	}

	logEntry := model.Log{
		ID:        uuid.New(),
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
		Source:    logSource,
	}

	select {
	case logChan <- logEntry:
	default:
		ErrorLogger.Printf("log channel full. Dropping log: %v", logEntry)
	}
}

func Info(v ...interface{}) {
	logAsync(model.LogLevelInfo, fmt.Sprint(v...))
}

func Infof(format string, v ...interface{}) {
	logAsync(model.LogLevelInfo, fmt.Sprintf(format, v...))
}

func Warn(v ...interface{}) {
	logAsync(model.LogLevelWarn, fmt.Sprint(v...))
}

func Warnf(format string, v ...interface{}) {
	logAsync(model.LogLevelWarn, fmt.Sprintf(format, v...))
}

func Error(v ...interface{}) {
	logAsync(model.LogLevelError, fmt.Sprint(v...))
}

func Errorf(format string, v ...interface{}) {
	logAsync(model.LogLevelError, fmt.Sprintf(format, v...))
}

// Shutdown stops accepting entries, waits for the buffer to drain and closes
// the repository.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	if !closed {
		closed = true
		close(logChan)
	}
	mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if len(logChan) == 0 {
				if repo := currentRepo(); repo != nil {
					return repo.Close()
				}
				return nil
			}
			time.Sleep(LoggerSleepDuration)
		}
	}
}
