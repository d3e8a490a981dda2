// Package logger provides the process-wide leveled logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	globalLogger = newConsoleLogger()
	logFile      *os.File
	mu           sync.Mutex
)

// levelColors mirrors the console palette used by the test runs:
// debug white, info green, warn yellow, error red.
var levelColors = map[logrus.Level]int{
	logrus.DebugLevel: 37,
	logrus.InfoLevel:  32,
	logrus.WarnLevel:  33,
	logrus.ErrorLevel: 31,
	logrus.FatalLevel: 31,
	logrus.PanicLevel: 31,
}

// consoleFormatter renders "2006-01-02 15:04:05 | LEVEL | message" lines,
// colored by level unless NoColor is set.
type consoleFormatter struct {
	NoColor bool
}

// Format implements logrus.Formatter.
func (f *consoleFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	line := fmt.Sprintf("%s | %s | %s",
		entry.Time.Format("2006-01-02 15:04:05"),
		levelName(entry.Level),
		entry.Message,
	)
	for k, v := range entry.Data {
		line += fmt.Sprintf(" %s=%v", k, v)
	}
	if f.NoColor {
		return []byte(line + "\n"), nil
	}
	return []byte(fmt.Sprintf("\x1b[%dm%s\x1b[0m\n", levelColors[entry.Level], line)), nil
}

func levelName(l logrus.Level) string {
	switch l {
	case logrus.WarnLevel:
		return "WARNING"
	case logrus.PanicLevel, logrus.FatalLevel:
		return "CRITICAL"
	default:
		return strings.ToUpper(l.String())
	}
}

func newConsoleLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&consoleFormatter{})
	return l
}

// Init additionally writes log lines to the file at logPath (uncolored).
func Init(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	logFile = f
	globalLogger.AddHook(&fileHook{w: f, formatter: &consoleFormatter{NoColor: true}})
	return nil
}

// Close closes the log file and detaches it from the logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	globalLogger.ReplaceHooks(make(logrus.LevelHooks))
}

// SetLevel changes the minimum level, e.g. "info" or "debug".
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	globalLogger.SetLevel(lvl)
	return nil
}

// SetNoColor disables ANSI colors on the console.
func SetNoColor(noColor bool) {
	globalLogger.SetFormatter(&consoleFormatter{NoColor: noColor})
}

// SetOutput redirects console output.
func SetOutput(w io.Writer) {
	globalLogger.SetOutput(w)
}

// AddHook registers a logrus hook, used by tests to capture entries.
func AddHook(h logrus.Hook) {
	globalLogger.AddHook(h)
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	globalLogger.Infof(format, v...)
}

// Debug logs a debug message.
func Debug(format string, v ...interface{}) {
	globalLogger.Debugf(format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	globalLogger.Errorf(format, v...)
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	globalLogger.Warnf(format, v...)
}

type fileHook struct {
	w         io.Writer
	formatter logrus.Formatter
}

func (h *fileHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.w.Write(line)
	return err
}
