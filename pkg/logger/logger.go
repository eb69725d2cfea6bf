package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger обёртка над zerolog с printf-интерфейсом
// Пишет в файл, если указан путь, иначе в stdout
type Logger struct {
	zl   zerolog.Logger
	file *os.File
}

// New создает новый экземпляр логгера
// filePath - путь к файлу логов (пустая строка = stdout)
// level - уровень логирования (debug, info, warn, error)
func New(filePath, level string) (*Logger, error) {
	parsedLevel := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level))); err == nil && level != "" {
		parsedLevel = parsed
	}

	var output io.Writer = os.Stdout
	var file *os.File

	if filePath != "" {
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logger: failed to open log file %s: %w", filePath, err)
		}
		output = f
		file = f
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zl := zerolog.New(output).Level(parsedLevel).With().Timestamp().Logger()

	return &Logger{zl: zl, file: file}, nil
}

// Debug логирует сообщение с уровнем DEBUG
func (l *Logger) Debug(format string, v ...interface{}) {
	l.zl.Debug().Msg(fmt.Sprintf(format, v...))
}

// Info логирует сообщение с уровнем INFO
func (l *Logger) Info(format string, v ...interface{}) {
	l.zl.Info().Msg(fmt.Sprintf(format, v...))
}

// Warn логирует сообщение с уровнем WARN
func (l *Logger) Warn(format string, v ...interface{}) {
	l.zl.Warn().Msg(fmt.Sprintf(format, v...))
}

// Error логирует сообщение с уровнем ERROR
func (l *Logger) Error(format string, v ...interface{}) {
	l.zl.Error().Msg(fmt.Sprintf(format, v...))
}

// Fatal логирует сообщение с уровнем FATAL и завершает процесс
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.zl.Fatal().Msg(fmt.Sprintf(format, v...))
}

// Close закрывает файл логов, если он был открыт
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
