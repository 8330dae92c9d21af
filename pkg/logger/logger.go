package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones para el logger.
type Config struct {
	Env   string // development -> consola legible; production -> JSON
	Level string // trace, debug, info, warn, error
}

// Logger wrapper sobre zerolog para inyección y consistencia.
type Logger struct {
	zl zerolog.Logger
}

// New crea un logger estructurado. En development usa salida legible; en production JSON.
func New(cfg Config) *Logger {
	return fromWriter(cfg, consoleWriter(cfg))
}

// NewRunLog crea el logger de una corrida: además de la consola escribe cada
// evento como línea JSON en un events.log de solo-append bajo
// <dir>/<programa>/<empresa>/. Ningún desenlace de la corrida queda sin
// registro. El closer debe invocarse al terminar la corrida.
func NewRunLog(cfg Config, dir, programa, empresa string) (*Logger, io.Closer, error) {
	logDir := filepath.Join(dir, strings.ToLower(programa), strings.ToLower(empresa))
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("crear directorio de logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(logDir, "events.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("abrir events.log: %w", err)
	}
	w := zerolog.MultiLevelWriter(consoleWriter(cfg), f)
	l := fromWriter(cfg, w).withFields(programa, empresa)
	return l, f, nil
}

func (l *Logger) withFields(programa, empresa string) *Logger {
	return &Logger{zl: l.zl.With().Str("programa", programa).Str("empresa", empresa).Logger()}
}

func consoleWriter(cfg Config) io.Writer {
	if cfg.Env == "development" {
		return zerolog.ConsoleWriter{Out: os.Stdout}
	}
	return os.Stdout
}

func fromWriter(cfg Config, w io.Writer) *Logger {
	zl := zerolog.New(w).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()

	// Redirigir el logger global de zerolog para librerías que lo usen
	log.Logger = zl

	return &Logger{zl: zl}
}

func parseLevel(s string) zerolog.Level {
	switch s {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Trace, Debug, Info, Warn, Error delegados a zerolog.
func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// With crea un sublogger con campos fijos.
func (l *Logger) With() zerolog.Context {
	return l.zl.With()
}

// Zerolog devuelve el logger interno por si se necesita la API directa.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}
