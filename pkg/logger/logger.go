// Package logger wires one zap logger per concern, each writing JSON to its
// own file under the configured directory.
package logger

import (
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	ErrorLogger    *zap.Logger
	AuditLogger    *zap.Logger
	RequestLogger  *zap.Logger
	SecurityLogger *zap.Logger
	SystemLogger   *zap.Logger
)

func newLogger(filePath string, level zapcore.Level) (*zap.Logger, error) {
	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	ws := zapcore.AddSync(file)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		ws,
		level,
	)
	return zap.New(core), nil
}

// InitLoggers creates dir if needed and opens every logger. Call once from
// main (or TestMain) before anything logs; failures are fatal because a
// service without logs is not worth starting.
func InitLoggers(dir string) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("Cannot create log directory %s: %v", dir, err)
	}

	open := func(name string, level zapcore.Level) *zap.Logger {
		l, err := newLogger(filepath.Join(dir, name), level)
		if err != nil {
			log.Fatalf("Cannot create %s logger: %v", name, err)
		}
		return l
	}

	ErrorLogger = open("errors.log", zapcore.ErrorLevel)
	AuditLogger = open("audit.log", zapcore.InfoLevel)
	RequestLogger = open("request.log", zapcore.InfoLevel)
	SecurityLogger = open("security.log", zapcore.WarnLevel)
	SystemLogger = open("system.log", zapcore.InfoLevel)
}

func SyncLoggers() {
	_ = ErrorLogger.Sync()
	_ = AuditLogger.Sync()
	_ = RequestLogger.Sync()
	_ = SecurityLogger.Sync()
	_ = SystemLogger.Sync()
}
