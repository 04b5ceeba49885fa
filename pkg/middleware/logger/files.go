package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

func ensureLogDir() string {
	dir := "log"
	_ = os.MkdirAll(dir, 0o755)
	return dir
}

// NewLog returns a logger writing JSON lines to log/<n> and stdout. Access
// logs carry everything in fields, so the message key is omitted.
func NewLog(n string) *zap.Logger {
	return newLog(n, zapcore.OmitKey)
}

// NewSystemLog is NewLog with messages kept under "msg". Handler failures
// are reported as messages.
func NewSystemLog(n string) *zap.Logger {
	return newLog(n, "msg")
}

func newLog(n, messageKey string) *zap.Logger {
	_ = ensureLogDir()

	cfg := zap.NewProductionEncoderConfig()
	cfg.MessageKey = messageKey

	// captured now: CGI sessions rebind os.Stdout while they run
	console := zapcore.Lock(os.Stdout)

	var logPath string
	if runtime.GOOS == "windows" {
		logPath = filepath.Join("log", n)
	} else {
		logPath = fmt.Sprintf("%s/%s", "log", n)
	}

	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    50, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	})

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(cfg), w, zap.InfoLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(cfg), console, zap.InfoLevel),
	)
	return zap.New(core)
}

var (
	accessMu         sync.Mutex
	httpAccessLogger *zap.Logger
)

func accessLogger() *zap.Logger {
	accessMu.Lock()
	defer accessMu.Unlock()
	if httpAccessLogger == nil {
		httpAccessLogger = NewLog("http-access.log")
	}
	return httpAccessLogger
}

// SetAccessLogger lets tests/CLIs override the access logger (optional).
func SetAccessLogger(l *zap.Logger) {
	if l != nil {
		accessMu.Lock()
		httpAccessLogger = l
		accessMu.Unlock()
	}
}
