// Package observability owns logger construction for the CLI.
//
// Log output goes to stderr as human-readable console lines, keeping
// stdout free for listing output and machine consumption.
package observability

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the process-wide logger. Initialized by InitCLILogger
// before command execution; defaults to a no-op so package code can log
// unconditionally.
var CLILogger = zap.NewNop()

// InitCLILogger builds the CLI logger. Verbose enables debug level,
// quiet restricts output to warnings and errors. Quiet wins when both
// are set.
func InitCLILogger(verbose, quiet bool) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	if quiet {
		level = zapcore.WarnLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if !isTerminal(os.Stderr) {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	CLILogger = zap.New(core)
}

// Sync flushes buffered log entries. Errors are ignored: stderr on most
// platforms does not support sync and the process is exiting anyway.
func Sync() {
	_ = CLILogger.Sync()
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
