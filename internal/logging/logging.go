// Package logging builds the structured diagnostic logger. Diagnostics
// always go to the secondary channel so that stdout stays reserved for
// machine-readable output.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	Verbose bool      // log at debug instead of warn
	Writer  io.Writer // defaults to os.Stderr
}

// New returns a console logger writing to opts.Writer.
func New(opts Options) *zap.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	level := zapcore.WarnLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.NameKey = "logger"
	encoderCfg.CallerKey = ""
	encoderCfg.StacktraceKey = ""

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(w), level)
	return zap.New(core).Named("gate")
}
