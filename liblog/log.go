// Package liblog holds the process wide logger.
package liblog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log discards everything until Init is called
var Log = zap.NewNop()

// Init replaces Log with a production logger, or a console logger when debug is set.
func Init(debug bool) error {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = logger
	return nil
}

// Sync flushes buffered entries, errors from syncing a terminal are ignored.
func Sync() {
	_ = Log.Sync()
}
