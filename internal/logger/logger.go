package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/aceleracloud/mongo-queue/internal/conf"
)

// NewLogger builds the application logger from the log configuration. When
// a filename is configured the log is rotated with lumberjack; otherwise it
// goes to stderr. The returned cleanup flushes buffered entries.
func NewLogger(cfg *conf.LogConfig) (*zap.Logger, func(), error) {
	level := zapcore.InfoLevel
	if cfg != nil && cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, err
		}
		level = parsed
	}

	var sink zapcore.WriteSyncer
	if cfg != nil && cfg.Filename != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxAge:     cfg.MaxAge,
			MaxBackups: cfg.MaxBackups,
		})
	} else {
		sink = zapcore.AddSync(os.Stderr)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), sink, level)
	log := zap.New(core, zap.AddCaller())
	zap.ReplaceGlobals(log)

	cleanup := func() {
		_ = log.Sync()
	}
	return log, cleanup, nil
}
