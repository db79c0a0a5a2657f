// Package zap adapts a *zap.Logger to statecache.Logger.
package zap

import (
	"github.com/unkn0wn-root/statecache"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ statecache.Logger = ZapLogger{}

type ZapLogger struct{ L *zap.Logger }

// New names the logger "statecache".
func New(l *zap.Logger) ZapLogger { return ZapLogger{L: l.Named("statecache")} }

func (z ZapLogger) Debug(msg string, f statecache.Fields) { z.log(zapcore.DebugLevel, msg, f) }
func (z ZapLogger) Info(msg string, f statecache.Fields)  { z.log(zapcore.InfoLevel, msg, f) }
func (z ZapLogger) Warn(msg string, f statecache.Fields)  { z.log(zapcore.WarnLevel, msg, f) }
func (z ZapLogger) Error(msg string, f statecache.Fields) { z.log(zapcore.ErrorLevel, msg, f) }

// log checks the level first; debug events sit on the per-record path.
func (z ZapLogger) log(lvl zapcore.Level, msg string, f statecache.Fields) {
	if ce := z.L.Check(lvl, msg); ce != nil {
		ce.Write(zf(f)...)
	}
}

func zf(f statecache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}
