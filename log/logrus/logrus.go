// Package logrus adapts a *logrus.Entry to statecache.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"
	"github.com/unkn0wn-root/statecache"
)

var _ statecache.Logger = LogrusLogger{}

type LogrusLogger struct{ E *logrus.Entry }

func (l LogrusLogger) Debug(msg string, f statecache.Fields) { l.log(logrus.DebugLevel, msg, f) }
func (l LogrusLogger) Info(msg string, f statecache.Fields)  { l.log(logrus.InfoLevel, msg, f) }
func (l LogrusLogger) Warn(msg string, f statecache.Fields)  { l.log(logrus.WarnLevel, msg, f) }
func (l LogrusLogger) Error(msg string, f statecache.Fields) { l.log(logrus.ErrorLevel, msg, f) }

func (l LogrusLogger) log(lvl logrus.Level, msg string, f statecache.Fields) {
	if !l.E.Logger.IsLevelEnabled(lvl) {
		return
	}
	l.E.WithFields(logrus.Fields(f)).Log(lvl, msg)
}
