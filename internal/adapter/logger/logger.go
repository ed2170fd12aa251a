package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// LoggerAdapter implements ports.LoggerPort on logrus: JSON output in
// production, colored text everywhere else.
type LoggerAdapter struct {
	log *logrus.Logger
}

func NewLoggerAdapter(env string) *LoggerAdapter {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if env == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetLevel(logrus.InfoLevel)
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		log.SetLevel(logrus.DebugLevel)
	}

	return &LoggerAdapter{log: log}
}

func (l *LoggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.log.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (l *LoggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.log.WithFields(logrus.Fields(fields)).Info(msg)
}

func (l *LoggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.log.WithFields(logrus.Fields(fields)).Warn(msg)
}

func (l *LoggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.log.WithFields(logrus.Fields(fields)).Error(msg)
}
