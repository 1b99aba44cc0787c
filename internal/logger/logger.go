package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Init configures the process-wide logger. Unknown levels fall back to info.
func Init(level string) {
	logrus.SetOutput(os.Stdout)
	logrus.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)

	Info("logger initialized", map[string]any{"level": lvl.String()})
}

func entry(fields map[string]any) *logrus.Entry {
	return logrus.WithFields(logrus.Fields(fields))
}

func Debug(msg string, fields map[string]any) {
	entry(fields).Debug(msg)
}

func Info(msg string, fields map[string]any) {
	entry(fields).Info(msg)
}

func Warn(msg string, fields map[string]any) {
	entry(fields).Warn(msg)
}

func Error(msg string, fields map[string]any) {
	entry(fields).Error(msg)
}

func Fatal(msg string, fields map[string]any) {
	entry(fields).Fatal(msg)
}
