package contract

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. Reports go to stdout; logs always go to stderr.
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return l
}

// SetVerbose switches debug logging on or off.
func SetVerbose(verbose bool) {
	if verbose {
		Log.SetLevel(logrus.DebugLevel)
		return
	}
	Log.SetLevel(logrus.WarnLevel)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	Log.WithError(err).Error("Fatal " + msg)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	Log.WithError(err).Warn(msg)
}

// LogDebug logs a debug message with structured fields. It is silent unless --verbose is set.
func LogDebug(msg string, fields logrus.Fields) {
	Log.WithFields(fields).Debug(msg)
}
