package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Init configures the package-level logrus logger.
func Init(level string, format string, out io.Writer) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Invalid log level '%s', using 'info' instead. Error: %v", level, err)
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	if out != nil {
		logrus.SetOutput(out)
	}
}
