// internal/logging/logging.go
package logging

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/casaprime/realty-backend/internal/config"
)

// Setup configures the standard logrus logger. Production logs JSON unless
// LOG_FORMAT says otherwise.
func Setup(cfg config.LogConfig, environment string) {
	logrus.SetOutput(os.Stdout)

	format := cfg.Format
	if format == "" {
		format = "text"
		if environment == "production" {
			format = "json"
		}
	}

	if format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.WithField("level", cfg.Level).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
