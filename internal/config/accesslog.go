package config

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
)

// NewAccessLog returns a logger writing JSON lines to the rotating file named
// by ACCESS_LOG_FILE, or nil when the variable is unset.
func NewAccessLog() (*logrus.Logger, error) {
	path, ok := os.LookupEnv("ACCESS_LOG_FILE")
	if !ok || path == "" {
		return nil, nil
	}

	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   path,
		MaxSize:    50, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Level:      logrus.InfoLevel,
		Formatter:  &logrus.JSONFormatter{},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open access log %s: %w", path, err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	log.AddHook(hook)
	return log, nil
}
