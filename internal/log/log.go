// Package log configures the structured trace logger used for scan diagnostics.
package log

import (
	"fmt"
	"io"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"
	easy "github.com/t-tomalak/logrus-easy-formatter"
)

// SetFormatter sets the plain formatter used outside debug mode
func SetFormatter() {
	logrus.SetFormatter(&easy.Formatter{
		LogFormat: "[RR][%lvl%] %msg%\n",
	})
}

// SetDebugFormatter sets the verbose formatter with caller information
func SetDebugFormatter(noColor bool) {
	logrus.SetReportCaller(true)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableColors:          noColor,
		DisableLevelTruncation: true,
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
		},
	})
}

// Setup configures level and formatter. debug overrides logLevel.
// An empty logLevel means warn: traces stay silent unless asked for.
func Setup(out io.Writer, logLevel string, debug bool, noColor bool) error {
	logrus.SetOutput(out)
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
		SetDebugFormatter(noColor)
		return nil
	}

	logrus.SetReportCaller(false)
	SetFormatter()
	if logLevel == "" {
		logrus.SetLevel(logrus.WarnLevel)
		return nil
	}
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logrus.SetLevel(level)
	return nil
}
