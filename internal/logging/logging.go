package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// New builds the process logger. Output goes to stdout and to a timestamped
// file under dir; the file path is returned so the CLI can show where the
// run was recorded. The file stays open for the life of the process.
func New(dir, level string) (*logrus.Logger, string, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, "", fmt.Errorf("parse log level %q: %w", level, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("create log dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("ytone_%s.log", time.Now().Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("create log file: %w", err)
	}

	log := logrus.New()
	log.SetLevel(lvl)
	log.SetOutput(io.MultiWriter(os.Stdout, f))
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log, path, nil
}

// Discard returns a logger that drops everything. Used as the default in
// components whose callers did not supply one.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
