// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

const (
	// DirEnv overrides the log directory.
	DirEnv = "KINFRA_LOG_DIR"
	// LevelEnv sets the minimum level (debug, info, warn, error, fatal).
	LevelEnv = "KINFRA_LOG_LEVEL"
)

// InitLogger sets up Apex with a FileHandler writing to a daily file in the
// log directory and a level from KINFRA_LOG_LEVEL. When the directory cannot
// be used only warnings and worse are written, to stderr. The returned func
// closes the log file.
func InitLogger() func() {
	level := strings.ToLower(os.Getenv(LevelEnv))
	if level == "" {
		level = "info"
	}
	if _, err := log.ParseLevel(level); err != nil {
		level = "info"
	}
	log.SetLevelFromString(level)

	dir, err := Dir()
	if err == nil {
		var f *os.File
		if f, err = openLogFile(dir, time.Now()); err == nil {
			log.SetHandler(NewFileHandler(f))
			return func() { _ = f.Close() }
		}
	}

	log.SetHandler(&FileHandler{w: os.Stderr, min: log.WarnLevel})
	log.WithError(err).Warn("file logging disabled")
	return func() {}
}

// Dir resolves the log directory: KINFRA_LOG_DIR, else <user cache>/kinfra/logs.
func Dir() (string, error) {
	if d := os.Getenv(DirEnv); d != "" {
		return d, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "kinfra", "logs"), nil
}

// FileName returns the log file name for t.
func FileName(t time.Time) string {
	return "kinfra-" + t.Format("2006-01-02") + ".log"
}

func openLogFile(dir string, t time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return os.OpenFile(filepath.Join(dir, FileName(t)), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:mnd
}

// FileHandler formats log messages as single lines.
type FileHandler struct {
	mu  sync.Mutex
	w   io.Writer
	min log.Level
}

// NewFileHandler returns a handler writing every entry to w.
func NewFileHandler(w io.Writer) *FileHandler {
	return &FileHandler{w: w, min: log.DebugLevel}
}

// HandleLog implements the log.Handler interface
func (h *FileHandler) HandleLog(e *log.Entry) error {
	if e.Level < h.min {
		return nil
	}

	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s", ts.Format("2006-01-02 15:04:05.000"), strings.ToUpper(e.Level.String()), e.Message)

	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}
