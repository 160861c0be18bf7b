// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	h := NewFileHandler(&buf)

	ts := time.Date(2025, 3, 4, 5, 6, 7, 8_000_000, time.UTC)
	err := h.HandleLog(&log.Entry{
		Level:     log.InfoLevel,
		Message:   "running terraform init",
		Timestamp: ts,
		Fields:    log.Fields{"exit": 0, "dir": "/tmp"},
	})
	require.NoError(t, err)
	assert.Equal(t, "[2025-03-04 05:06:07.008] [INFO] running terraform init dir=/tmp exit=0\n", buf.String())
}

func TestFileHandler_MinLevel(t *testing.T) {
	var buf bytes.Buffer
	h := &FileHandler{w: &buf, min: log.WarnLevel}

	require.NoError(t, h.HandleLog(&log.Entry{Level: log.InfoLevel, Message: "quiet"}))
	assert.Empty(t, buf.String())

	require.NoError(t, h.HandleLog(&log.Entry{Level: log.ErrorLevel, Message: "loud"}))
	assert.Contains(t, buf.String(), "[ERROR] loud")
}

func TestInitLogger_WritesDailyFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(DirEnv, dir)
	t.Setenv(LevelEnv, "debug")

	closeLog := InitLogger()
	log.Debug("hello")
	closeLog()

	b, err := os.ReadFile(filepath.Join(dir, FileName(time.Now())))
	require.NoError(t, err)
	assert.Contains(t, string(b), "[DEBUG] hello")
}

func TestDir_Default(t *testing.T) {
	t.Setenv(DirEnv, "")
	d, err := Dir()
	if err != nil {
		t.Skip(err)
	}
	assert.Equal(t, filepath.Join("kinfra", "logs"), filepath.Join(filepath.Base(filepath.Dir(d)), filepath.Base(d)))
}
