package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomFormatter(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger()
	l.SetOutput(&buf)

	l.WithFields(logrus.Fields{"report_id": "itr_2025", "pages": 3}).Warn("partial document")

	line := buf.String()
	assert.Contains(t, line, "[WARN]")
	assert.Contains(t, line, "logger_test.go:")
	assert.Contains(t, line, "partial document pages=3 report_id=itr_2025")
}

func TestInitLogger_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "radar.log")
	require.NoError(t, InitLogger("debug", path))
	defer func() { Log = newLogger() }()

	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
	ForReport("r1").Info("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello report_id=r1")
}

func TestInitLogger_BadLevelFallsBackToInfo(t *testing.T) {
	require.NoError(t, InitLogger("loud", ""))
	defer func() { Log = newLogger() }()
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
}
