package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesher-io/kesher/internal/shared/config"
)

func TestPackageLevelFunctions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, Init(&config.LoggerConfig{Level: "debug", Format: "json", OutputPath: path}, "release"))

	Debug("debug line", "k", 1)
	Info("info line", "k", 2)
	Warn("warn line", "k", 3)
	Error("error line", "k", 4)

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, msg := range []string{"debug line", "info line", "warn line", "error line"} {
		assert.Contains(t, string(out), msg)
	}
}
