package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bujia-iot/iot-terminal/internal/infrastructure/config"
)

func TestInit_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "terminal.log")
	require.NoError(t, Init(&config.LoggerConfig{
		Level:      "debug",
		Format:     "json",
		FilePath:   path,
		MaxSizeMB:  1,
		LogHexDump: true,
	}))

	HexDump("收到数据", []byte{0xA5, 0x01}, logrus.Fields{"connID": 1})
	Info("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "A5 01")
	assert.Contains(t, string(data), "hello")
	assert.Equal(t, logrus.DebugLevel, Level())
}

func TestInit_InvalidLevel(t *testing.T) {
	assert.Error(t, Init(&config.LoggerConfig{Level: "verbose"}))
}

func TestHexDump_Disabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terminal.log")
	require.NoError(t, Init(&config.LoggerConfig{Level: "debug", FilePath: path}))

	HexDump("收到数据", []byte{0xA5, 0x02}, nil)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "A5 02")
}
