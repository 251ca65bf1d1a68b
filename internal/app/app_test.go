package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devbydaniel/voicerec/config"
	"github.com/devbydaniel/voicerec/internal/audio"
	"github.com/devbydaniel/voicerec/internal/domain/recording"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	dir := t.TempDir()
	cfg.RecordingsDir = filepath.Join(dir, "rec")
	cfg.StateDir = filepath.Join(dir, "state")
	cfg.LogLevel = "error"
	return cfg
}

func TestNewWiresEverything(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, recording.StatusNone, a.GetStatus.Execute().Status)
	assert.NotNil(t, a.Server().Handler())
	assert.FileExists(t, cfg.CatalogPath())
}

func TestDeviceDefaults(t *testing.T) {
	cfg := testConfig(t)
	cfg.Recording.Codec = "wav"
	cfg.InputDevice = "hw:2"

	got, err := DeviceDefaults(cfg)
	require.NoError(t, err)
	assert.Equal(t, audio.CodecWAV, got.Codec)
	assert.Equal(t, 44100, got.SampleRate)
	assert.Equal(t, "hw:2", got.Input)

	cfg.Recording.Codec = "ogg"
	_, err = DeviceDefaults(cfg)
	assert.Error(t, err)
}
