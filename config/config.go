package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultListenAddr    = "127.0.0.1:7777"
	DefaultExportTimeout = 5 * time.Minute
)

type Config struct {
	RecordingsDir string        `validate:"required"`
	StateDir      string        `validate:"required"`
	ListenAddr    string        `validate:"required,hostname_port"`
	LogLevel      string        `validate:"oneof=debug info warn error"`
	LogFile       string        // empty logs to stderr
	FFmpegPath    string        `validate:"required"`
	FFprobePath   string        `validate:"required"`
	InputFormat   string        // ffmpeg -f for the microphone: avfoundation, pulse, dshow...
	InputDevice   string        `validate:"required"`
	ExportTimeout time.Duration `validate:"gt=0"`
	Recording     Recording     // defaults for options a caller leaves empty
}

// Recording holds the default capture settings.
type Recording struct {
	Codec      string `toml:"codec" validate:"oneof=aac m4a wav pcm"`
	SampleRate int    `toml:"sample_rate" validate:"min=8000,max=192000"`
	Channels   int    `toml:"channels" validate:"min=1,max=2"`
	BitDepth   int    `toml:"bit_depth" validate:"oneof=8 16 24 32"`
	Bitrate    int    `toml:"bitrate" validate:"omitempty,min=8000,max=320000"`
}

type fileConfig struct {
	RecordingsDir string     `toml:"recordings_dir"`
	StateDir      string     `toml:"state_dir"`
	ListenAddr    string     `toml:"listen_addr"`
	LogLevel      string     `toml:"log_level"`
	LogFile       string     `toml:"log_file"`
	FFmpegPath    string     `toml:"ffmpeg_path"`
	FFprobePath   string     `toml:"ffprobe_path"`
	InputFormat   string     `toml:"input_format"`
	InputDevice   string     `toml:"input_device"`
	ExportTimeout string     `toml:"export_timeout"`
	Recording     *Recording `toml:"recording"`
}

// CatalogPath is the sqlite file holding recording history.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.StateDir, "catalog.db")
}

// ManifestDir holds recovery manifests of sessions whose stitch failed.
func (c *Config) ManifestDir() string {
	return filepath.Join(c.StateDir, "manifests")
}

// BaseURL is the daemon address as seen by the CLI.
func (c *Config) BaseURL() string {
	return "http://" + c.ListenAddr
}

func Default() *Config {
	format, device := defaultInput()
	return &Config{
		RecordingsDir: defaultRecordingsDir(),
		StateDir:      defaultStateDir(),
		ListenAddr:    DefaultListenAddr,
		LogLevel:      "info",
		FFmpegPath:    "ffmpeg",
		FFprobePath:   "ffprobe",
		InputFormat:   format,
		InputDevice:   device,
		ExportTimeout: DefaultExportTimeout,
		Recording: Recording{
			Codec:      "aac",
			SampleRate: 44100,
			Channels:   1,
			BitDepth:   16,
			Bitrate:    96000,
		},
	}
}

func Load() (*Config, error) {
	cfg := Default()

	if configPath := configFilePath(); configPath != "" {
		if err := applyFile(cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Ensure directories exist
	for _, dir := range []string{cfg.RecordingsDir, cfg.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	setPath(&cfg.RecordingsDir, fc.RecordingsDir)
	setPath(&cfg.StateDir, fc.StateDir)
	setPath(&cfg.LogFile, fc.LogFile)
	setPath(&cfg.FFmpegPath, fc.FFmpegPath)
	setPath(&cfg.FFprobePath, fc.FFprobePath)
	setString(&cfg.ListenAddr, fc.ListenAddr)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.InputFormat, fc.InputFormat)
	setString(&cfg.InputDevice, fc.InputDevice)
	if fc.ExportTimeout != "" {
		d, err := time.ParseDuration(fc.ExportTimeout)
		if err != nil {
			return fmt.Errorf("export_timeout: %w", err)
		}
		cfg.ExportTimeout = d
	}
	if r := fc.Recording; r != nil {
		setString(&cfg.Recording.Codec, r.Codec)
		setInt(&cfg.Recording.SampleRate, r.SampleRate)
		setInt(&cfg.Recording.Channels, r.Channels)
		setInt(&cfg.Recording.BitDepth, r.BitDepth)
		setInt(&cfg.Recording.Bitrate, r.Bitrate)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("VOICEREC_RECORDINGS_DIR"); v != "" {
		cfg.RecordingsDir = expandTilde(v)
	}
	if v := os.Getenv("VOICEREC_STATE_DIR"); v != "" {
		cfg.StateDir = expandTilde(v)
	}
	if v := os.Getenv("VOICEREC_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("VOICEREC_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("VOICEREC_LOG_FILE"); v != "" {
		cfg.LogFile = expandTilde(v)
	}
	if v := os.Getenv("VOICEREC_FFMPEG_PATH"); v != "" {
		cfg.FFmpegPath = expandTilde(v)
	}
	if v := os.Getenv("VOICEREC_FFPROBE_PATH"); v != "" {
		cfg.FFprobePath = expandTilde(v)
	}
	if v := os.Getenv("VOICEREC_INPUT_DEVICE"); v != "" {
		cfg.InputDevice = v
	}
	if v := os.Getenv("VOICEREC_CODEC"); v != "" {
		cfg.Recording.Codec = v
	}
	if v := os.Getenv("VOICEREC_EXPORT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("VOICEREC_EXPORT_TIMEOUT: %w", err)
		}
		cfg.ExportTimeout = d
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setPath(dst *string, v string) {
	if v != "" {
		*dst = expandTilde(v)
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func configFilePath() string {
	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, "voicerec")
	} else if home, err := os.UserHomeDir(); err == nil {
		configDir = filepath.Join(home, ".config", "voicerec")
	} else {
		return ""
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

func defaultRecordingsDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "Recordings")
	}
	return filepath.Join(".", "recordings")
}

func defaultStateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "voicerec")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "voicerec")
	}
	return filepath.Join(".", ".voicerec")
}

// defaultInput returns the ffmpeg input format and device for the platform
// microphone.
func defaultInput() (format, device string) {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation", ":default"
	case "windows":
		return "dshow", "audio=default"
	default:
		return "pulse", "default"
	}
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
