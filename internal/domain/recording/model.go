package recording

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/devbydaniel/voicerec/internal/audio"
	"github.com/devbydaniel/voicerec/internal/interrupt"
)

// Status is the controller state.
type Status int

const (
	StatusNone Status = iota
	StatusRecording
	StatusPaused
	StatusInterrupted
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "NONE"
	case StatusRecording:
		return "RECORDING"
	case StatusPaused:
		return "PAUSED"
	case StatusInterrupted:
		return "INTERRUPTED"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "NONE":
		*s = StatusNone
	case "RECORDING":
		*s = StatusRecording
	case "PAUSED":
		*s = StatusPaused
	case "INTERRUPTED":
		*s = StatusInterrupted
	default:
		return fmt.Errorf("unknown status %q", string(b))
	}
	return nil
}

// Directory names the area of the recordings dir an output is placed in.
type Directory string

const (
	DirDocuments Directory = "DOCUMENTS"
	DirData      Directory = "DATA"
	DirLibrary   Directory = "LIBRARY"
	DirCache     Directory = "CACHE"
	DirExternal  Directory = "EXTERNAL"
)

// Path resolves the directory under root. An empty Directory means CACHE.
func (d Directory) Path(root, sub string) string {
	if d == "" {
		d = DirCache
	}
	dir := filepath.Join(root, strings.ToLower(string(d)))
	if sub = strings.Trim(sub, "/"); sub != "" {
		dir = filepath.Join(dir, filepath.FromSlash(sub))
	}
	return dir
}

// Options are what a caller passes to Start. Zero values fall back to the
// configured defaults.
type Options struct {
	Codec        string    `json:"codec,omitempty" yaml:"codec,omitempty" validate:"omitempty,oneof=aac m4a wav pcm"`
	SampleRate   int       `json:"sampleRate,omitempty" yaml:"sample_rate,omitempty" validate:"omitempty,oneof=8000 11025 16000 22050 32000 44100 48000 96000"`
	Channels     int       `json:"channels,omitempty" yaml:"channels,omitempty" validate:"omitempty,min=1,max=2"`
	BitDepth     int       `json:"bitDepth,omitempty" yaml:"bit_depth,omitempty" validate:"omitempty,oneof=8 16 24 32"`
	Bitrate      int       `json:"bitrate,omitempty" yaml:"bitrate,omitempty" validate:"omitempty,min=8000,max=320000"`
	Directory    Directory `json:"directory,omitempty" yaml:"directory,omitempty" validate:"omitempty,oneof=DOCUMENTS DATA LIBRARY CACHE EXTERNAL"`
	SubDirectory string    `json:"subDirectory,omitempty" yaml:"sub_directory,omitempty" validate:"omitempty,max=255,excludes=.."`
	InputDevice  string    `json:"inputDevice,omitempty" yaml:"input_device,omitempty"`
}

// DeviceConfig maps the options onto a capture configuration.
func (o Options) DeviceConfig(defaults audio.Config) (audio.Config, error) {
	cfg := defaults
	if o.Codec != "" {
		codec, err := audio.ParseCodec(o.Codec)
		if err != nil {
			return audio.Config{}, err
		}
		cfg.Codec = codec
	}
	if o.SampleRate > 0 {
		cfg.SampleRate = o.SampleRate
	}
	if o.Channels > 0 {
		cfg.Channels = o.Channels
	}
	if o.BitDepth > 0 {
		cfg.BitDepth = o.BitDepth
	}
	if o.Bitrate > 0 {
		cfg.Bitrate = o.Bitrate
	}
	if o.InputDevice != "" {
		cfg.Input = o.InputDevice
	}
	return cfg, nil
}

// Segment is one contiguous capture span.
type Segment struct {
	Path     string `json:"path" yaml:"path"`
	Sequence int    `json:"sequence" yaml:"sequence"`
}

// Outcome records how a session ended.
type Outcome string

const (
	OutcomeComplete     Outcome = "complete"
	OutcomeStitchFailed Outcome = "stitch_failed"
	OutcomeEmpty        Outcome = "empty"
)

// Result describes a stopped session.
type Result struct {
	SessionID     string
	Path          string
	Duration      time.Duration
	MimeType      string
	Codec         audio.Codec
	Segments      []Segment
	Interruptions int
	StartedAt     time.Time
	StoppedAt     time.Time
	Outcome       Outcome
}

// DurationMs is the decoded length in whole milliseconds.
func (r *Result) DurationMs() int64 {
	return r.Duration.Milliseconds()
}

// Snapshot is a copy of the open session's state.
type Snapshot struct {
	SessionID     string       `json:"sessionId,omitempty"`
	Status        Status       `json:"status"`
	Path          string       `json:"path,omitempty"`
	Segments      []Segment    `json:"segments,omitempty"`
	Interruptions int          `json:"interruptions"`
	Config        audio.Config `json:"config"`
	StartedAt     time.Time    `json:"startedAt,omitempty"`
}

// Notification is sent to the subscriber for each interruption the
// controller acts on.
type Notification struct {
	SessionID string         `json:"sessionId"`
	Kind      interrupt.Kind `json:"-"`
	Type      string         `json:"type"`
	Status    Status         `json:"status"`
	At        time.Time      `json:"at"`
}

// Notifier receives notifications. It must not block.
type Notifier func(Notification)
