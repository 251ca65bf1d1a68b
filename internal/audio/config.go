package audio

import (
	"fmt"
	"strings"
)

// Codec is the encoding a capture writes and the stitcher concatenates.
type Codec string

const (
	CodecAAC Codec = "aac"
	CodecWAV Codec = "wav"
)

// ParseCodec maps a user-supplied codec name onto a recognized Codec.
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "aac", "m4a":
		return CodecAAC, nil
	case "wav", "pcm":
		return CodecWAV, nil
	}
	return "", fmt.Errorf("unsupported codec %q", s)
}

// Extension returns the file extension, including the dot.
func (c Codec) Extension() string {
	if c == CodecWAV {
		return ".wav"
	}
	return ".aac"
}

// MimeType returns the MIME type reported to callers for finished recordings.
func (c Codec) MimeType() string {
	if c == CodecWAV {
		return "audio/wav"
	}
	return "audio/aac"
}

// CodecForPath guesses the codec from a file extension.
func CodecForPath(path string) Codec {
	if strings.HasSuffix(strings.ToLower(path), ".wav") {
		return CodecWAV
	}
	return CodecAAC
}

// Config is a capture device configuration: the enumerated set of recording
// options a session claims the device with.
type Config struct {
	Codec      Codec  `json:"codec" yaml:"codec"`
	SampleRate int    `json:"sampleRate" yaml:"sample_rate"`
	Channels   int    `json:"channels" yaml:"channels"`
	BitDepth   int    `json:"bitDepth" yaml:"bit_depth"`
	Bitrate    int    `json:"bitrate,omitempty" yaml:"bitrate,omitempty"`
	Input      string `json:"input,omitempty" yaml:"input,omitempty"` // ffmpeg input device, e.g. ":default"
}

// DefaultConfig is tuned for voice: AAC, 44.1kHz, mono, 96kbps.
func DefaultConfig() Config {
	return Config{
		Codec:      CodecAAC,
		SampleRate: 44100,
		Channels:   1,
		BitDepth:   16,
		Bitrate:    96000,
	}
}

func (c Config) String() string {
	return fmt.Sprintf("%s %dHz %dch %dbit", c.Codec, c.SampleRate, c.Channels, c.BitDepth)
}

// encoderArgs returns the ffmpeg output options for this configuration.
func (c Config) encoderArgs() []string {
	args := []string{
		"-ac", fmt.Sprint(c.Channels),
		"-ar", fmt.Sprint(c.SampleRate),
	}
	switch c.Codec {
	case CodecWAV:
		args = append(args, "-c:a", pcmCodec(c.BitDepth), "-f", "wav")
	default:
		args = append(args, "-c:a", "aac")
		if c.Bitrate > 0 {
			args = append(args, "-b:a", fmt.Sprint(c.Bitrate))
		}
		args = append(args, "-f", "adts")
	}
	return args
}

func pcmCodec(bitDepth int) string {
	switch bitDepth {
	case 24:
		return "pcm_s24le"
	case 32:
		return "pcm_s32le"
	case 8:
		return "pcm_u8"
	default:
		return "pcm_s16le"
	}
}
