package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/go-audio/wav"
)

// Prober reports the decoded duration of an audio file.
type Prober interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// WAVProber computes the duration from the data chunk size. The riff
// parser's own Duration counts header bytes too, so it is not used.
type WAVProber struct{}

func (WAVProber) Duration(ctx context.Context, path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return 0, fmt.Errorf("%s: not a valid wav file", path)
	}
	if err := dec.FwdToPCM(); err != nil {
		return 0, fmt.Errorf("%s: locating pcm data: %w", path, err)
	}
	if dec.AvgBytesPerSec == 0 {
		return 0, fmt.Errorf("%s: missing byte rate", path)
	}
	secs := float64(dec.PCMSize) / float64(dec.AvgBytesPerSec)
	return time.Duration(secs * float64(time.Second)), nil
}

// FFprobeProber asks ffprobe, which also catches truncated or corrupt streams.
type FFprobeProber struct {
	Path string
}

func (p FFprobeProber) Duration(ctx context.Context, path string) (time.Duration, error) {
	bin := p.Path
	if bin == "" {
		bin = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseSeconds(string(out))
}

func parseSeconds(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return 0, fmt.Errorf("no duration reported")
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing duration %q: %w", s, err)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// CodecProber picks the WAV header reader for .wav files and ffprobe otherwise.
type CodecProber struct {
	WAV    Prober
	Others Prober
}

func NewProber(ffprobePath string) *CodecProber {
	return &CodecProber{
		WAV:    WAVProber{},
		Others: FFprobeProber{Path: ffprobePath},
	}
}

func (p *CodecProber) Duration(ctx context.Context, path string) (time.Duration, error) {
	if CodecForPath(path) == CodecWAV {
		return p.WAV.Duration(ctx, path)
	}
	return p.Others.Duration(ctx, path)
}
