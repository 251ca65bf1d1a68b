package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Span places one input file on the output timeline.
type Span struct {
	Path     string
	Offset   time.Duration // cumulative duration of every span before this one
	Duration time.Duration
}

// Exporter writes the spans, back to back, into dst.
type Exporter interface {
	Export(ctx context.Context, spans []Span, dst string) error
}

// WAVExporter concatenates PCM data of WAV files sharing one format. Samples
// are copied as-is, so nothing is resampled.
type WAVExporter struct{}

func (WAVExporter) Export(ctx context.Context, spans []Span, dst string) error {
	if len(spans) == 0 {
		return errors.New("nothing to export")
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	var enc *wav.Encoder
	var ref wavFormat
	for i, sp := range spans {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := copyWAV(sp.Path, out, &enc, &ref); err != nil {
			return fmt.Errorf("segment %d (%s): %w", i, filepath.Base(sp.Path), err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return out.Sync()
}

type wavFormat struct {
	sampleRate, bitDepth, channels, audioFormat int
}

func copyWAV(path string, out io.WriteSeeker, enc **wav.Encoder, ref *wavFormat) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	dec := wav.NewDecoder(in)
	if !dec.IsValidFile() {
		return errors.New("not a valid wav file")
	}
	got := wavFormat{
		sampleRate:  int(dec.SampleRate),
		bitDepth:    int(dec.BitDepth),
		channels:    int(dec.NumChans),
		audioFormat: int(dec.WavAudioFormat),
	}

	if *enc == nil {
		*ref = got
		*enc = wav.NewEncoder(out, got.sampleRate, got.bitDepth, got.channels, got.audioFormat)
	} else if got != *ref {
		return fmt.Errorf("format %+v does not match first segment %+v", got, *ref)
	}

	buf := &audio.IntBuffer{
		Format:         dec.Format(),
		Data:           make([]int, 8192),
		SourceBitDepth: got.bitDepth,
	}
	for {
		buf.Data = buf.Data[:cap(buf.Data)]
		n, err := dec.PCMBuffer(buf)
		if n > 0 {
			buf.Data = buf.Data[:n]
			if werr := (*enc).Write(buf); werr != nil {
				return fmt.Errorf("writing samples: %w", werr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("reading samples: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return nil
}

// FFmpegExporter uses the concat demuxer with stream copy, so compressed
// frames are joined without being re-encoded.
type FFmpegExporter struct {
	FFmpegPath string
}

func (e FFmpegExporter) Export(ctx context.Context, spans []Span, dst string) error {
	if len(spans) == 0 {
		return errors.New("nothing to export")
	}
	bin := e.FFmpegPath
	if bin == "" {
		bin = "ffmpeg"
	}

	listPath := dst + ".concat.txt"
	if err := os.WriteFile(listPath, []byte(concatList(spans)), 0o644); err != nil {
		return fmt.Errorf("writing concat list: %w", err)
	}
	defer os.Remove(listPath)

	format := "adts"
	if CodecForPath(dst) == CodecWAV {
		format = "wav"
	}

	cmd := exec.CommandContext(ctx, bin,
		"-hide_banner", "-loglevel", "error",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-f", format,
		"-y",
		dst,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("concatenating audio: %w\n%s", err, string(out))
	}
	return nil
}

func concatList(spans []Span) string {
	var sb strings.Builder
	sb.WriteString("ffconcat version 1.0\n")
	for _, sp := range spans {
		abs, err := filepath.Abs(sp.Path)
		if err != nil {
			abs = sp.Path
		}
		fmt.Fprintf(&sb, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
		if sp.Duration > 0 {
			fmt.Fprintf(&sb, "duration %.6f\n", sp.Duration.Seconds())
		}
	}
	return sb.String()
}

// CodecExporter routes WAV destinations to WAVExporter and everything else to ffmpeg.
type CodecExporter struct {
	WAV    Exporter
	Others Exporter
}

func NewExporter(ffmpegPath string) *CodecExporter {
	return &CodecExporter{
		WAV:    WAVExporter{},
		Others: FFmpegExporter{FFmpegPath: ffmpegPath},
	}
}

func (e *CodecExporter) Export(ctx context.Context, spans []Span, dst string) error {
	if CodecForPath(dst) == CodecWAV {
		return e.WAV.Export(ctx, spans, dst)
	}
	return e.Others.Export(ctx, spans, dst)
}
