package recording

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/devbydaniel/voicerec/internal/audio"
)

// DefaultExportTimeout bounds a single export.
const DefaultExportTimeout = 5 * time.Minute

// Stitcher merges the segments of an interrupted session into one file.
type Stitcher struct {
	Prober   audio.Prober
	Exporter audio.Exporter
	Timeout  time.Duration
	Logger   *zap.Logger
}

func NewStitcher(prober audio.Prober, exporter audio.Exporter, timeout time.Duration, logger *zap.Logger) *Stitcher {
	if timeout <= 0 {
		timeout = DefaultExportTimeout
	}
	return &Stitcher{Prober: prober, Exporter: exporter, Timeout: timeout, Logger: logger}
}

// Stitch concatenates segments, in order, into dest. The result is exported
// next to dest and renamed over it; the inputs are deleted only after that
// rename. On failure dest and every input are left as they were.
func (s *Stitcher) Stitch(ctx context.Context, segments []Segment, dest string) error {
	if err := checkSegments(segments, dest); err != nil {
		return err
	}

	spans, err := s.timeline(ctx, segments)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".stitch-*"+filepath.Ext(dest))
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	exportCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	start := time.Now()
	if err := s.Exporter.Export(exportCtx, spans, tmpPath); err != nil {
		if errors.Is(exportCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("export timed out after %s: %w", s.Timeout, err)
		}
		return fmt.Errorf("export: %w", err)
	}

	// CreateTemp makes the file owner-only.
	_ = os.Chmod(tmpPath, 0o644)
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("replacing %s: %w", dest, err)
	}
	committed = true

	s.logger().Info("segments stitched",
		zap.String("dest", dest),
		zap.Int("segments", len(segments)),
		zap.Duration("took", time.Since(start)),
	)

	s.removeInputs(segments, dest)
	return nil
}

func checkSegments(segments []Segment, dest string) error {
	if len(segments) == 0 {
		return errors.New("no segments to stitch")
	}
	codec := audio.CodecForPath(dest)
	seen := make(map[string]bool, len(segments))
	for i, seg := range segments {
		if i > 0 && seg.Sequence <= segments[i-1].Sequence {
			return fmt.Errorf("segment %d out of order after %d", seg.Sequence, segments[i-1].Sequence)
		}
		p := filepath.Clean(seg.Path)
		if seen[p] {
			return fmt.Errorf("segment %s listed twice", seg.Path)
		}
		seen[p] = true
		if audio.CodecForPath(seg.Path) != codec {
			return fmt.Errorf("segment %s is not %s", seg.Path, codec)
		}
	}
	return nil
}

// timeline probes every segment and places each one at the cumulative
// duration of those before it.
func (s *Stitcher) timeline(ctx context.Context, segments []Segment) ([]audio.Span, error) {
	durations := make([]time.Duration, len(segments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, seg := range segments {
		i, seg := i, seg
		g.Go(func() error {
			d, err := s.Prober.Duration(gctx, seg.Path)
			if err != nil {
				return fmt.Errorf("segment %d: %w", seg.Sequence, err)
			}
			durations[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	spans := make([]audio.Span, len(segments))
	var offset time.Duration
	for i, seg := range segments {
		spans[i] = audio.Span{Path: seg.Path, Offset: offset, Duration: durations[i]}
		offset += durations[i]
	}
	return spans, nil
}

func (s *Stitcher) removeInputs(segments []Segment, dest string) {
	dest = filepath.Clean(dest)
	for _, seg := range segments {
		if filepath.Clean(seg.Path) != dest {
			if err := os.Remove(seg.Path); err != nil && !os.IsNotExist(err) {
				s.logger().Warn("removing segment", zap.String("path", seg.Path), zap.Error(err))
			}
		}
		_ = os.Remove(seg.Path + ".ffmpeg.log")
	}
}

func (s *Stitcher) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
