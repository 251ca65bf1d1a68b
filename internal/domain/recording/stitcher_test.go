package recording

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/devbydaniel/voicerec/internal/audio"
	"github.com/devbydaniel/voicerec/internal/testutil"
)

func writeSegments(t *testing.T, dir string, lengths ...time.Duration) []Segment {
	t.Helper()
	segs := make([]Segment, len(lengths))
	for i, d := range lengths {
		p := filepath.Join(dir, "seg"+string(rune('a'+i))+".wav")
		require.NoError(t, testutil.WriteTone(p, d))
		segs[i] = Segment{Path: p, Sequence: i}
		require.NoError(t, os.WriteFile(p+".ffmpeg.log", []byte("log"), 0o644))
	}
	return segs
}

func newWAVStitcher(t *testing.T) *Stitcher {
	return NewStitcher(audio.WAVProber{}, audio.WAVExporter{}, time.Minute, zaptest.NewLogger(t))
}

func TestStitchConcatenates(t *testing.T) {
	dir := t.TempDir()
	segs := writeSegments(t, dir, time.Second, 500*time.Millisecond, 2*time.Second)
	dest := filepath.Join(dir, "out.wav")

	require.NoError(t, newWAVStitcher(t).Stitch(context.Background(), segs, dest))

	d, err := audio.WAVProber{}.Duration(context.Background(), dest)
	require.NoError(t, err)
	assert.InDelta(t, 3500*time.Millisecond, d, float64(50*time.Millisecond))

	for _, s := range segs {
		assert.NoFileExists(t, s.Path)
		assert.NoFileExists(t, s.Path+".ffmpeg.log")
	}
	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestStitchIntoFirstSegment(t *testing.T) {
	dir := t.TempDir()
	segs := writeSegments(t, dir, time.Second, time.Second)

	require.NoError(t, newWAVStitcher(t).Stitch(context.Background(), segs, segs[0].Path))

	assert.FileExists(t, segs[0].Path)
	assert.NoFileExists(t, segs[1].Path)
	d, err := audio.WAVProber{}.Duration(context.Background(), segs[0].Path)
	require.NoError(t, err)
	assert.InDelta(t, 2*time.Second, d, float64(50*time.Millisecond))
}

func TestStitchSingleSegment(t *testing.T) {
	dir := t.TempDir()
	segs := writeSegments(t, dir, time.Second)
	dest := filepath.Join(dir, "out.wav")

	require.NoError(t, newWAVStitcher(t).Stitch(context.Background(), segs, dest))
	d, err := audio.WAVProber{}.Duration(context.Background(), dest)
	require.NoError(t, err)
	assert.InDelta(t, time.Second, d, float64(50*time.Millisecond))
}

type failingExporter struct{}

func (failingExporter) Export(ctx context.Context, spans []audio.Span, dst string) error {
	_ = os.WriteFile(dst, []byte("partial"), 0o644)
	return errors.New("encoder crashed")
}

type recordingExporter struct {
	spans []audio.Span
}

func (e *recordingExporter) Export(ctx context.Context, spans []audio.Span, dst string) error {
	e.spans = spans
	return audio.WAVExporter{}.Export(ctx, spans, dst)
}

func TestStitchTimelineOffsets(t *testing.T) {
	dir := t.TempDir()
	segs := writeSegments(t, dir, time.Second, 250*time.Millisecond, time.Second)
	exp := &recordingExporter{}
	st := NewStitcher(audio.WAVProber{}, exp, time.Minute, zaptest.NewLogger(t))

	require.NoError(t, st.Stitch(context.Background(), segs, filepath.Join(dir, "out.wav")))
	require.Len(t, exp.spans, 3)
	assert.Equal(t, time.Duration(0), exp.spans[0].Offset)
	assert.Equal(t, time.Second, exp.spans[1].Offset)
	assert.Equal(t, 1250*time.Millisecond, exp.spans[2].Offset)
}

func TestStitchFailureLeavesEverything(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, segs []Segment)
		exp     audio.Exporter
	}{
		{
			name:    "export fails",
			prepare: func(t *testing.T, segs []Segment) {},
			exp:     failingExporter{},
		},
		{
			name: "corrupt segment",
			prepare: func(t *testing.T, segs []Segment) {
				require.NoError(t, os.WriteFile(segs[1].Path, []byte("junk"), 0o644))
			},
			exp: audio.WAVExporter{},
		},
		{
			name: "missing segment",
			prepare: func(t *testing.T, segs []Segment) {
				require.NoError(t, os.Remove(segs[1].Path))
			},
			exp: audio.WAVExporter{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			segs := writeSegments(t, dir, time.Second, time.Second)
			tt.prepare(t, segs)

			dest := filepath.Join(dir, "out.wav")
			require.NoError(t, os.WriteFile(dest, []byte("previous"), 0o644))

			before := snapshotDir(t, dir)
			st := NewStitcher(audio.WAVProber{}, tt.exp, time.Minute, zaptest.NewLogger(t))
			assert.Error(t, st.Stitch(context.Background(), segs, dest))
			assert.Equal(t, before, snapshotDir(t, dir))
		})
	}
}

func TestStitchFailureDoesNotCreateDestination(t *testing.T) {
	dir := t.TempDir()
	segs := writeSegments(t, dir, time.Second, time.Second)
	dest := filepath.Join(dir, "out.wav")

	st := NewStitcher(audio.WAVProber{}, failingExporter{}, time.Minute, zaptest.NewLogger(t))
	require.Error(t, st.Stitch(context.Background(), segs, dest))
	assert.NoFileExists(t, dest)
}

func TestStitchFormatMismatch(t *testing.T) {
	dir := t.TempDir()
	segs := writeSegments(t, dir, time.Second)

	// A stereo file cannot be appended to a mono one.
	other := filepath.Join(dir, "stereo.wav")
	require.NoError(t, testutil.WriteToneChannels(other, time.Second, 2))
	segs = append(segs, Segment{Path: other, Sequence: 1})

	err := newWAVStitcher(t).Stitch(context.Background(), segs, filepath.Join(dir, "out.wav"))
	assert.ErrorContains(t, err, "does not match")
	assert.FileExists(t, segs[0].Path)
	assert.FileExists(t, other)
}

func TestStitchRejectsBadInput(t *testing.T) {
	st := newWAVStitcher(t)
	ctx := context.Background()

	assert.Error(t, st.Stitch(ctx, nil, "out.wav"))
	assert.Error(t, st.Stitch(ctx, []Segment{{Path: "a.wav", Sequence: 1}, {Path: "b.wav", Sequence: 0}}, "out.wav"))
	assert.Error(t, st.Stitch(ctx, []Segment{{Path: "a.wav", Sequence: 0}, {Path: "a.wav", Sequence: 1}}, "out.wav"))
	assert.Error(t, st.Stitch(ctx, []Segment{{Path: "a.aac", Sequence: 0}}, "out.wav"))
}

func snapshotDir(t *testing.T, dir string) map[string]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		out[e.Name()] = string(b)
	}
	return out
}
