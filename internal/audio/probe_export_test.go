package audio_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devbydaniel/voicerec/internal/audio"
	"github.com/devbydaniel/voicerec/internal/testutil"
)

func tones(t *testing.T, dir string, lengths ...time.Duration) []audio.Span {
	t.Helper()
	var spans []audio.Span
	var offset time.Duration
	for i, d := range lengths {
		p := filepath.Join(dir, string(rune('a'+i))+".wav")
		require.NoError(t, testutil.WriteTone(p, d))
		spans = append(spans, audio.Span{Path: p, Offset: offset, Duration: d})
		offset += d
	}
	return spans
}

func TestWAVProber(t *testing.T) {
	dir := t.TempDir()
	spans := tones(t, dir, 1500*time.Millisecond)

	d, err := audio.WAVProber{}.Duration(context.Background(), spans[0].Path)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)

	bad := filepath.Join(dir, "bad.wav")
	require.NoError(t, os.WriteFile(bad, []byte("RIFFnope"), 0o644))
	_, err = audio.WAVProber{}.Duration(context.Background(), bad)
	assert.Error(t, err)

	_, err = audio.WAVProber{}.Duration(context.Background(), filepath.Join(dir, "missing.wav"))
	assert.Error(t, err)
}

func TestWAVExporter(t *testing.T) {
	dir := t.TempDir()
	spans := tones(t, dir, time.Second, time.Second, 500*time.Millisecond)
	dst := filepath.Join(dir, "out.wav")

	require.NoError(t, audio.WAVExporter{}.Export(context.Background(), spans, dst))

	d, err := audio.WAVProber{}.Duration(context.Background(), dst)
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, d)
}

func TestWAVExporterSamplesAreCopied(t *testing.T) {
	dir := t.TempDir()
	spans := tones(t, dir, time.Second)
	dst := filepath.Join(dir, "out.wav")

	require.NoError(t, audio.WAVExporter{}.Export(context.Background(), spans, dst))

	want, err := os.ReadFile(spans[0].Path)
	require.NoError(t, err)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWAVExporterCancelled(t *testing.T) {
	dir := t.TempDir()
	spans := tones(t, dir, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, audio.WAVExporter{}.Export(ctx, spans, filepath.Join(dir, "out.wav")), context.Canceled)
}

func TestCodecProberRoutesByExtension(t *testing.T) {
	p := audio.NewProber("/nonexistent/ffprobe")
	dir := t.TempDir()
	spans := tones(t, dir, time.Second)

	d, err := p.Duration(context.Background(), spans[0].Path)
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)

	_, err = p.Duration(context.Background(), filepath.Join(dir, "x.aac"))
	assert.Error(t, err)
}

func TestFFmpegExporter(t *testing.T) {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not installed")
	}
	ffprobe, err := exec.LookPath("ffprobe")
	if err != nil {
		t.Skip("ffprobe not installed")
	}

	dir := t.TempDir()
	spans := tones(t, dir, time.Second, time.Second)
	dst := filepath.Join(dir, "joined.wav")

	exp := audio.FFmpegExporter{FFmpegPath: ffmpeg}
	require.NoError(t, exp.Export(context.Background(), spans, dst))

	d, err := audio.FFprobeProber{Path: ffprobe}.Duration(context.Background(), dst)
	require.NoError(t, err)
	assert.InDelta(t, 2*time.Second, d, float64(50*time.Millisecond))
	assert.NoFileExists(t, dst+".concat.txt")
}
