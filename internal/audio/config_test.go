package audio

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCodec(t *testing.T) {
	tests := []struct {
		in      string
		want    Codec
		wantErr bool
	}{
		{"", CodecAAC, false},
		{"AAC", CodecAAC, false},
		{"m4a", CodecAAC, false},
		{"wav", CodecWAV, false},
		{" pcm ", CodecWAV, false},
		{"flac", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCodec(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCodecFileTypes(t *testing.T) {
	assert.Equal(t, ".aac", CodecAAC.Extension())
	assert.Equal(t, "audio/aac", CodecAAC.MimeType())
	assert.Equal(t, ".wav", CodecWAV.Extension())
	assert.Equal(t, "audio/wav", CodecWAV.MimeType())

	assert.Equal(t, CodecWAV, CodecForPath("/tmp/Take.WAV"))
	assert.Equal(t, CodecAAC, CodecForPath("/tmp/take.aac"))
}

func TestCaptureArgs(t *testing.T) {
	r := NewRecorder("", "pulse", "default")
	assert.Equal(t, "ffmpeg", r.FFmpegPath)

	args := r.captureArgs(DefaultConfig(), "/tmp/out.aac")
	assert.Equal(t, []string{
		"-hide_banner", "-nostats", "-loglevel", "warning",
		"-f", "pulse",
		"-i", "default",
		"-ac", "1", "-ar", "44100",
		"-c:a", "aac", "-b:a", "96000", "-f", "adts",
		"-y", "/tmp/out.aac",
	}, args)

	cfg := Config{Codec: CodecWAV, SampleRate: 48000, Channels: 2, BitDepth: 24, Input: "hw:1"}
	args = r.captureArgs(cfg, "/tmp/out.wav")
	assert.Contains(t, args, "hw:1")
	assert.Contains(t, args, "pcm_s24le")
	assert.NotContains(t, args, "-b:a")
}

func TestParseSeconds(t *testing.T) {
	d, err := parseSeconds("2.500000\n")
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, d)

	_, err = parseSeconds("N/A")
	assert.Error(t, err)
	_, err = parseSeconds("abc")
	assert.Error(t, err)
}

func TestConcatList(t *testing.T) {
	list := concatList([]Span{
		{Path: "/rec/a.aac", Duration: time.Second},
		{Path: "/rec/it's.aac", Offset: time.Second},
	})
	assert.Equal(t, "ffconcat version 1.0\n"+
		"file '/rec/a.aac'\n"+
		"duration 1.000000\n"+
		`file '/rec/it'\''s.aac'`+"\n", list)
}

func TestDeviceManagerExclusiveClaim(t *testing.T) {
	initial := DefaultConfig()
	initial.Input = "default"
	dm := NewDeviceManager(NewRecorder("true", "", "default"), initial, nil)
	if err := dm.recorder.CheckFFmpeg(); err != nil {
		t.Skip("no 'true' binary on PATH")
	}

	want := Config{Codec: CodecWAV, SampleRate: 16000, Channels: 1, BitDepth: 16}
	c, err := dm.Claim(want)
	require.NoError(t, err)
	assert.Equal(t, "default", dm.Current().Input)

	_, err = dm.Claim(want)
	assert.ErrorIs(t, err, ErrDeviceBusy)

	require.NoError(t, dm.Release(c, initial))
	assert.Equal(t, initial, dm.Current())
	assert.Error(t, c.Begin("/tmp/never.wav"))
}

func TestBeginFailureNamesClaimedInput(t *testing.T) {
	r := NewRecorder("false", "", "default")
	if err := r.CheckFFmpeg(); err != nil {
		t.Skip("no 'false' binary on PATH")
	}
	dm := NewDeviceManager(r, Config{Input: "default"}, nil)

	c, err := dm.Claim(Config{Codec: CodecWAV, SampleRate: 16000, Channels: 1, BitDepth: 16, Input: "hw:2"})
	require.NoError(t, err)
	defer func() { _ = dm.Release(c, Config{Input: "default"}) }()

	err = c.Begin(filepath.Join(t.TempDir(), "seg.wav"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"hw:2"`)
	assert.NotContains(t, err.Error(), `"default"`)
}
