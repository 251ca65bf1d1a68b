package usecases

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/devbydaniel/voicerec/internal/audio"
	"github.com/devbydaniel/voicerec/internal/catalog"
	"github.com/devbydaniel/voicerec/internal/domain/recording"
	"github.com/devbydaniel/voicerec/internal/interrupt"
	"github.com/devbydaniel/voicerec/internal/testutil"
)

type fixture struct {
	ctrl      *recording.Controller
	stitcher  *recording.Stitcher
	catalog   *catalog.Client
	manifests *recording.ManifestStore
	queue     *interrupt.Queue

	start   *StartRecording
	pause   *PauseRecording
	resume  *ResumeRecording
	stop    *StopRecording
	status  *GetStatus
	list    *ListRecordings
	recover *RecoverRecording
	report  *ReportInterruption
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	dir := t.TempDir()

	cat, err := catalog.Open(filepath.Join(dir, "state", "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cat.Close() })

	f := &fixture{
		stitcher:  recording.NewStitcher(audio.WAVProber{}, audio.WAVExporter{}, time.Minute, logger),
		catalog:   cat,
		manifests: &recording.ManifestStore{Dir: filepath.Join(dir, "state", "manifests")},
		queue:     interrupt.NewQueue(4),
	}
	f.ctrl = recording.NewController(recording.ControllerConfig{
		Device:        testutil.NewFakeDevice(audio.DefaultConfig()),
		Stitcher:      f.stitcher,
		Prober:        audio.WAVProber{},
		RecordingsDir: filepath.Join(dir, "rec"),
		Defaults:      audio.Config{Codec: audio.CodecWAV, SampleRate: testutil.SampleRate, Channels: 1, BitDepth: testutil.BitDepth},
		Logger:        logger,
	})

	f.start = &StartRecording{Controller: f.ctrl}
	f.pause = &PauseRecording{Controller: f.ctrl}
	f.resume = &ResumeRecording{Controller: f.ctrl}
	f.status = &GetStatus{Controller: f.ctrl}
	f.stop = &StopRecording{Controller: f.ctrl, Catalog: cat, Manifests: f.manifests, Logger: logger}
	f.list = &ListRecordings{Catalog: cat}
	f.recover = &RecoverRecording{Stitcher: f.stitcher, Prober: audio.WAVProber{}, Catalog: cat, Manifests: f.manifests, Logger: logger}
	f.report = &ReportInterruption{Queue: f.queue}
	return f
}

func TestRecordingLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.start.Execute(ctx, recording.Options{})
	require.NoError(t, err)
	assert.Equal(t, recording.StatusRecording, f.status.Execute().Status)

	ok, err := f.pause.Execute()
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.pause.Execute()
	assert.Error(t, err)
	assert.False(t, ok)

	ok, err = f.resume.Execute()
	require.NoError(t, err)
	assert.True(t, ok)

	res, err := f.stop.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), res.DurationMs())

	recs, err := f.list.Execute(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, res.SessionID, recs[0].SessionID)
	assert.Equal(t, "complete", recs[0].Outcome)
	assert.Equal(t, int64(1000), recs[0].DurationMs)
}

func TestStopWithoutSession(t *testing.T) {
	f := newFixture(t)

	res, err := f.stop.Execute(context.Background())
	assert.Nil(t, res)
	assert.Equal(t, "RECORDING_HAS_NOT_STARTED", recording.Code(err))

	recs, err := f.list.Execute(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestFailedStitchCanBeRecovered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.start.Execute(ctx, recording.Options{})
	require.NoError(t, err)
	f.ctrl.HandleInterruption(interrupt.Began)
	_, err = f.resume.Execute()
	require.NoError(t, err)

	segs := f.status.Execute().Segments
	require.Len(t, segs, 2)
	require.NoError(t, os.WriteFile(segs[0].Path, []byte("broken"), 0o644))

	res, err := f.stop.Execute(ctx)
	require.Error(t, err)
	assert.Equal(t, recording.KindStitchFailure, recording.KindOf(err))

	rec, err := f.catalog.Get(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "stitch_failed", rec.Outcome)
	assert.Equal(t, 2, rec.Segments)

	pending, err := f.recover.Pending()
	require.NoError(t, err)
	assert.Equal(t, []string{res.SessionID}, pending)

	// Recovery keeps failing while the segment is broken.
	_, err = f.recover.Execute(ctx, res.SessionID)
	require.Error(t, err)
	assert.FileExists(t, segs[1].Path)

	require.NoError(t, testutil.WriteTone(segs[0].Path, time.Second))
	out, err := f.recover.Execute(ctx, res.SessionID)
	require.NoError(t, err)
	assert.InDelta(t, 2*time.Second, out.Duration, float64(50*time.Millisecond))
	assert.NoFileExists(t, segs[1].Path)

	rec, err = f.catalog.Get(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "complete", rec.Outcome)

	_, err = f.recover.Execute(ctx, res.SessionID)
	assert.ErrorIs(t, err, recording.ErrNoManifest)
}

func TestReportInterruption(t *testing.T) {
	f := newFixture(t)

	ctx := context.Background()

	require.NoError(t, f.report.Execute(ctx, "began"))
	require.NoError(t, f.report.Execute(ctx, "began"))
	assert.Error(t, f.report.Execute(ctx, "sideways"))

	assert.Equal(t, interrupt.Began, <-f.queue.Events())
	assert.Equal(t, interrupt.Began, <-f.queue.Events())
}
