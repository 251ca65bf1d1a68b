package recording

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devbydaniel/voicerec/internal/audio"
	"github.com/devbydaniel/voicerec/internal/interrupt"
)

// Metrics observes controller activity. A nil Metrics is allowed.
type Metrics interface {
	SessionStarted()
	SessionStopped(outcome string)
	Interruption(kind string)
	SegmentOpened()
	StitchDuration(d time.Duration)
}

// ControllerConfig holds the collaborators of a Controller.
type ControllerConfig struct {
	Device        audio.Device
	Stitcher      *Stitcher
	Prober        audio.Prober
	RecordingsDir string
	Defaults      audio.Config
	Logger        *zap.Logger
	Metrics       Metrics
	Notify        Notifier
}

// Controller runs at most one recording session at a time. Lifecycle calls
// and interruption events are serialized on one mutex.
type Controller struct {
	device        audio.Device
	stitcher      *Stitcher
	prober        audio.Prober
	recordingsDir string
	defaults      audio.Config
	logger        *zap.Logger
	metrics       Metrics
	notify        Notifier
	validate      *validator.Validate
	now           func() time.Time

	mu      sync.Mutex
	session *session
}

type session struct {
	id            string
	status        Status
	base          string
	segments      []Segment
	prior         audio.Config
	config        audio.Config
	capture       audio.Capture
	writing       bool // capture has an unfinished file
	interruptions int
	startedAt     time.Time
}

func NewController(cfg ControllerConfig) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	notify := cfg.Notify
	if notify == nil {
		notify = func(Notification) {}
	}
	return &Controller{
		device:        cfg.Device,
		stitcher:      cfg.Stitcher,
		prober:        cfg.Prober,
		recordingsDir: cfg.RecordingsDir,
		defaults:      cfg.Defaults,
		logger:        logger,
		metrics:       cfg.Metrics,
		notify:        notify,
		validate:      validator.New(),
		now:           time.Now,
	}
}

// Start claims the device and begins capturing segment 0. It fails, leaving
// no session behind, if a session is already open or the device cannot be
// claimed.
func (c *Controller) Start(ctx context.Context, opts Options) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return nil, &StateError{Op: "start", Status: c.session.status}
	}
	if err := c.validate.StructCtx(ctx, opts); err != nil {
		return nil, &OptionsError{Err: err}
	}
	cfg, err := opts.DeviceConfig(c.defaults)
	if err != nil {
		return nil, &OptionsError{Err: err}
	}

	dir := opts.Directory.Path(c.recordingsDir, opts.SubDirectory)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &DeviceError{Op: "create output directory", Err: err}
	}
	started := c.now()
	base := outputPath(dir, started, cfg.Codec)

	prior := c.device.Current()
	capture, err := c.device.Claim(cfg)
	if err != nil {
		return nil, &DeviceError{Op: "claim", Err: err}
	}
	if err := capture.Begin(base); err != nil {
		if rerr := c.device.Release(capture, prior); rerr != nil {
			c.logger.Warn("releasing device after failed start", zap.Error(rerr))
		}
		return nil, &DeviceError{Op: "begin", Err: err}
	}

	c.session = &session{
		id:        uuid.NewString(),
		status:    StatusRecording,
		base:      base,
		segments:  []Segment{{Path: base, Sequence: 0}},
		prior:     prior,
		config:    cfg,
		capture:   capture,
		writing:   true,
		startedAt: started,
	}
	if c.metrics != nil {
		c.metrics.SessionStarted()
		c.metrics.SegmentOpened()
	}
	c.logger.Info("recording started",
		zap.String("session", c.session.id),
		zap.String("path", base),
		zap.Stringer("config", cfg),
	)
	return c.session.snapshot(), nil
}

// Pause pauses the current segment. Only valid while RECORDING.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil || s.status != StatusRecording {
		return &StateError{Op: "pause", Status: c.statusLocked()}
	}
	if err := s.capture.Pause(); err != nil {
		return &DeviceError{Op: "pause", Err: err}
	}
	s.status = StatusPaused
	c.logger.Debug("recording paused", zap.String("session", s.id))
	return nil
}

// Resume continues a PAUSED session on the same segment, or an INTERRUPTED
// one on a new segment.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil {
		return &StateError{Op: "resume", Status: StatusNone}
	}

	switch s.status {
	case StatusPaused:
		if err := s.capture.Resume(); err != nil {
			return &DeviceError{Op: "resume", Err: err}
		}
		s.status = StatusRecording
		c.logger.Debug("recording resumed", zap.String("session", s.id))
		return nil

	case StatusInterrupted:
		return c.resumeInterrupted(s)
	}
	return &StateError{Op: "resume", Status: s.status}
}

func (c *Controller) resumeInterrupted(s *session) error {
	if s.writing {
		// The file is closed even when Finish reports a problem, so a
		// retried resume must not finish it again.
		s.writing = false
		if err := s.capture.Finish(); err != nil {
			c.logger.Warn("finishing interrupted segment",
				zap.String("session", s.id),
				zap.String("path", s.segments[len(s.segments)-1].Path),
				zap.Error(err),
			)
		}
	}
	if err := s.capture.Reactivate(); err != nil {
		return &DeviceError{Op: "reactivate", Err: err}
	}

	seg := Segment{Path: segmentPath(s.base, len(s.segments)), Sequence: len(s.segments)}
	if err := s.capture.Begin(seg.Path); err != nil {
		return &DeviceError{Op: "begin", Err: err}
	}
	s.segments = append(s.segments, seg)
	s.writing = true
	s.status = StatusRecording
	if c.metrics != nil {
		c.metrics.SegmentOpened()
	}
	c.logger.Info("recording resumed on new segment",
		zap.String("session", s.id),
		zap.Int("sequence", seg.Sequence),
		zap.String("path", seg.Path),
	)
	return nil
}

// Stop ends the session from any non-NONE state. The device is always
// released and its prior configuration restored, even when stitching fails.
//
// On stitch failure or empty output the returned Result still describes the
// session, alongside the error.
func (c *Controller) Stop(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil {
		return nil, &StateError{Op: "stop", Status: StatusNone}
	}
	c.session = nil

	if s.writing {
		s.writing = false
		if err := s.capture.Finish(); err != nil {
			c.logger.Warn("finishing last segment", zap.String("session", s.id), zap.Error(err))
		}
	}

	res := &Result{
		SessionID:     s.id,
		Path:          s.base,
		MimeType:      s.config.Codec.MimeType(),
		Codec:         s.config.Codec,
		Segments:      append([]Segment(nil), s.segments...),
		Interruptions: s.interruptions,
		StartedAt:     s.startedAt,
	}

	err := c.finalize(context.WithoutCancel(ctx), s, res)

	if rerr := c.device.Release(s.capture, s.prior); rerr != nil {
		c.logger.Warn("releasing device", zap.String("session", s.id), zap.Error(rerr))
	}
	res.StoppedAt = c.now()
	if c.metrics != nil {
		c.metrics.SessionStopped(string(res.Outcome))
	}

	if err != nil {
		c.logger.Error("recording stopped with error",
			zap.String("session", s.id),
			zap.String("outcome", string(res.Outcome)),
			zap.Error(err),
		)
		return res, err
	}
	c.logger.Info("recording stopped",
		zap.String("session", s.id),
		zap.String("path", res.Path),
		zap.Duration("duration", res.Duration),
		zap.Int("segments", len(res.Segments)),
	)
	return res, nil
}

// finalize stitches when there is more than one segment and measures the
// final file.
func (c *Controller) finalize(ctx context.Context, s *session, res *Result) error {
	if len(s.segments) > 1 {
		start := c.now()
		if err := c.stitcher.Stitch(ctx, s.segments, s.base); err != nil {
			res.Outcome = OutcomeStitchFailed
			return &StitchError{SessionID: s.id, Destination: s.base, Segments: res.Segments, Err: err}
		}
		if c.metrics != nil {
			c.metrics.StitchDuration(c.now().Sub(start))
		}
	}

	d, err := c.prober.Duration(ctx, s.base)
	if err != nil {
		res.Outcome = OutcomeStitchFailed
		return &StitchError{
			SessionID:   s.id,
			Destination: s.base,
			Segments:    []Segment{{Path: s.base}},
			Err:         fmt.Errorf("reading output duration: %w", err),
		}
	}
	res.Duration = d
	if d <= 0 {
		res.Outcome = OutcomeEmpty
		return fmt.Errorf("%s: %w", s.base, ErrEmptyOutput)
	}
	res.Outcome = OutcomeComplete
	return nil
}

// Status returns the current state; NONE when no session is open.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Controller) statusLocked() Status {
	if c.session == nil {
		return StatusNone
	}
	return c.session.status
}

// Snapshot copies the open session, or returns a NONE snapshot.
func (c *Controller) Snapshot() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return &Snapshot{Status: StatusNone}
	}
	return c.session.snapshot()
}

// Run consumes interruption events until ctx is done or src is closed.
func (c *Controller) Run(ctx context.Context, src interrupt.Source) error {
	events := src.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case k, ok := <-events:
			if !ok {
				return nil
			}
			c.HandleInterruption(k)
		}
	}
}

// HandleInterruption applies one interruption event. Began outside RECORDING
// and Ended outside INTERRUPTED are ignored.
func (c *Controller) HandleInterruption(k interrupt.Kind) {
	n, ok := c.applyInterruption(k)
	if !ok {
		return
	}
	if c.metrics != nil {
		c.metrics.Interruption(k.String())
	}
	c.notify(n)
}

func (c *Controller) applyInterruption(k interrupt.Kind) (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil {
		c.logger.Debug("interruption without session ignored", zap.Stringer("kind", k))
		return Notification{}, false
	}

	switch {
	case k == interrupt.Began && s.status == StatusRecording:
		if err := s.capture.Pause(); err != nil {
			// The platform has taken the device either way.
			c.logger.Warn("pausing on interruption", zap.String("session", s.id), zap.Error(err))
		}
		s.status = StatusInterrupted
		s.interruptions++
	case k == interrupt.Ended && s.status == StatusInterrupted:
	default:
		c.logger.Debug("interruption ignored",
			zap.String("session", s.id),
			zap.Stringer("kind", k),
			zap.Stringer("status", s.status),
		)
		return Notification{}, false
	}

	c.logger.Info("interruption", zap.String("session", s.id), zap.Stringer("kind", k))
	return Notification{
		SessionID: s.id,
		Kind:      k,
		Type:      k.String(),
		Status:    s.status,
		At:        c.now(),
	}, true
}

func (s *session) snapshot() *Snapshot {
	return &Snapshot{
		SessionID:     s.id,
		Status:        s.status,
		Path:          s.base,
		Segments:      append([]Segment(nil), s.segments...),
		Interruptions: s.interruptions,
		Config:        s.config,
		StartedAt:     s.startedAt,
	}
}

// outputPath picks recording-<unix-ms>.<ext> in dir, adding a short random
// suffix if that name is taken.
func outputPath(dir string, t time.Time, codec audio.Codec) string {
	name := fmt.Sprintf("recording-%d", t.UnixMilli())
	p := filepath.Join(dir, name+codec.Extension())
	if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
		return p
	}
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return filepath.Join(dir, name+"-"+suffix+codec.Extension())
}

// segmentPath names segment n next to base. Segment 0 is base itself.
func segmentPath(base string, n int) string {
	if n == 0 {
		return base
	}
	ext := filepath.Ext(base)
	return fmt.Sprintf("%s.seg%03d%s", strings.TrimSuffix(base, ext), n, ext)
}
