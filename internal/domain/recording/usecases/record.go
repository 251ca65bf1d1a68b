package usecases

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/devbydaniel/voicerec/internal/catalog"
	"github.com/devbydaniel/voicerec/internal/domain/recording"
)

// StartRecording opens a new session.
type StartRecording struct {
	Controller *recording.Controller
}

func (s *StartRecording) Execute(ctx context.Context, opts recording.Options) (*recording.Snapshot, error) {
	return s.Controller.Start(ctx, opts)
}

// PauseRecording pauses the open session. It reports false, with the reason,
// when the session is not RECORDING.
type PauseRecording struct {
	Controller *recording.Controller
}

func (p *PauseRecording) Execute() (bool, error) {
	if err := p.Controller.Pause(); err != nil {
		return false, err
	}
	return true, nil
}

// ResumeRecording resumes a PAUSED or INTERRUPTED session.
type ResumeRecording struct {
	Controller *recording.Controller
}

func (r *ResumeRecording) Execute() (bool, error) {
	if err := r.Controller.Resume(); err != nil {
		return false, err
	}
	return true, nil
}

// GetStatus reports the controller state.
type GetStatus struct {
	Controller *recording.Controller
}

func (g *GetStatus) Execute() *recording.Snapshot {
	return g.Controller.Snapshot()
}

// StopRecording stops the session and records the outcome in the catalog.
// When stitching fails it also writes a recovery manifest.
type StopRecording struct {
	Controller *recording.Controller
	Catalog    *catalog.Client
	Manifests  *recording.ManifestStore
	Logger     *zap.Logger
}

func (s *StopRecording) Execute(ctx context.Context) (*recording.Result, error) {
	res, err := s.Controller.Stop(ctx)
	if res == nil {
		return nil, err
	}

	var se *recording.StitchError
	if errors.As(err, &se) && s.Manifests != nil {
		if merr := s.Manifests.Save(recording.ManifestFromError(res, se)); merr != nil {
			s.Logger.Error("writing recovery manifest", zap.String("session", res.SessionID), zap.Error(merr))
		}
	}

	if s.Catalog != nil {
		if cerr := s.Catalog.Save(ctx, toCatalog(res, err)); cerr != nil {
			// The recording itself is fine; history is best effort.
			s.Logger.Error("saving to catalog", zap.String("session", res.SessionID), zap.Error(cerr))
		}
	}

	return res, err
}

func toCatalog(res *recording.Result, err error) *catalog.Recording {
	rec := &catalog.Recording{
		SessionID:     res.SessionID,
		Path:          res.Path,
		DurationMs:    res.DurationMs(),
		Codec:         string(res.Codec),
		MimeType:      res.MimeType,
		Segments:      len(res.Segments),
		Interruptions: res.Interruptions,
		StartedAt:     res.StartedAt,
		StoppedAt:     res.StoppedAt,
		Outcome:       string(res.Outcome),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	return rec
}

// ListRecordings reads the catalog.
type ListRecordings struct {
	Catalog *catalog.Client
}

type ListOptions struct {
	Outcome string
	Limit   int
}

func (l *ListRecordings) Execute(ctx context.Context, opts ListOptions) ([]catalog.Recording, error) {
	recs, err := l.Catalog.List(ctx, opts.Outcome, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("listing recordings: %w", err)
	}
	return recs, nil
}
