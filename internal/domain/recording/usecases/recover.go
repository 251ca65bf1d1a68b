package usecases

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/devbydaniel/voicerec/internal/audio"
	"github.com/devbydaniel/voicerec/internal/catalog"
	"github.com/devbydaniel/voicerec/internal/domain/recording"
)

// RecoverRecording retries the stitch of a session whose stop failed, using
// its manifest. Segments are deleted only if the stitch succeeds.
type RecoverRecording struct {
	Stitcher  *recording.Stitcher
	Prober    audio.Prober
	Catalog   *catalog.Client
	Manifests *recording.ManifestStore
	Logger    *zap.Logger
}

// Pending lists the sessions that can be recovered.
func (r *RecoverRecording) Pending() ([]string, error) {
	return r.Manifests.List()
}

func (r *RecoverRecording) Execute(ctx context.Context, sessionID string) (*recording.Result, error) {
	man, err := r.Manifests.Load(sessionID)
	if err != nil {
		return nil, err
	}

	if len(man.Segments) == 0 {
		return nil, fmt.Errorf("manifest %s lists no segments", sessionID)
	}
	for _, seg := range man.Segments {
		if _, err := os.Stat(seg.Path); err != nil {
			return nil, fmt.Errorf("segment %d: %w", seg.Sequence, err)
		}
	}

	if len(man.Segments) > 1 || man.Segments[0].Path != man.Destination {
		if err := r.Stitcher.Stitch(ctx, man.Segments, man.Destination); err != nil {
			return nil, &recording.StitchError{
				SessionID:   man.SessionID,
				Destination: man.Destination,
				Segments:    man.Segments,
				Err:         err,
			}
		}
	}

	d, err := r.Prober.Duration(ctx, man.Destination)
	if err != nil {
		return nil, fmt.Errorf("reading output duration: %w", err)
	}

	res := &recording.Result{
		SessionID:     man.SessionID,
		Path:          man.Destination,
		Duration:      d,
		MimeType:      man.Codec.MimeType(),
		Codec:         man.Codec,
		Segments:      man.Segments,
		Interruptions: man.Interruptions,
		StartedAt:     man.StartedAt,
		StoppedAt:     time.Now(),
		Outcome:       recording.OutcomeComplete,
	}
	var resErr error
	if d <= 0 {
		res.Outcome = recording.OutcomeEmpty
		resErr = fmt.Errorf("%s: %w", man.Destination, recording.ErrEmptyOutput)
	}

	if r.Catalog != nil {
		if cerr := r.Catalog.Save(ctx, toCatalog(res, resErr)); cerr != nil {
			r.Logger.Error("saving to catalog", zap.String("session", sessionID), zap.Error(cerr))
		}
	}
	if err := r.Manifests.Remove(sessionID); err != nil {
		r.Logger.Warn("removing manifest", zap.String("session", sessionID), zap.Error(err))
	}
	r.Logger.Info("recording recovered", zap.String("session", sessionID), zap.String("path", res.Path))

	return res, resErr
}
