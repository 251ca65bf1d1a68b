package usecases

import (
	"context"

	"github.com/devbydaniel/voicerec/internal/interrupt"
)

// ReportInterruption feeds an externally detected interruption to the
// controller's event queue. Events that do not fit the session state are
// ignored by the controller, not here.
type ReportInterruption struct {
	Queue *interrupt.Queue
}

func (r *ReportInterruption) Execute(ctx context.Context, kind string) error {
	k, err := interrupt.ParseKind(kind)
	if err != nil {
		return err
	}
	return r.Queue.Push(ctx, k)
}
