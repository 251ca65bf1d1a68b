package recording

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devbydaniel/voicerec/internal/audio"
)

func TestKindOfAndCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ErrorKind
		code string
	}{
		{"nil", nil, KindUnknown, "UNKNOWN_ERROR"},
		{"plain", errors.New("boom"), KindUnknown, "UNKNOWN_ERROR"},
		{"start", &StateError{Op: "start", Status: StatusRecording}, KindInvalidState, "ALREADY_RECORDING"},
		{"stop", &StateError{Op: "stop", Status: StatusNone}, KindInvalidState, "RECORDING_HAS_NOT_STARTED"},
		{"device", &DeviceError{Op: "begin", Err: errors.New("x")}, KindDeviceUnavailable, "CANNOT_RECORD_ON_THIS_DEVICE"},
		{"busy", fmt.Errorf("claim: %w", audio.ErrDeviceBusy), KindDeviceUnavailable, "CANNOT_RECORD_ON_THIS_DEVICE"},
		{"permission", &DeviceError{Op: "claim", Err: ErrPermissionDenied}, KindPermissionDenied, "MISSING_PERMISSION"},
		{"stitch", &StitchError{Err: errors.New("x")}, KindStitchFailure, "FAILED_TO_FETCH_RECORDING"},
		{"empty", fmt.Errorf("out.aac: %w", ErrEmptyOutput), KindEmptyOutput, "EMPTY_RECORDING"},
		{"options", &OptionsError{Err: errors.New("x")}, KindInvalidOptions, "INVALID_OPTIONS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.Equal(t, tt.code, Code(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "cannot pause while PAUSED", (&StateError{Op: "pause", Status: StatusPaused}).Error())

	inner := errors.New("no such device")
	err := &DeviceError{Op: "claim", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "claim")
}
