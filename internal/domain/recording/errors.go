package recording

import (
	"errors"
	"fmt"

	"github.com/devbydaniel/voicerec/internal/audio"
)

var (
	// ErrEmptyOutput means the final file decoded to zero length.
	ErrEmptyOutput = errors.New("recording is empty")
	// ErrPermissionDenied is returned by devices the user has not granted access to.
	ErrPermissionDenied = errors.New("microphone permission denied")
	ErrDeviceBusy       = audio.ErrDeviceBusy
)

// StateError is a lifecycle call issued from a state that does not allow it.
type StateError struct {
	Op     string // "start", "pause", "resume", "stop"
	Status Status
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Op, e.Status)
}

// DeviceError wraps a failure to claim the device or to begin, pause or
// resume capture.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device error: %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// StitchError means the segments could not be merged. They are still on disk.
type StitchError struct {
	SessionID   string
	Destination string
	Segments    []Segment
	Err         error
}

func (e *StitchError) Error() string {
	return fmt.Sprintf("stitch error [%s] %d segments -> %s: %v", e.SessionID, len(e.Segments), e.Destination, e.Err)
}

func (e *StitchError) Unwrap() error {
	return e.Err
}

// OptionsError rejects unrecognized recording options.
type OptionsError struct {
	Err error
}

func (e *OptionsError) Error() string {
	return fmt.Sprintf("invalid options: %v", e.Err)
}

func (e *OptionsError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies errors for the outer surfaces.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindPermissionDenied
	KindDeviceUnavailable
	KindInvalidState
	KindStitchFailure
	KindEmptyOutput
	KindInvalidOptions
)

func (k ErrorKind) String() string {
	switch k {
	case KindPermissionDenied:
		return "PermissionDenied"
	case KindDeviceUnavailable:
		return "DeviceUnavailable"
	case KindInvalidState:
		return "InvalidStateTransition"
	case KindStitchFailure:
		return "StitchFailure"
	case KindEmptyOutput:
		return "EmptyOutput"
	case KindInvalidOptions:
		return "InvalidOptions"
	}
	return "Unknown"
}

// KindOf classifies err. Permission problems win over the device error
// wrapping them.
func KindOf(err error) ErrorKind {
	var (
		stateErr  *StateError
		deviceErr *DeviceError
		stitchErr *StitchError
		optsErr   *OptionsError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrPermissionDenied):
		return KindPermissionDenied
	case errors.As(err, &stateErr):
		return KindInvalidState
	case errors.As(err, &optsErr):
		return KindInvalidOptions
	case errors.As(err, &stitchErr):
		return KindStitchFailure
	case errors.Is(err, ErrEmptyOutput):
		return KindEmptyOutput
	case errors.As(err, &deviceErr), errors.Is(err, ErrDeviceBusy):
		return KindDeviceUnavailable
	}
	return KindUnknown
}

// Code returns the stable error code reported to API and CLI callers.
func Code(err error) string {
	switch KindOf(err) {
	case KindPermissionDenied:
		return "MISSING_PERMISSION"
	case KindInvalidState:
		var se *StateError
		if errors.As(err, &se) && se.Op == "start" {
			return "ALREADY_RECORDING"
		}
		return "RECORDING_HAS_NOT_STARTED"
	case KindDeviceUnavailable:
		return "CANNOT_RECORD_ON_THIS_DEVICE"
	case KindStitchFailure:
		return "FAILED_TO_FETCH_RECORDING"
	case KindEmptyOutput:
		return "EMPTY_RECORDING"
	case KindInvalidOptions:
		return "INVALID_OPTIONS"
	}
	return "UNKNOWN_ERROR"
}
