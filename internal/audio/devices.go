package audio

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrDeviceBusy is returned by Claim while another session holds the device.
var ErrDeviceBusy = errors.New("capture device is already claimed")

// Device is the platform microphone. Only one Capture may hold it at a time.
type Device interface {
	// Current reports the configuration the device has right now, so a
	// session can restore it when it lets go.
	Current() Config
	Claim(cfg Config) (Capture, error)
	Release(c Capture, restore Config) error
}

// Capture is a claimed device handle writing encoded audio to one file at a time.
type Capture interface {
	Begin(path string) error
	Pause() error
	Resume() error
	// Finish stops writing and finalizes the current file.
	Finish() error
	// Reactivate re-acquires the device after the platform suspended it.
	Reactivate() error
}

// DeviceManager hands out exclusive ffmpeg-backed captures of the configured
// input and tracks the configuration the input is currently set to.
type DeviceManager struct {
	recorder *Recorder
	logger   *zap.Logger

	mu      sync.Mutex
	current Config
	claimed *ffmpegCapture
}

func NewDeviceManager(recorder *Recorder, initial Config, logger *zap.Logger) *DeviceManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceManager{
		recorder: recorder,
		logger:   logger,
		current:  initial,
	}
}

func (dm *DeviceManager) Current() Config {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.current
}

func (dm *DeviceManager) Claim(cfg Config) (Capture, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.claimed != nil {
		return nil, ErrDeviceBusy
	}
	if err := dm.recorder.CheckFFmpeg(); err != nil {
		return nil, err
	}
	if cfg.Input == "" {
		cfg.Input = dm.current.Input
	}

	c := &ffmpegCapture{recorder: dm.recorder, cfg: cfg, logger: dm.logger}
	dm.claimed = c
	dm.current = cfg
	dm.logger.Debug("device claimed", zap.Stringer("config", cfg))
	return c, nil
}

func (dm *DeviceManager) Release(c Capture, restore Config) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	fc, ok := c.(*ffmpegCapture)
	if !ok || fc != dm.claimed {
		return fmt.Errorf("release: capture is not the claimed one")
	}

	// Make sure no ffmpeg outlives the claim.
	var err error
	if fc.running() {
		err = fc.Finish()
	}
	fc.release()

	dm.claimed = nil
	dm.current = restore
	dm.logger.Debug("device released", zap.Stringer("restored", restore))
	return err
}
