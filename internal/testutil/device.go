package testutil

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/devbydaniel/voicerec/internal/audio"
)

// FakeDevice is an audio.Device whose captures write a WAV tone on Finish.
// Every Begin records SegmentLength of audio into its file.
type FakeDevice struct {
	SegmentLength time.Duration

	// Failure injection.
	ClaimErr error
	BeginErr error

	mu        sync.Mutex
	current   audio.Config
	claimed   *FakeCapture
	Claims    int
	Releases  int
	Restored  []audio.Config
	Begun     []string
	Reactives int
}

func NewFakeDevice(initial audio.Config) *FakeDevice {
	return &FakeDevice{SegmentLength: time.Second, current: initial}
}

func (d *FakeDevice) Current() audio.Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

func (d *FakeDevice) Claim(cfg audio.Config) (audio.Capture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ClaimErr != nil {
		return nil, d.ClaimErr
	}
	if d.claimed != nil {
		return nil, audio.ErrDeviceBusy
	}
	d.Claims++
	d.current = cfg
	d.claimed = &FakeCapture{dev: d}
	return d.claimed, nil
}

func (d *FakeDevice) Release(c audio.Capture, restore audio.Config) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if c != d.claimed {
		return errors.New("release of unclaimed capture")
	}
	d.claimed = nil
	d.Releases++
	d.current = restore
	d.Restored = append(d.Restored, restore)
	return nil
}

// Claimed reports whether a capture currently holds the device.
func (d *FakeDevice) Claimed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.claimed != nil
}

// FakeCapture tracks its state and writes the tone when a file is finished.
type FakeCapture struct {
	dev    *FakeDevice
	path   string
	Paused bool
}

func (c *FakeCapture) Begin(path string) error {
	c.dev.mu.Lock()
	defer c.dev.mu.Unlock()
	if c.dev.BeginErr != nil {
		return c.dev.BeginErr
	}
	if c.path != "" {
		return errors.New("already writing")
	}
	// Open the target the way a real capture would, so a bad path fails here.
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	_ = f.Close()
	c.path = path
	c.Paused = false
	c.dev.Begun = append(c.dev.Begun, path)
	return nil
}

func (c *FakeCapture) Pause() error {
	if c.path == "" {
		return errors.New("not writing")
	}
	c.Paused = true
	return nil
}

func (c *FakeCapture) Resume() error {
	if c.path == "" {
		return errors.New("not writing")
	}
	c.Paused = false
	return nil
}

func (c *FakeCapture) Finish() error {
	if c.path == "" {
		return nil
	}
	path := c.path
	c.path = ""
	c.Paused = false
	return WriteTone(path, c.dev.SegmentLength)
}

func (c *FakeCapture) Reactivate() error {
	c.dev.mu.Lock()
	c.dev.Reactives++
	c.dev.mu.Unlock()
	return nil
}
