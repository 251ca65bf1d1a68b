package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// startupGrace is how long Begin waits for ffmpeg to fail on a bad input.
	startupGrace  = 300 * time.Millisecond
	finishTimeout = 10 * time.Second
)

// Recorder knows how to run ffmpeg against the microphone input.
type Recorder struct {
	FFmpegPath  string
	InputFormat string // avfoundation, pulse, alsa, dshow...
	InputDevice string // ":default", "default", ...
}

func NewRecorder(ffmpegPath, inputFormat, inputDevice string) *Recorder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Recorder{
		FFmpegPath:  ffmpegPath,
		InputFormat: inputFormat,
		InputDevice: inputDevice,
	}
}

func (r *Recorder) CheckFFmpeg() error {
	if _, err := exec.LookPath(r.FFmpegPath); err != nil {
		return fmt.Errorf("ffmpeg not found. Install with: brew install ffmpeg (or your package manager)")
	}
	return nil
}

// captureArgs builds the ffmpeg command line for recording the mic into outputPath.
func (r *Recorder) captureArgs(cfg Config, outputPath string) []string {
	args := []string{"-hide_banner", "-nostats", "-loglevel", "warning"}
	if r.InputFormat != "" {
		args = append(args, "-f", r.InputFormat)
	}
	args = append(args, "-i", r.input(cfg))
	args = append(args, cfg.encoderArgs()...)
	return append(args, "-y", outputPath)
}

// input is the device ffmpeg opens: the claimed config's, else the recorder's.
func (r *Recorder) input(cfg Config) string {
	if cfg.Input != "" {
		return cfg.Input
	}
	return r.InputDevice
}

// ffmpegCapture is one claimed handle; each Begin spawns a fresh ffmpeg
// process writing a single segment file.
type ffmpegCapture struct {
	recorder *Recorder
	cfg      Config
	logger   *zap.Logger

	mu       sync.Mutex
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	logFile  *os.File
	done     chan error
	paused   bool
	released bool
}

func (c *ffmpegCapture) Begin(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return errors.New("capture already released")
	}
	if c.cmd != nil {
		return errors.New("capture already writing a file")
	}

	cmd := exec.Command(c.recorder.FFmpegPath, c.recorder.captureArgs(c.cfg, path)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("opening ffmpeg stdin: %w", err)
	}

	// Log stderr for diagnostics
	logFile, err := os.Create(path + ".ffmpeg.log")
	if err == nil {
		cmd.Stderr = logFile
	}

	if err := cmd.Start(); err != nil {
		closeQuietly(logFile)
		return fmt.Errorf("starting ffmpeg: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		closeQuietly(logFile)
		if err == nil {
			err = errors.New("exited immediately")
		}
		return fmt.Errorf("ffmpeg could not open input %q: %w (see %s.ffmpeg.log)", c.recorder.input(c.cfg), err, path)
	case <-time.After(startupGrace):
	}

	c.cmd = cmd
	c.stdin = stdin
	c.logFile = logFile
	c.done = done
	c.paused = false
	c.logger.Debug("capture started", zap.String("path", path), zap.Int("pid", cmd.Process.Pid))
	return nil
}

func (c *ffmpegCapture) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cmd == nil {
		return errors.New("no capture in progress")
	}
	if c.paused {
		return nil
	}
	if err := suspendProcess(c.cmd.Process); err != nil {
		return fmt.Errorf("pausing ffmpeg: %w", err)
	}
	c.paused = true
	return nil
}

func (c *ffmpegCapture) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cmd == nil {
		return errors.New("no capture in progress")
	}
	if !c.paused {
		return nil
	}
	if err := continueProcess(c.cmd.Process); err != nil {
		return fmt.Errorf("resuming ffmpeg: %w", err)
	}
	c.paused = false
	return nil
}

// Finish asks ffmpeg to quit so it writes the container trailer, killing it
// if it does not comply in time.
func (c *ffmpegCapture) Finish() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cmd == nil {
		return nil
	}
	defer func() {
		closeQuietly(c.logFile)
		c.cmd, c.stdin, c.logFile, c.done, c.paused = nil, nil, nil, nil, false
	}()

	if c.paused {
		_ = continueProcess(c.cmd.Process)
	}

	// The process may already be gone (crash, device unplugged).
	select {
	case err := <-c.done:
		if err != nil {
			return fmt.Errorf("ffmpeg exited before finish: %w", err)
		}
		return nil
	default:
	}

	_, _ = io.WriteString(c.stdin, "q")
	_ = c.stdin.Close()

	select {
	case err := <-c.done:
		if err != nil {
			return fmt.Errorf("ffmpeg finish: %w", err)
		}
		return nil
	case <-time.After(finishTimeout):
		_ = c.cmd.Process.Kill()
		<-c.done
		return fmt.Errorf("ffmpeg did not finish within %s", finishTimeout)
	}
}

func (c *ffmpegCapture) Reactivate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return errors.New("capture already released")
	}
	return nil
}

func (c *ffmpegCapture) running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cmd != nil
}

func (c *ffmpegCapture) release() {
	c.mu.Lock()
	c.released = true
	c.mu.Unlock()
}

func closeQuietly(f *os.File) {
	if f != nil {
		_ = f.Close()
	}
}
