package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/devbydaniel/voicerec/config"
	"github.com/devbydaniel/voicerec/internal/audio"
	"github.com/devbydaniel/voicerec/internal/catalog"
	"github.com/devbydaniel/voicerec/internal/client"
	"github.com/devbydaniel/voicerec/internal/domain/recording"
	"github.com/devbydaniel/voicerec/internal/domain/recording/usecases"
	"github.com/devbydaniel/voicerec/internal/interrupt"
	"github.com/devbydaniel/voicerec/internal/logging"
	"github.com/devbydaniel/voicerec/internal/metrics"
	"github.com/devbydaniel/voicerec/internal/server"
)

type App struct {
	Logger     *zap.Logger
	Controller *recording.Controller
	Queue      *interrupt.Queue
	Hub        *server.Hub
	Registry   *prometheus.Registry
	Catalog    *catalog.Client
	Client     *client.Client
	Recorder   *audio.Recorder

	StartRecording     *usecases.StartRecording
	PauseRecording     *usecases.PauseRecording
	ResumeRecording    *usecases.ResumeRecording
	StopRecording      *usecases.StopRecording
	GetStatus          *usecases.GetStatus
	ListRecordings     *usecases.ListRecordings
	RecoverRecording   *usecases.RecoverRecording
	ReportInterruption *usecases.ReportInterruption

	debug bool
}

func New(cfg *config.Config) (*App, error) {
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, err
	}

	defaults, err := DeviceDefaults(cfg)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Open(cfg.CatalogPath())
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	recorder := audio.NewRecorder(cfg.FFmpegPath, cfg.InputFormat, cfg.InputDevice)
	devices := audio.NewDeviceManager(recorder, defaults, logger.Named("audio"))
	prober := audio.NewProber(cfg.FFprobePath)
	stitcher := recording.NewStitcher(prober, audio.NewExporter(cfg.FFmpegPath), cfg.ExportTimeout, logger.Named("stitcher"))
	hub := server.NewHub()
	manifests := &recording.ManifestStore{Dir: cfg.ManifestDir()}

	controller := recording.NewController(recording.ControllerConfig{
		Device:        devices,
		Stitcher:      stitcher,
		Prober:        prober,
		RecordingsDir: cfg.RecordingsDir,
		Defaults:      defaults,
		Logger:        logger.Named("controller"),
		Metrics:       metrics.New(reg),
		Notify:        hub.Notify,
	})
	queue := interrupt.NewQueue(16)

	return &App{
		Logger:     logger,
		Controller: controller,
		Queue:      queue,
		Hub:        hub,
		Registry:   reg,
		Catalog:    cat,
		// Stop waits for stitching, so leave room for a full export.
		Client:   client.New(cfg.BaseURL(), cfg.ExportTimeout+30*time.Second),
		Recorder: recorder,

		StartRecording:  &usecases.StartRecording{Controller: controller},
		PauseRecording:  &usecases.PauseRecording{Controller: controller},
		ResumeRecording: &usecases.ResumeRecording{Controller: controller},
		StopRecording: &usecases.StopRecording{
			Controller: controller,
			Catalog:    cat,
			Manifests:  manifests,
			Logger:     logger.Named("stop"),
		},
		GetStatus:      &usecases.GetStatus{Controller: controller},
		ListRecordings: &usecases.ListRecordings{Catalog: cat},
		RecoverRecording: &usecases.RecoverRecording{
			Stitcher:  stitcher,
			Prober:    prober,
			Catalog:   cat,
			Manifests: manifests,
			Logger:    logger.Named("recover"),
		},
		ReportInterruption: &usecases.ReportInterruption{Queue: queue},

		debug: cfg.LogLevel == "debug",
	}, nil
}

// Server builds the control API over the app's use cases.
func (a *App) Server() *server.Server {
	return server.New(server.UseCases{
		Start:     a.StartRecording,
		Pause:     a.PauseRecording,
		Resume:    a.ResumeRecording,
		Stop:      a.StopRecording,
		Status:    a.GetStatus,
		List:      a.ListRecordings,
		Interrupt: a.ReportInterruption,
	}, a.Hub, a.Registry, a.Logger.Named("http"), a.debug)
}

func (a *App) Close() error {
	a.Queue.Close()
	err := a.Catalog.Close()
	_ = a.Logger.Sync()
	return err
}

// DeviceDefaults maps the configured recording defaults onto a capture config.
func DeviceDefaults(cfg *config.Config) (audio.Config, error) {
	codec, err := audio.ParseCodec(cfg.Recording.Codec)
	if err != nil {
		return audio.Config{}, fmt.Errorf("recording.codec: %w", err)
	}
	if cfg.Recording.SampleRate <= 0 || cfg.Recording.Channels <= 0 {
		return audio.Config{}, errors.New("recording: sample_rate and channels must be positive")
	}
	return audio.Config{
		Codec:      codec,
		SampleRate: cfg.Recording.SampleRate,
		Channels:   cfg.Recording.Channels,
		BitDepth:   cfg.Recording.BitDepth,
		Bitrate:    cfg.Recording.Bitrate,
		Input:      cfg.InputDevice,
	}, nil
}
