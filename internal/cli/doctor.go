package cli

import (
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/devbydaniel/voicerec/internal/output"
)

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(os.Stdout)
			cfg := deps.Config
			ok := true

			if err := deps.App.Recorder.CheckFFmpeg(); err != nil {
				f.SetupCheck("ffmpeg", false, err.Error())
				ok = false
			} else {
				f.SetupCheck("ffmpeg", true, "installed")
			}

			if _, err := exec.LookPath(cfg.FFprobePath); err != nil {
				f.SetupCheck("ffprobe", false, "not found. It ships with ffmpeg")
				ok = false
			} else {
				f.SetupCheck("ffprobe", true, "installed")
			}

			f.SetupCheck("Microphone", true, cfg.InputFormat+" "+cfg.InputDevice+" (permission is requested on first recording)")

			if err := checkWritable(cfg.RecordingsDir); err != nil {
				f.SetupCheck("Recordings directory", false, err.Error())
				ok = false
			} else {
				f.SetupCheck("Recordings directory", true, cfg.RecordingsDir)
			}

			f.SetupCheck("Catalog", true, cfg.CatalogPath())

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
			defer cancel()
			if err := deps.App.Client.Health(ctx); err != nil {
				f.SetupCheck("Daemon", false, "not reachable at "+cfg.ListenAddr+". Run 'voicerec serve'")
			} else {
				f.SetupCheck("Daemon", true, "listening on "+cfg.ListenAddr)
			}

			if ok {
				f.Success("\nAll prerequisites met. Ready to record!")
			} else {
				f.Warning("\nSome prerequisites are missing.")
			}
			return nil
		},
	}
}

func checkWritable(dir string) error {
	tmp, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	_ = tmp.Close()
	return os.Remove(name)
}
