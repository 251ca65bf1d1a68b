package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devbydaniel/voicerec/internal/domain/recording"
	"github.com/devbydaniel/voicerec/internal/interrupt"
	"github.com/devbydaniel/voicerec/internal/output"
)

func NewServeCmd(deps *Dependencies) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the recording daemon",
		Long: "Run the daemon that owns the microphone and serves the control API.\n" +
			"SIGUSR1 reports an interruption beginning and SIGUSR2 its end.\n" +
			"Ctrl+C stops any open session, keeping its audio, and exits.",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)
			a := deps.App
			logger := a.Logger

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stopSignals := interrupt.ListenSignals(a.Queue)
			defer stopSignals()

			go func() {
				if err := a.Controller.Run(ctx, a.Queue); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("interruption consumer stopped", zap.Error(err))
				}
			}()

			formatter.Info("voicerec listening on " + addr)
			err := a.Server().Run(ctx, addr)

			// Keep whatever was captured so far.
			if a.Controller.Status() != recording.StatusNone {
				res, serr := a.StopRecording.Execute(context.Background())
				if serr != nil {
					formatter.Warning("open session stopped with error: " + serr.Error())
				} else {
					formatter.RecordingStopped(res.Path, res.Duration, len(res.Segments))
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", deps.Config.ListenAddr, "Address for the control API")

	return cmd
}
