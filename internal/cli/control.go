package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/devbydaniel/voicerec/internal/output"
)

func NewPauseCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause the current recording",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			v, err := deps.App.Client.Pause(cmd.Context())
			if err != nil {
				return err
			}
			if !v.Value {
				formatter.Warning("Not paused: " + v.Reason)
				return nil
			}
			formatter.RecordingPaused()
			return nil
		},
	}
}

func NewResumeCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume a paused or interrupted recording",
		Long: "Resume a paused recording on the same file, or an interrupted one on a new\n" +
			"segment. Interruptions never resume on their own.",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			v, err := deps.App.Client.Resume(cmd.Context())
			if err != nil {
				return err
			}
			if !v.Value {
				formatter.Warning("Not resumed: " + v.Reason)
				return nil
			}
			formatter.RecordingResumed()
			return nil
		},
	}
}

func NewStatusCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the recording state",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			st, err := deps.App.Client.Status(cmd.Context())
			if err != nil {
				return err
			}
			var elapsed time.Duration
			if st.StartedAt != nil {
				elapsed = time.Since(*st.StartedAt)
			}
			formatter.Status(st.Status, st.Path, st.Segments, st.Interruptions, elapsed)
			return nil
		},
	}
}

func NewInterruptCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:       "interrupt began|ended",
		Short:     "Report an interruption to the daemon",
		Long:      "Tell the daemon an interruption (a call, another app using the microphone) began or ended.",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"began", "ended"},
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			if err := deps.App.Client.Interrupt(cmd.Context(), args[0]); err != nil {
				return err
			}
			formatter.InterruptionSent(args[0])
			return nil
		},
	}
}
