package cli

import (
	"github.com/spf13/cobra"

	"github.com/devbydaniel/voicerec/config"
	"github.com/devbydaniel/voicerec/internal/app"
	"github.com/devbydaniel/voicerec/internal/version"
)

type Dependencies struct {
	App    *app.App
	Config *config.Config
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "voicerec",
		Short: "Record voice notes that survive interruptions",
		Long: "voicerec records the microphone into one audio file per session.\n" +
			"Run 'voicerec serve' once, then drive it with start, pause, resume and stop.\n" +
			"Interruptions (calls, another app taking the microphone) split the capture\n" +
			"into segments that are stitched back together when the session stops.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	rootCmd.AddCommand(NewServeCmd(deps))
	rootCmd.AddCommand(NewStartCmd(deps))
	rootCmd.AddCommand(NewPauseCmd(deps))
	rootCmd.AddCommand(NewResumeCmd(deps))
	rootCmd.AddCommand(NewStopCmd(deps))
	rootCmd.AddCommand(NewStatusCmd(deps))
	rootCmd.AddCommand(NewInterruptCmd(deps))
	rootCmd.AddCommand(NewListCmd(deps))
	rootCmd.AddCommand(NewRecoverCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))

	return rootCmd
}
