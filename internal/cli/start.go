package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/devbydaniel/voicerec/internal/domain/recording"
	"github.com/devbydaniel/voicerec/internal/output"
)

func NewStartCmd(deps *Dependencies) *cobra.Command {
	var opts recording.Options
	var directory string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a recording session",
		Long: "Start recording from the microphone. Options left unset use the [recording]\n" +
			"defaults from the config file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			opts.Directory = recording.Directory(directory)
			resp, err := deps.App.Client.Start(cmd.Context(), opts)
			if err != nil {
				return err
			}

			formatter.RecordingStarted(resp.Path, resp.Config)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Codec, "codec", "c", "", "Codec: aac or wav")
	cmd.Flags().IntVar(&opts.SampleRate, "sample-rate", 0, "Sample rate in Hz")
	cmd.Flags().IntVar(&opts.Channels, "channels", 0, "1 (mono) or 2 (stereo)")
	cmd.Flags().IntVar(&opts.BitDepth, "bit-depth", 0, "Bits per sample for wav")
	cmd.Flags().IntVar(&opts.Bitrate, "bitrate", 0, "Bitrate in bit/s for aac")
	cmd.Flags().StringVarP(&directory, "directory", "d", "", "DOCUMENTS, DATA, LIBRARY, CACHE or EXTERNAL")
	cmd.Flags().StringVarP(&opts.SubDirectory, "subdir", "s", "", "Subdirectory inside --directory")
	cmd.Flags().StringVarP(&opts.InputDevice, "input", "i", "", "ffmpeg input device (overrides config)")

	return cmd
}
