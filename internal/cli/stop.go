package cli

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/devbydaniel/voicerec/internal/client"
	"github.com/devbydaniel/voicerec/internal/output"
)

func NewStopCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop recording and save the file",
		Long:  "Stop the session. Segments left by interruptions are stitched into one file first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			resp, err := deps.App.Client.Stop(cmd.Context())
			if err != nil {
				var apiErr *client.APIError
				if errors.As(err, &apiErr) && apiErr.Code == "FAILED_TO_FETCH_RECORDING" {
					formatter.Warning("Segments were kept on disk. Retry with 'voicerec recover'.")
				}
				return err
			}

			formatter.RecordingStopped(resp.Path, time.Duration(resp.MsDuration)*time.Millisecond, resp.Segments)
			return nil
		},
	}

	return cmd
}
