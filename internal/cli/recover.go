package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/devbydaniel/voicerec/internal/output"
)

func NewRecoverCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "recover [session-id]",
		Short: "Retry stitching a session whose stop failed",
		Long: "Without arguments, list sessions whose segments are waiting to be stitched.\n" +
			"With a session id, stitch its segments into the session output file.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			if len(args) == 0 {
				ids, err := deps.App.RecoverRecording.Pending()
				if err != nil {
					return err
				}
				formatter.PendingRecoveries(ids)
				return nil
			}

			res, err := deps.App.RecoverRecording.Execute(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			formatter.Recovered(res.Path, res.Duration)
			return nil
		},
	}
}
