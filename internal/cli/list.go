package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/devbydaniel/voicerec/internal/catalog"
	"github.com/devbydaniel/voicerec/internal/domain/recording/usecases"
	"github.com/devbydaniel/voicerec/internal/output"
)

func NewListCmd(deps *Dependencies) *cobra.Command {
	var opts usecases.ListOptions
	var fromDaemon bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			var recs []catalog.Recording
			var err error
			if fromDaemon {
				recs, err = deps.App.Client.Recordings(cmd.Context(), opts.Outcome, opts.Limit)
			} else {
				recs, err = deps.App.ListRecordings.Execute(cmd.Context(), opts)
			}
			if err != nil {
				return err
			}

			rows := make([]output.RecordingRow, len(recs))
			for i, r := range recs {
				rows[i] = output.RecordingRow{
					StoppedAt: r.StoppedAt,
					Duration:  time.Duration(r.DurationMs) * time.Millisecond,
					Segments:  r.Segments,
					Outcome:   r.Outcome,
					Path:      r.Path,
				}
			}
			formatter.RecordingList(rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Outcome, "outcome", "", "Only show complete, stitch_failed or empty sessions")
	cmd.Flags().BoolVar(&fromDaemon, "daemon", false, "Ask the running daemon instead of reading the catalog directly")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of sessions (0 for all)")

	return cmd
}
