package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AtticusColwell/game-data-collector-primitive/pipeline"
	"github.com/AtticusColwell/game-data-collector-primitive/utils"
)

var gamelogsCmd = &cobra.Command{
	Use:   "gamelogs",
	Short: "Collect per-player game logs from a roster file",
}

func newRegularCmd() *cobra.Command {
	return newGameLogCmd(
		"regular [roster-file]",
		"Collects regular season game logs for every player in the roster file",
		pipeline.SeasonTypeRegular,
		"player_logs",
	)
}

func newPlayoffsCmd() *cobra.Command {
	return newGameLogCmd(
		"playoffs [roster-file]",
		"Collects playoff game logs for every player in the roster file",
		pipeline.SeasonTypePlayoffs,
		"playoff_logs",
	)
}

func newGameLogCmd(use, short, seasonType, defaultOutDir string) *cobra.Command {
	var outDir string
	var fromYear, toYear int

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeConfigAndLogger()
			if err != nil {
				return err
			}

			p, err := pipeline.NewPipeline(cfg, log, utils.RealTimeProvider{})
			if err != nil {
				return err
			}

			saved, failures, err := p.GameLogs(pipeline.GameLogOptions{
				RosterPath: args[0],
				OutDir:     outDir,
				SeasonType: seasonType,
				FromYear:   fromYear,
				ToYear:     toYear,
			})
			if err != nil {
				log.Error(fmt.Sprintf("Error running game log collection: %v. Saved %d logs", err, saved))
				return err
			}

			log.Info(fmt.Sprintf("Batch job completed. Saved %d game logs, %d failures", saved, len(failures)))
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "outdir", defaultOutDir, "root output directory")
	cmd.Flags().IntVar(&fromYear, "from", 2015, "earliest season start year to collect")
	cmd.Flags().IntVar(&toYear, "to", 2024, "latest season start year to collect")

	return cmd
}
