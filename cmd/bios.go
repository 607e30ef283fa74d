package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AtticusColwell/game-data-collector-primitive/pipeline"
	"github.com/AtticusColwell/game-data-collector-primitive/utils"
)

func newBiosCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "bios [roster-file]",
		Short: "Collects biographical and draft data for every player in the roster file",
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

			saved, failures, err := p.Bios(args[0], outDir)
			if err != nil {
				log.Error(fmt.Sprintf("Error running bio collection: %v", err))
				return err
			}

			log.Info(fmt.Sprintf("Batch job completed. Saved %d bio rows, %d failures", saved, len(failures)))
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "outdir", "player_bios", "output directory")

	return cmd
}
