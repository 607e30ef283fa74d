package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AtticusColwell/game-data-collector-primitive/load"
	"github.com/AtticusColwell/game-data-collector-primitive/pipeline"
	"github.com/AtticusColwell/game-data-collector-primitive/utils"
)

var warehouseCmd = &cobra.Command{
	Use:   "warehouse",
	Short: "Manage the DuckDB warehouse of collected data",
}

func newWarehouseLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load [gamelog-dir]",
		Short: "Loads a tree of collected game log CSVs into the warehouse",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeConfigAndLogger()
			if err != nil {
				return err
			}

			db, err := load.NewDuckDB(cfg, log)
			if err != nil {
				return fmt.Errorf("error creating DB connection: %w", err)
			}
			defer db.Close()

			p, err := pipeline.NewPipeline(cfg, log, utils.RealTimeProvider{})
			if err != nil {
				return err
			}

			files, err := p.LoadGameLogs(args[0], db)
			if err != nil {
				return fmt.Errorf("error loading game logs: %w", err)
			}

			log.Info(fmt.Sprintf("Loaded %d game log files into the warehouse", files))
			return nil
		},
	}
}
