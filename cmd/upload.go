package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AtticusColwell/game-data-collector-primitive/load"
	"github.com/AtticusColwell/game-data-collector-primitive/pipeline"
	"github.com/AtticusColwell/game-data-collector-primitive/utils"
)

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload [players-file]",
		Short: "Upserts player bios and career stats into the hosted database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeConfigAndLogger()
			if err != nil {
				return err
			}

			supabase, err := load.NewSupabaseClient(cfg, log)
			if err != nil {
				return fmt.Errorf("error creating Supabase client: %w", err)
			}

			p, err := pipeline.NewPipeline(cfg, log, utils.RealTimeProvider{})
			if err != nil {
				return err
			}

			processed, failures, err := p.Upload(args[0], supabase)
			if err != nil {
				log.Error(fmt.Sprintf("Error running upload: %v. Processed %d players", err, processed))
				return err
			}

			log.Info(fmt.Sprintf("Batch job completed. Processed %d players, %d failures", processed, len(failures)))
			return nil
		},
	}
}
