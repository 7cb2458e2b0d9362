package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/adapters/out/store/postgres"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/config"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the appointment table for the postgres store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, log, err := loadConfig(nil)
			if err != nil {
				return err
			}
			if cfg.Store.Driver != config.StoreDriverPostgres {
				return fmt.Errorf("migrate: store driver is %q, expected %q", cfg.Store.Driver, config.StoreDriverPostgres)
			}

			store, err := postgres.NewPostgresStoreAdapter(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer store.Close()

			return store.Migrate(ctx)
		},
	}
}
