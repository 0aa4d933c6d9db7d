package main

import (
	"errors"

	"github.com/jbeeko/contacts-worker/internal/config"
	"github.com/jbeeko/contacts-worker/internal/database"
	"github.com/jbeeko/contacts-worker/internal/logger"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the kv_entries schema for the postgres backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if cfg.KV.Backend != config.BackendPostgres {
			return errors.New("migrate requires CONTACTS_KV.BACKEND=postgres")
		}

		log := logger.NewLogger(cfg.Observability)

		if err := database.Migrate(cmd.Context(), &log, cfg); err != nil {
			log.Error().Err(err).Msg("migration failed")
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
