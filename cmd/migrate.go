package cmd

import (
	"github.com/mockhub/mockhub-console/db"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "init-db-migrate",
	Short: "Initialize tables and run database migrations",
	Long:  `This job ensures the mock backend tables exist by running the goose migrations against the configured Postgres database.`,
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config and set up logging
		commonSetUp()

		if appCfg.Mock.Database.Driver != "postgres" {
			log.Fatal().Str("driver", appCfg.Mock.Database.Driver).Msg("Migrations need the postgres driver")
		}

		hubDB, err := db.OpenHubDB(appCfg.Mock.Database, &log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}

		// Set up the database
		defer hubDB.Close()

		// Run the migrations
		log.Info().Msgf("Running migrations...")
		if err := hubDB.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}

		log.Info().Msg("Migrations complete")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
