package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mockhub/mockhub-console/api/handlers"
	"github.com/mockhub/mockhub-console/api/services"
	"github.com/mockhub/mockhub-console/db"
	"github.com/mockhub/mockhub-console/internal/authn"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	host string
	port int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the mock backend",
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config and set up logging
		commonSetUp()

		if cmd.Flags().Changed("host") {
			appCfg.Mock.Host = host
		}
		if cmd.Flags().Changed("port") {
			appCfg.Mock.Port = port
		}

		repo, err := db.NewRepository(appCfg.Mock.Database, &log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize repository")
		}
		defer repo.Close()

		signingKey := appCfg.Mock.SigningKey
		if signingKey == "" {
			log.Warn().Msg("No signing key configured, tokens will not survive a restart")
			signingKey = uuid.NewString()
		}

		service := &services.Service{
			Config: appCfg,
			DB:     repo,
			Signer: authn.NewSigner(signingKey, appCfg.Mock.TokenTTL),
		}

		if appCfg.Mock.Seed {
			demo, err := services.SeedDemo(cmd.Context(), repo)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to seed demo data")
			}
			log.Info().Str("email", demo.Email).Msg("Demo account ready")
		}

		addr := fmt.Sprintf("%s:%d", appCfg.Mock.Host, appCfg.Mock.Port)
		srv := &http.Server{
			Addr:              addr,
			Handler:           handlers.NewRouter(service),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-cmd.Context().Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Error().Err(err).Msg("could not shut down server")
			}
		}()

		log.Info().Msg(fmt.Sprintf("Server started at %s", addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("could not start server")
		}
		log.Info().Msg("Server stopped")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&host, "host", "0.0.0.0", "host to run the server on")
	serveCmd.Flags().IntVar(&port, "port", 8086, "port to run the server on")
}
