package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"spotivr/internal/authproxy"
	"spotivr/internal/config"
	"spotivr/pkg/logging"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// shutdownGrace is how long in-flight exchanges get to finish on shutdown.
const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the token exchange proxy",
	Long: `Run the token exchange proxy.

The proxy is the only process that holds the Spotify client secret. It
exposes POST /api/authentication, where clients trade authorization codes
and refresh tokens for access tokens without ever seeing the secret.

The secret is read from the ` + config.EnvClientSecret + ` environment
variable (a .env file in the working directory is honoured).`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	secret, err := config.ClientSecret()
	if err != nil {
		return err
	}

	handler := authproxy.NewHandler(cfg.Spotify.ClientID, secret, cfg.Spotify.TokenEndpoint)
	server := authproxy.NewServer(cfg.Proxy.ListenAddr, handler)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Info("Serve", "Token exchange proxy listening on %s", cfg.Proxy.ListenAddr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logging.Info("Serve", "Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
