package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spotivr/internal/session"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

// authLoginCmd represents the auth login command.
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to Spotify through the browser",
	Long: `Log in to Spotify through the browser.

This command opens the Spotify consent page in your browser, waits for the
redirect back, exchanges the authorization code through the token proxy,
and stores the resulting session. The proxy ('spotivr serve') must be
running and reachable.

Examples:
  spotivr auth login    # Log in through the browser`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	router, err := newRouter(cfg)
	if err != nil {
		return err
	}
	defer router.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	events := router.Events().Subscribe()
	router.Start(ctx)

	if router.State() == session.StateAuthenticated {
		fmt.Println("Already logged in. Run 'spotivr auth logout' first to switch accounts.")
		return nil
	}
	drainStartupEvents(events)

	if err := router.Login(ctx); err != nil {
		return err
	}

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	spin.Suffix = " Waiting for browser login..."
	spin.Start()
	defer spin.Stop()

	for {
		select {
		case evt := <-events:
			switch evt.Kind {
			case session.EventRouteChanged:
				if evt.Route == session.RouteHome {
					spin.Stop()
					fmt.Println("Logged in.")
					return nil
				}
			case session.EventError:
				spin.Stop()
				return &authFailedError{message: evt.Message}
			}
		case <-ctx.Done():
			spin.Stop()
			return &authFailedError{message: "login cancelled"}
		}
	}
}

// drainStartupEvents consumes whatever Start published so the wait loop
// below only sees events from the login flow itself.
func drainStartupEvents(events <-chan session.Event) {
	for {
		select {
		case <-events:
		default:
			return
		}
	}
}
