package cmd

import (
	"context"
	"fmt"
	"time"

	"spotivr/internal/spotify"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// statusVerify controls whether the stored token is checked against the API.
var statusVerify bool

// verifyTimeout bounds the optional live token check.
const verifyTimeout = 15 * time.Second

// authStatusCmd represents the auth status command.
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored session",
	Long: `Show the stored session.

This command displays whether a session is stored and when it expires.
With --verify it also checks the token against the Spotify API, catching
sessions revoked server-side before their local expiry.

Examples:
  spotivr auth status           # Show the stored session
  spotivr auth status --verify  # Also verify the token upstream`,
	Args: cobra.NoArgs,
	RunE: runAuthStatus,
}

func init() {
	authStatusCmd.Flags().BoolVar(&statusVerify, "verify", false, "Verify the stored token against the Spotify API")
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := newCredentialStore(cfg)
	if err != nil {
		return err
	}

	sess, ok := store.Load()
	if !ok {
		fmt.Printf("Status:   %s\n", text.FgYellow.Sprint("Not logged in"))
		fmt.Println("Run: spotivr auth login")
		return nil
	}

	ttl := time.Until(sess.ExpiresAt).Round(time.Second)
	if ttl > 0 {
		fmt.Printf("Status:   %s\n", text.FgGreen.Sprint("Logged in"))
		fmt.Printf("Renewal:  due in %s (%s)\n", ttl, sess.ExpiresAt.Format(time.RFC3339))
	} else {
		fmt.Printf("Status:   %s\n", text.FgYellow.Sprint("Logged in (renewal overdue)"))
		fmt.Printf("Renewal:  was due %s ago\n", (-ttl).Round(time.Second))
	}
	fmt.Printf("Storage:  %s\n", cfg.Auth.Backend)

	if !statusVerify {
		return nil
	}

	validator, err := spotify.NewValidator(cfg.Spotify.APIBaseURL)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), verifyTimeout)
	defer cancel()

	if validator.Validate(ctx, sess.AccessToken) {
		fmt.Printf("Upstream: %s\n", text.FgGreen.Sprint("Token accepted"))
	} else {
		fmt.Printf("Upstream: %s\n", text.FgRed.Sprint("Token rejected"))
		fmt.Println("Run: spotivr auth login")
	}
	return nil
}
