package cmd

import (
	"github.com/spf13/cobra"
)

// authCmd represents the auth command group.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Spotify session",
	Long: `Manage the Spotify session.

The auth command group provides subcommands to log in through the browser,
inspect the stored session, and clear it.

Examples:
  spotivr auth login    # Log in through the browser
  spotivr auth status   # Show the stored session
  spotivr auth logout   # Clear the stored session`,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
}
