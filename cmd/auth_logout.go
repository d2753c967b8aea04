package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// authLogoutCmd represents the auth logout command.
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	Long: `Clear the stored session.

This command removes the stored tokens, requiring a fresh browser login
on the next use. It does not revoke the grant on the Spotify side.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogout,
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := newCredentialStore(cfg)
	if err != nil {
		return err
	}

	if _, ok := store.Load(); !ok {
		fmt.Println("No stored session.")
		return nil
	}
	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear stored session: %w", err)
	}

	fmt.Println("Logged out.")
	return nil
}
