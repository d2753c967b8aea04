package cmd

import (
	"errors"
	"os"

	"spotivr/internal/session"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
// These follow common conventions for scripting and automation.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates authentication is required but not available.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates the OAuth flow failed.
	ExitCodeAuthFailed = 3
)

// authFailedError marks a failed browser login so Execute can map it to
// ExitCodeAuthFailed.
type authFailedError struct {
	message string
}

func (e *authFailedError) Error() string {
	return e.message
}

// rootCmd represents the base command for the spotivr application.
var rootCmd = &cobra.Command{
	Use:   "spotivr",
	Short: "Session manager and token exchange proxy for Spotify",
	Long: `spotivr manages the Spotify OAuth session for the playlist browser:
it runs the token exchange proxy that holds the client secret, drives the
browser-based login flow, and keeps the stored session fresh.`,
	// SilenceUsage prevents cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command. Called from the main
// package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "spotivr version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	var authFailed *authFailedError
	if errors.As(err, &authFailed) {
		return ExitCodeAuthFailed
	}

	if errors.Is(err, session.ErrLoginUnavailable) {
		return ExitCodeAuthRequired
	}

	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().StringVar(&configPath, "config-path", "",
		"Configuration directory (default is $HOME/.config/spotivr)")
}
