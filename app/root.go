// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/config"
)

var (
	cfg        config.Config
	configPath string // Path to the configuration file
	err        error
)

var rootCmd = &cobra.Command{
	Use:   "go-access-admin",
	Short: "GoAccess-Admin is a web-based user and access management panel",
	Long: `GoAccess-Admin is a web-based management panel for user accounts,
roles, permissions, and email invitations.`,
	Args: cobra.OnlyValidArgs,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(
		&configPath,
		"config",
		"etc/",
		"Path to the directory containing main.toml",
	)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
