// Package commands provides the CLI commands for skelbot.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skel-labs/skelbot/internal/config"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "skelbot",
	Short: "Skel Helper Bot - Telegram front-end for the Skel Crypto Agent",
	Long: `Skelbot bridges Telegram chats to the Skel Crypto Agent: free text,
price conversions, project snapshots, gas fees and RPC lookups.

Run 'skelbot serve' for long polling, or 'skelbot webhook' to receive
updates over HTTPS.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		fmt.Sprintf("Config file path (default %s when present)", config.DefaultFile))
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (DEBUG|INFO|WARN|ERROR)")

	rootCmd.SetVersionTemplate(fmt.Sprintf("skelbot %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(webhookCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
