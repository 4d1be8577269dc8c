package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	flagServer   string
	flagUsername string
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "chessme",
	Short: "Headless chess client: create or join a room and play over a relay server",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "ws://localhost:8080/api/ws", "websocket URL of the relay server")
	rootCmd.PersistentFlags().StringVar(&flagUsername, "username", "guest", "display name asserted to the room")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "verbose logging")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(joinCmd)
}

// Execute runs the root command. Called once from main.
func Execute() {
	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
