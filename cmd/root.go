package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"liquidshuffle/logger"
	"liquidshuffle/server"
)

var rootCmd = &cobra.Command{
	Use:   "liquidshuffle",
	Short: "LiquidShuffle is a catalog resolution and randomized album discovery service.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.InitLogger(logger.Config{
			Level:      logger.InfoLevel,
			OutputPath: "logs/liquidshuffle.log",
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     14,
			Compress:   true,
		})
	},
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
