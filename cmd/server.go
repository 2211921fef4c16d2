package cmd

import (
	"github.com/spf13/cobra"

	"liquidshuffle/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the discovery HTTP server",
	Long:  `Start the HTTP server exposing the shuffle, hydrate, refresh and suggestion endpoints.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
