package main

import (
	"os"

	"sacred_computing/internal/utils/log"

	"github.com/spf13/cobra"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "sacred",
	Short: "Sacred computing platform",
	Long:  "Intention broadcasting over network packets, sacred geometry derivation, and the real-time energetic feedback hub.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			log.SetDebug()
		}
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "sacred.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(broadcastCmd)
	rootCmd.AddCommand(calculateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
