package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "botflow",
	Short: "Botflow is a conversational workflow engine",
	Long:  `Botflow runs typed workflow graphs against contact sessions, one turn per inbound message.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Missing .env is fine; environment variables win either way.
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("workflows", ".", "Directory containing workflow YAML files")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}
