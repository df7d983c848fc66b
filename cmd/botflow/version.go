package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	botflow "github.com/mistermakeithappen/jobconversiontracker-sub000"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of botflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("botflow version %s\n", strings.TrimSpace(botflow.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
