package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/adapters/file"
)

var validateCmd = &cobra.Command{
	Use:   "validate <workflow.yaml>...",
	Short: "Check workflow files for consistency",
	Long:  `Parses workflow files and reports structural problems: missing or duplicate start nodes, dangling connections, ambiguous branches.`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		failed := false
		for _, path := range args {
			if err := validateFile(path); err != nil {
				fmt.Printf("%s: %v\n", path, err)
				failed = true
			}
		}
		if failed {
			os.Exit(1)
		}
		fmt.Println("All workflows are valid.")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateFile(path string) error {
	g, err := file.LoadFile(path)
	if err != nil {
		return err
	}
	problems := g.Validate()
	for _, p := range problems {
		fmt.Printf("%s: %s\n", path, p.Error())
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d problem(s)", len(problems))
	}
	return nil
}
