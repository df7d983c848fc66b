package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	botflow "github.com/mistermakeithappen/jobconversiontracker-sub000"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/internal/logging"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/adapters/file"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/graph"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <workflow.yaml>",
	Short: "Run a workflow interactively",
	Long:  `Runs a workflow file as an interactive chat on stdin/stdout. Each line you type is one turn.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runInteractive(cmd, args[0]); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("events", false, "Print every lifecycle event, not just messages")
}

func runInteractive(cmd *cobra.Command, path string) error {
	showEvents, _ := cmd.Flags().GetBool("events")
	level, _ := cmd.Flags().GetString("log-level")

	g, err := file.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load workflow: %w", err)
	}
	if problems := g.Validate(); len(problems) > 0 {
		for _, p := range problems {
			fmt.Printf("invalid workflow: %s\n", p.Error())
		}
		return fmt.Errorf("workflow has %d problem(s)", len(problems))
	}

	engine, err := buildEngine(".", logging.New(parseLevel(level)))
	if err != nil {
		return err
	}

	ctx := context.Background()
	sessionID := "local"
	scanner := bufio.NewScanner(os.Stdin)

	// First turn runs the start node before any input.
	if err := playTurn(ctx, engine, g, sessionID, "", showEvents); err != nil {
		return err
	}

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if message == "/quit" {
			return nil
		}
		if err := playTurn(ctx, engine, g, sessionID, message, showEvents); err != nil {
			return err
		}
	}
}

func playTurn(ctx context.Context, engine *botflow.Engine, g *graph.Graph, sessionID, message string, showEvents bool) error {
	events, err := engine.Turn(ctx, botflow.TurnRequest{
		Graph:     g,
		SessionID: sessionID,
		Message:   message,
	})
	if err != nil {
		return err
	}

	for ev := range events {
		switch ev.Type {
		case domain.EventMessage:
			fmt.Println(ev.Content)
		case domain.EventError:
			fmt.Printf("[error] %s\n", ev.Message)
		case domain.EventComplete:
			if ev.Status == domain.StatusTerminated {
				fmt.Println("(conversation ended)")
			}
		default:
			if showEvents {
				fmt.Printf("[%s] node=%s\n", ev.Type, ev.NodeID)
			}
		}
	}
	return nil
}
