package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	botflow "github.com/mistermakeithappen/jobconversiontracker-sub000"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/internal/logging"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/adapters/crm"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/adapters/file"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/adapters/httpapi"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/adapters/openai"
	redisadapter "github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/adapters/redis"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the engine in server mode, exposing the SSE turn endpoint and the editor API over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("workflows")
		port, _ := cmd.Flags().GetString("port")
		level, _ := cmd.Flags().GetString("log-level")

		logger := logging.New(parseLevel(level))

		engine, err := buildEngine(dir, logger)
		if err != nil {
			fmt.Printf("Error initializing engine: %v\n", err)
			os.Exit(1)
		}

		handler := httpapi.NewHandler(engine, httpapi.WithLogger(logger))

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Botflow Server on %s\n", srv.Addr)
			fmt.Printf("Serving workflows from: %s\n", dir)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			// Commit any autosaves still pending.
			if err := engine.Close(ctx); err != nil {
				fmt.Printf("Error flushing autosaves: %v\n", err)
			}
			fmt.Println("Botflow Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}

// buildEngine assembles the engine from the environment: workflow graphs come
// from YAML files in dir, sessions from Redis when BOTFLOW_REDIS_ADDR is set
// (in-memory otherwise), and the AI and CRM collaborators from their API
// credentials when present.
func buildEngine(dir string, logger *slog.Logger) (*botflow.Engine, error) {
	graphs, err := file.NewStore(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open workflow directory: %w", err)
	}

	opts := []botflow.Option{
		botflow.WithGraphStore(graphs),
		botflow.WithLogger(logger),
	}

	if addr := os.Getenv("BOTFLOW_REDIS_ADDR"); addr != "" {
		db, _ := strconv.Atoi(os.Getenv("BOTFLOW_REDIS_DB"))
		password := os.Getenv("BOTFLOW_REDIS_PASSWORD")
		client := backend.NewClient(&backend.Options{Addr: addr, Password: password, DB: db})
		opts = append(opts,
			botflow.WithSessionStore(redisadapter.NewSessionStoreFromClient(client)),
			botflow.WithLocker(redisadapter.NewLocker(client, "botflow:lock:")),
		)
		logger.Info("using redis session store", "addr", addr)
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		var aiOpts []openai.Option
		if model := os.Getenv("BOTFLOW_OPENAI_MODEL"); model != "" {
			aiOpts = append(aiOpts, openai.WithModel(model))
		}
		ai := openai.New(key, os.Getenv("OPENAI_BASE_URL"), aiOpts...)
		opts = append(opts, botflow.WithJudge(ai), botflow.WithGenerator(ai))
	} else {
		logger.Warn("OPENAI_API_KEY not set; milestone and ai nodes will fail")
	}

	if base := os.Getenv("BOTFLOW_CRM_URL"); base != "" {
		opts = append(opts, botflow.WithCRM(crm.New(base, os.Getenv("BOTFLOW_CRM_TOKEN"), crm.WithLogger(logger))))
	} else {
		logger.Warn("BOTFLOW_CRM_URL not set; action and booking nodes will fail")
	}

	return botflow.New(opts...)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
