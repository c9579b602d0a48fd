package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskboardpro/automation/internal/client"
	"github.com/taskboardpro/automation/internal/config"
	"github.com/taskboardpro/automation/internal/database"
	"github.com/taskboardpro/automation/internal/handler"
	"github.com/taskboardpro/automation/internal/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "automation",
		Usage: "Project automation engine for the task board",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:     "database-url",
				Aliases:  []string{"d"},
				Value:    config.DefaultDatabaseURL,
				Usage:    "PostgreSQL database URL",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the automation API server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Value:   config.DefaultPort,
						Usage:   "HTTP server port",
						EnvVars: []string{"PORT"},
					},
					&cli.StringFlag{
						Name:    "board-url",
						Value:   config.DefaultBoardURL,
						Usage:   "Base URL of the task-board backend",
						EnvVars: []string{"BOARD_URL"},
					},
					&cli.StringFlag{
						Name:    "board-token",
						Usage:   "Service token for calls to the board backend",
						EnvVars: []string{"BOARD_TOKEN"},
					},
					&cli.StringFlag{
						Name:     "jwt-secret",
						Usage:    "HS256 secret for verifying user tokens",
						EnvVars:  []string{"JWT_SECRET"},
						Required: true,
					},
					&cli.StringFlag{
						Name:     "service-token",
						Usage:    "Token the board backend presents on event delivery",
						EnvVars:  []string{"SERVICE_TOKEN"},
						Required: true,
					},
				},
				Action: runServe,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func runServe(c *cli.Context) error {
	ctx := c.Context

	port := c.String("port")
	if port == "" {
		port = config.DefaultPort
	}

	db, err := database.New(ctx, c.String("database-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	board := client.NewBoard(c.String("board-url"), c.String("board-token"))
	h := handler.New(db.Pool(), board, c.String("jwt-secret"), c.String("service-token"))

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "server_addr", "http://localhost:"+port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
