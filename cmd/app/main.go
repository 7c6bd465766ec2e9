package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/atvirokodosprendimai/employees/internal/adapters/external"
	"github.com/atvirokodosprendimai/employees/internal/app"
)

func main() {
	cmd := &cli.Command{
		Name:  "employees",
		Usage: "Employee records JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   ":8080",
				Sources: cli.EnvVars("EMPLOYEES_ADDR"),
				Usage:   "HTTP listen address",
			},
			&cli.StringFlag{
				Name:    "store",
				Value:   app.StoreMemory,
				Sources: cli.EnvVars("EMPLOYEES_STORE"),
				Usage:   "Employee store backend: memory or sqlite",
			},
			&cli.StringFlag{
				Name:    "db-path",
				Sources: cli.EnvVars("EMPLOYEES_DB_PATH"),
				Usage:   "SQLite file path for --store=sqlite (empty keeps the database in memory)",
			},
			&cli.StringFlag{
				Name:    "quote-url",
				Value:   external.DefaultQuoteURL,
				Sources: cli.EnvVars("EMPLOYEES_QUOTE_URL"),
				Usage:   "Endpoint returning a JSON array with one quote",
			},
			&cli.StringFlag{
				Name:    "joke-url",
				Value:   external.DefaultJokeURL,
				Sources: cli.EnvVars("EMPLOYEES_JOKE_URL"),
				Usage:   "Endpoint returning a JSON object with a joke field",
			},
			&cli.DurationFlag{
				Name:    "external-timeout",
				Value:   2 * time.Second,
				Sources: cli.EnvVars("EMPLOYEES_EXTERNAL_TIMEOUT"),
				Usage:   "Timeout for each quote/joke request before the fallback is used",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Sources: cli.EnvVars("EMPLOYEES_LOG_LEVEL"),
				Usage:   "Log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Sources: cli.EnvVars("EMPLOYEES_LOG_FORMAT"),
				Usage:   "Log format: text or json",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			log, err := app.NewLogger(c.String("log-level"), c.String("log-format"), os.Stderr)
			if err != nil {
				return err
			}

			cfg := app.Config{
				Addr:            c.String("addr"),
				Store:           c.String("store"),
				DBPath:          c.String("db-path"),
				QuoteURL:        c.String("quote-url"),
				JokeURL:         c.String("joke-url"),
				ExternalTimeout: c.Duration("external-timeout"),
			}

			server, closer, err := app.NewServer(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			defer func() {
				if closeErr := closer.Close(); closeErr != nil {
					log.WithError(closeErr).Error("close resources")
				}
			}()

			errCh := make(chan error, 1)
			go func() {
				log.WithField("addr", cfg.Addr).Info("listening")
				errCh <- server.ListenAndServe()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case <-ctx.Done():
				return shutdown(server)
			case sig := <-sigCh:
				log.WithField("signal", sig.String()).Info("shutting down")
				return shutdown(server)
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
