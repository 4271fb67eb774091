package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/shpitdev/text-humanizer/internal/version"
	"github.com/shpitdev/text-humanizer/pkg/humanizer"
	"github.com/shpitdev/text-humanizer/pkg/redact"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%s\n", redact.Secrets(err.Error()))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "humanize",
		Usage:   "send text to the humanizer service and print the result",
		Version: version.Current,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "endpoint",
				Usage: "Humanizer endpoint URL (env: HUMANIZER_ENDPOINT_URL, default " + humanizer.DefaultEndpointURL + ")",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable coloured terminal output",
			},
		},
		Commands: []*cli.Command{
			processCommand(),
			replCommand(),
			batchCommand(),
		},
	}
}

// optionFlags are shared by every command that builds requests.
func optionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "add-errors",
			Usage: "Ask the service to add human-like typos",
		},
		&cli.BoolFlag{
			Name:  "keep-professional",
			Usage: "Ask the service to keep a professional tone",
		},
		&cli.StringFlag{
			Name:  "vocabulary-level",
			Value: "10",
			Usage: "Vocabulary (grade) level",
		},
	}
}

// newLogger builds the operator-facing diagnostic logger on stderr.
func newLogger(w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(parseLogLevel(os.Getenv("LOG_LEVEL")))
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return logger
}

// parseLogLevel maps LOG_LEVEL to a logrus level, defaulting to warn.
func parseLogLevel(v string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.WarnLevel
	}
}

// loadClient resolves configuration and applies the global --endpoint override.
func loadClient(c *cli.Context) (humanizer.Config, *humanizer.Client, error) {
	cfg, err := humanizer.LoadConfig()
	if err != nil {
		return humanizer.Config{}, nil, cli.Exit("config error: "+redact.Secrets(err.Error()), 2)
	}
	if c.IsSet("endpoint") {
		cfg.EndpointURL = c.String("endpoint")
	}
	client, err := humanizer.NewClient(cfg)
	if err != nil {
		return humanizer.Config{}, nil, cli.Exit("config error: "+redact.Secrets(err.Error()), 2)
	}
	return cfg, client, nil
}
