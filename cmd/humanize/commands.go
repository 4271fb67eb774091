package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/shpitdev/text-humanizer/internal/batch"
	"github.com/shpitdev/text-humanizer/internal/console"
	"github.com/shpitdev/text-humanizer/internal/dispatch"
	"github.com/shpitdev/text-humanizer/pkg/redact"
)

func processCommand() *cli.Command {
	return &cli.Command{
		Name:  "process",
		Usage: "Process one text read from --text, --file or stdin",
		Flags: append(optionFlags(),
			&cli.StringFlag{
				Name:  "text",
				Usage: "Text to process",
			},
			&cli.PathFlag{
				Name:  "file",
				Usage: "Read the text from this file",
			},
		),
		Action: func(c *cli.Context) error {
			cfg, client, err := loadClient(c)
			if err != nil {
				return err
			}
			text, err := readText(c)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}

			d := dispatch.New(client, dispatch.Options{
				Logger:      newLogger(c.App.ErrWriter),
				MinInterval: cfg.MinInterval,
			})
			surface := console.NewSurface(c.App.Writer, c.App.ErrWriter, c.Bool("no-color"))

			in := inputFromFlags(c)
			in.Text = text
			outcome, err := d.Dispatch(c.Context, in, surface).Wait(c.Context)
			if err != nil {
				return err
			}
			switch outcome.State {
			case dispatch.Succeeded:
				return nil
			case dispatch.Aborted:
				return cli.Exit("", 2)
			case dispatch.Rejected:
				return cli.Exit(dispatch.BusyAlert, 1)
			default:
				return cli.Exit("", 1)
			}
		},
	}
}

func replCommand() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "Interactively process one line at a time",
		Flags: optionFlags(),
		Action: func(c *cli.Context) error {
			cfg, client, err := loadClient(c)
			if err != nil {
				return err
			}
			r := &console.REPL{
				Dispatcher: dispatch.New(client, dispatch.Options{
					Logger:      newLogger(c.App.ErrWriter),
					MinInterval: cfg.MinInterval,
				}),
				Surface: console.NewSurface(c.App.Writer, c.App.ErrWriter, c.Bool("no-color")),
				Options: inputFromFlags(c),
				Info:    c.App.ErrWriter,
			}
			return r.Run(c.Context, c.App.Reader)
		},
	}
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "Process every row of a CSV file's \"text\" column",
		Flags: append(optionFlags(),
			&cli.PathFlag{
				Name:     "input",
				Usage:    "Input CSV file path (must include a 'text' column)",
				Required: true,
			},
			&cli.PathFlag{
				Name:     "output",
				Usage:    "Output CSV file path",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "workers",
				Value:   4,
				Usage:   "Number of concurrent requests",
				EnvVars: []string{"WORKERS"},
			},
			&cli.DurationFlag{
				Name:    "request-timeout",
				Value:   30 * time.Second,
				Usage:   "Per-text request timeout",
				EnvVars: []string{"REQUEST_TIMEOUT"},
			},
			&cli.Float64Flag{
				Name:    "rate-limit-rps",
				Usage:   "Global request rate limit (RPS), 0 disables",
				EnvVars: []string{"RATE_LIMIT_RPS"},
			},
			&cli.BoolFlag{
				Name:    "fail-fast",
				Usage:   "Stop on the first failed text",
				EnvVars: []string{"FAIL_FAST"},
			},
		),
		Action: func(c *cli.Context) error {
			_, client, err := loadClient(c)
			if err != nil {
				return err
			}
			logger := newLogger(c.App.ErrWriter)

			f, err := os.Open(c.Path("input"))
			if err != nil {
				return cli.Exit(fmt.Sprintf("open input: %s", err), 2)
			}
			texts, err := batch.ReadTextsCSV(f)
			_ = f.Close()
			if err != nil {
				return cli.Exit(fmt.Sprintf("read input: %s", err), 2)
			}

			in := inputFromFlags(c)
			rows, err := batch.Run(c.Context, texts, client, batch.Options{
				Workers:        c.Int("workers"),
				RequestTimeout: c.Duration("request-timeout"),
				RateLimitRPS:   c.Float64("rate-limit-rps"),
				FailFast:       c.Bool("fail-fast"),
				Template:       in.Request().Options,
				Logger:         logger,
			})
			if err != nil {
				return cli.Exit("batch run failed: "+redact.Secrets(err.Error()), 1)
			}

			if err := writeRows(c.Path("output"), rows); err != nil {
				return cli.Exit(err.Error(), 1)
			}

			failed := 0
			for _, row := range rows {
				if row.Status != batch.StatusOK {
					failed++
				}
			}
			logger.WithField("rows", len(rows)).WithField("failed", failed).Info("batch complete")
			return nil
		},
	}
}

func writeRows(path string, rows []batch.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := batch.WriteCSV(f, rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write output: %w", err)
	}
	return f.Close()
}

func inputFromFlags(c *cli.Context) dispatch.Input {
	return dispatch.Input{
		AddErrors:        c.Bool("add-errors"),
		KeepProfessional: c.Bool("keep-professional"),
		VocabularyLevel:  c.String("vocabulary-level"),
	}
}

// readText returns the text verbatim; validation is the dispatcher's job.
func readText(c *cli.Context) (string, error) {
	if c.IsSet("text") && c.IsSet("file") {
		return "", fmt.Errorf("--text and --file are mutually exclusive")
	}
	if c.IsSet("text") {
		return c.String("text"), nil
	}
	if c.IsSet("file") {
		b, err := os.ReadFile(c.Path("file"))
		if err != nil {
			return "", fmt.Errorf("read --file: %w", err)
		}
		return string(b), nil
	}
	b, err := io.ReadAll(c.App.Reader)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), nil
}
