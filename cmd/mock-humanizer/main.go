package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/shpitdev/text-humanizer/pkg/mockhumanizer"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	app := &cli.App{
		Name:  "mock-humanizer",
		Usage: "serve a fake humanizer endpoint that echoes its input",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   ":5000",
				Usage:   "Listen address",
				EnvVars: []string{"MOCK_HUMANIZER_ADDR"},
			},
			&cli.IntFlag{
				Name:    "fail-status",
				Usage:   "Reply to every request with this HTTP status and an error envelope",
				EnvVars: []string{"MOCK_HUMANIZER_FAIL_STATUS"},
			},
			&cli.DurationFlag{
				Name:    "delay",
				Usage:   "Hold each reply for this long",
				EnvVars: []string{"MOCK_HUMANIZER_DELAY"},
			},
		},
		Action: func(c *cli.Context) error {
			srv := mockhumanizer.New()
			if status := c.Int("fail-status"); status != 0 {
				srv.FailWith(status, "mock failure")
			}
			srv.Delay(c.Duration("delay"))

			hs := &http.Server{
				Addr:              c.String("addr"),
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				<-c.Context.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = hs.Shutdown(shutdownCtx)
			}()

			logger.WithField("addr", hs.Addr).Infof("mock-humanizer listening on %s", mockhumanizer.Path)
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return cli.Exit("server error: "+err.Error(), 1)
			}
			return nil
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.WithError(err).Error("mock-humanizer failed")
		os.Exit(1)
	}
}
