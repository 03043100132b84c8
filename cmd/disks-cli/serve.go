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

	"github.com/go-bond/disks/inspect"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultListen = "127.0.0.1:7777"

	_HandlerPrefix   = "/disks/"
	_ShutdownTimeout = 5 * time.Second
)

var _FlagListen = &cli.StringFlag{
	Name:     "listen",
	Usage:    "sets http listen address",
	Value:    DefaultListen,
	Required: false,
}

var ServeCommand = &cli.Command{
	Name:  "serve",
	Usage: "serves inspect over http under " + _HandlerPrefix,
	Flags: []cli.Flag{
		_FlagListen,
	},
	Action: func(ctx *cli.Context) error {
		insp, ok := inspect.InspectFromContext(ctx)
		if !ok {
			return fmt.Errorf("inspect is not initialized")
		}

		listen := ctx.String(_FlagListen.Name)
		if cfg := configFromContext(ctx); !ctx.IsSet(_FlagListen.Name) && cfg.Listen != "" {
			listen = cfg.Listen
		}

		return serve(ctx.Context, listen, newServeMux(insp))
	},
}

func newServeMux(insp inspect.Inspect) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(_HandlerPrefix, inspect.NewInspectHandler(insp, logger))
	return mux
}

func serve(ctx context.Context, listen string, handler http.Handler) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server := &http.Server{
		Addr:              listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, egCtx := errgroup.WithContext(sigCtx)
	eg.Go(func() error {
		logger.WithField("listen", listen).Info("serving inspect")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), _ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
