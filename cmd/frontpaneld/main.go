// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

// frontpaneld drives the Apple Xserve USB front panel: it attaches to
// the panel, streams per-CPU load onto the LED bargraph four times a
// second, and exposes a CBOR control socket for status, suspend,
// resume, reset, and raw display writes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/frontpanel-project/frontpanel/lib/clock"
	"github.com/frontpanel-project/frontpanel/lib/config"
	"github.com/frontpanel-project/frontpanel/lib/ipc"
	"github.com/frontpanel-project/frontpanel/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := pflag.String("config", "", "path to frontpanel.yaml (default: $FRONTPANEL_CONFIG)")
	showVersion := pflag.Bool("version", false, "print version and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Printf("frontpaneld %s\n", version.Info())
		return nil
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	logger := cfg.Logging.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := newDaemon(cfg, logger, clock.Real())

	server := ipc.NewSocketServer(cfg.ControlSocket, logger)
	d.registerActions(server)

	socketDone := make(chan error, 1)
	go func() {
		socketDone <- server.Serve(ctx)
	}()

	logger.Info("frontpaneld running",
		"version", version.Info(),
		"control_socket", cfg.ControlSocket,
	)

	runErr := d.run(ctx)

	logger.Info("shutting down")
	if err := <-socketDone; err != nil {
		logger.Error("control socket error", "error", err)
	}

	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	return nil
}
