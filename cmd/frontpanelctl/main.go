// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

// frontpanelctl sends one control action to a running frontpaneld and
// prints the response.
//
// Usage:
//
//	frontpanelctl [--socket PATH] status
//	frontpanelctl [--socket PATH] suspend | resume | reset
//	frontpanelctl [--socket PATH] display <hex-payload>
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

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
	socketPath := pflag.String("socket", config.DefaultControlSocket, "frontpaneld control socket path")
	showVersion := pflag.Bool("version", false, "print version and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Printf("frontpanelctl %s\n", version.Info())
		return nil
	}

	args := pflag.Args()
	if len(args) == 0 {
		return fmt.Errorf("usage: frontpanelctl [--socket PATH] <status|suspend|resume|reset|display> [hex-payload]")
	}

	request, err := buildRequest(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := ipc.NewClient(*socketPath)
	switch request.Action {
	case ipc.ActionStatus:
		var status ipc.StatusInfo
		if err := client.Call(ctx, request, &status); err != nil {
			return err
		}
		printStatus(status)

	case ipc.ActionDisplay:
		var result ipc.DisplayResult
		if err := client.Call(ctx, request, &result); err != nil {
			return err
		}
		fmt.Printf("wrote %d bytes\n", result.Written)

	default:
		if err := client.Call(ctx, request, nil); err != nil {
			return err
		}
		fmt.Println("ok")
	}
	return nil
}

// buildRequest maps command-line arguments onto a control request.
func buildRequest(args []string) (ipc.Request, error) {
	action := args[0]
	switch action {
	case ipc.ActionStatus, ipc.ActionSuspend, ipc.ActionResume, ipc.ActionReset:
		if len(args) != 1 {
			return ipc.Request{}, fmt.Errorf("%s takes no arguments", action)
		}
		return ipc.Request{Action: action}, nil

	case ipc.ActionDisplay:
		if len(args) != 2 {
			return ipc.Request{}, fmt.Errorf("display takes exactly one hex payload argument")
		}
		payload, err := hex.DecodeString(strings.TrimPrefix(args[1], "0x"))
		if err != nil {
			return ipc.Request{}, fmt.Errorf("decoding payload: %w", err)
		}
		if len(payload) == 0 {
			return ipc.Request{}, fmt.Errorf("payload is empty")
		}
		return ipc.Request{Action: action, Payload: payload}, nil

	default:
		return ipc.Request{}, fmt.Errorf("unknown action %q", action)
	}
}

func printStatus(status ipc.StatusInfo) {
	fmt.Printf("attached:  %v\n", status.Attached)
	if status.Attached {
		fmt.Printf("device:    %s\n", status.DevicePath)
		fmt.Printf("in-flight: %d\n", status.InFlight)
		if status.Disconnected {
			fmt.Printf("state:     disconnected\n")
		}
		if len(status.Buffer) > 0 {
			fmt.Printf("buffer:    %s\n", hex.EncodeToString(status.Buffer))
		}
	}
	fmt.Printf("daemon:    %s, up %s\n", status.Version, time.Duration(status.UptimeSeconds)*time.Second)
}
