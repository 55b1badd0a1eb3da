// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/frontpanel-project/frontpanel/lib/codec"
	"github.com/frontpanel-project/frontpanel/lib/testutil"
)

func testSocketPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.sock")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startServer runs the server in the background and waits until the
// socket file is connectable. The server is shut down via t.Cleanup.
func startServer(t *testing.T, server *SocketServer, socketPath string) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := server.Serve(ctx); err != nil {
			t.Errorf("Serve: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		testutil.Closed(t, done, 5*time.Second, "server shutdown")
	})

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.Dial("unix", socketPath)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("server never started listening")
}

// sendRaw connects to the socket, writes an arbitrary CBOR value, and
// returns the decoded response envelope. Used for malformed-request
// tests that Client cannot produce.
func sendRaw(t *testing.T, socketPath string, request any) Response {
	t.Helper()

	conn, err := net.DialTimeout("unix", socketPath, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to socket: %v", err)
	}
	defer conn.Close()

	if err := codec.NewEncoder(conn).Encode(request); err != nil {
		t.Fatalf("writing request: %v", err)
	}
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	var response Response
	if err := codec.NewDecoder(conn).Decode(&response); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return response
}

func TestCallRoundTrip(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	server.Handle(ActionStatus, func(ctx context.Context, request Request) (any, error) {
		return StatusInfo{
			Attached:   true,
			DevicePath: "/dev/bus/usb/001/007",
			InFlight:   3,
			Buffer:     []byte{0x7f, 0x00},
		}, nil
	})
	startServer(t, server, socketPath)

	var status StatusInfo
	client := NewClient(socketPath)
	if err := client.Call(context.Background(), Request{Action: ActionStatus}, &status); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !status.Attached || status.InFlight != 3 {
		t.Fatalf("status = %+v", status)
	}
	if status.DevicePath != "/dev/bus/usb/001/007" {
		t.Fatalf("device path = %q", status.DevicePath)
	}
	if len(status.Buffer) != 2 || status.Buffer[0] != 0x7f {
		t.Fatalf("buffer = %v", status.Buffer)
	}
}

func TestCallNoData(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	server.Handle(ActionResume, func(ctx context.Context, request Request) (any, error) {
		return nil, nil
	})
	startServer(t, server, socketPath)

	client := NewClient(socketPath)
	if err := client.Call(context.Background(), Request{Action: ActionResume}, nil); err != nil {
		t.Fatalf("Call: %v", err)
	}
}

func TestCallHandlerError(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	server.Handle(ActionReset, func(ctx context.Context, request Request) (any, error) {
		return nil, fmt.Errorf("device gone")
	})
	startServer(t, server, socketPath)

	client := NewClient(socketPath)
	err := client.Call(context.Background(), Request{Action: ActionReset}, nil)

	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("err = %v, want *CallError", err)
	}
	if callErr.Action != ActionReset || callErr.Message != "device gone" {
		t.Fatalf("callErr = %+v", callErr)
	}
}

func TestUnknownAction(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	startServer(t, server, socketPath)

	client := NewClient(socketPath)
	err := client.Call(context.Background(), Request{Action: "defrobnicate"}, nil)

	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("err = %v, want *CallError", err)
	}
}

func TestMissingAction(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	startServer(t, server, socketPath)

	response := sendRaw(t, socketPath, map[string]any{"payload": []byte{1}})
	if response.OK {
		t.Fatal("request without an action succeeded")
	}
}

func TestRequestPayloadReachesHandler(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())

	received := make(chan []byte, 1)
	server.Handle(ActionDisplay, func(ctx context.Context, request Request) (any, error) {
		received <- request.Payload
		return nil, nil
	})
	startServer(t, server, socketPath)

	payload := []byte{0xff, 0x80, 0x00, 0x40}
	client := NewClient(socketPath)
	if err := client.Call(context.Background(), Request{Action: ActionDisplay, Payload: payload}, nil); err != nil {
		t.Fatalf("Call: %v", err)
	}

	got := testutil.Receive(t, received, 5*time.Second, "handler payload")
	if string(got) != string(payload) {
		t.Fatalf("payload = %v, want %v", got, payload)
	}
}

func TestDuplicateHandlerPanics(t *testing.T) {
	server := NewSocketServer(testSocketPath(t), testLogger())
	server.Handle(ActionStatus, func(ctx context.Context, request Request) (any, error) { return nil, nil })

	defer func() {
		if recover() == nil {
			t.Fatal("duplicate Handle did not panic")
		}
	}()
	server.Handle(ActionStatus, func(ctx context.Context, request Request) (any, error) { return nil, nil })
}
