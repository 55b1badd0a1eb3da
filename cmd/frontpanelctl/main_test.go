// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"

	"github.com/frontpanel-project/frontpanel/lib/ipc"
)

func TestBuildRequestSimpleActions(t *testing.T) {
	for _, action := range []string{"status", "suspend", "resume", "reset"} {
		request, err := buildRequest([]string{action})
		if err != nil {
			t.Errorf("%s: %v", action, err)
			continue
		}
		if request.Action != action || request.Payload != nil {
			t.Errorf("%s: request = %+v", action, request)
		}
	}
}

func TestBuildRequestRejectsExtraArgs(t *testing.T) {
	if _, err := buildRequest([]string{"reset", "now"}); err == nil {
		t.Fatal("reset with an argument succeeded")
	}
}

func TestBuildRequestDisplay(t *testing.T) {
	request, err := buildRequest([]string{"display", "0xff00a5"})
	if err != nil {
		t.Fatalf("buildRequest: %v", err)
	}
	if request.Action != ipc.ActionDisplay {
		t.Fatalf("action = %q", request.Action)
	}
	want := []byte{0xff, 0x00, 0xa5}
	if len(request.Payload) != len(want) || request.Payload[2] != 0xa5 {
		t.Fatalf("payload = %v, want %v", request.Payload, want)
	}
}

func TestBuildRequestDisplayBadPayload(t *testing.T) {
	cases := [][]string{
		{"display"},
		{"display", "zzzz"},
		{"display", ""},
		{"display", "ff", "00"},
	}
	for _, args := range cases {
		if _, err := buildRequest(args); err == nil {
			t.Errorf("buildRequest(%v) succeeded", args)
		}
	}
}

func TestBuildRequestUnknownAction(t *testing.T) {
	if _, err := buildRequest([]string{"blink"}); err == nil {
		t.Fatal("unknown action succeeded")
	}
}
