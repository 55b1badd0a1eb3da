// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]int{"zebra": 1, "alpha": 2, "mid": 3}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("same value produced different encodings:\n%x\n%x", first, second)
	}
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	encoded, err := Marshal(map[string]any{
		"action": "status",
		"future": "field",
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded struct {
		Action string `cbor:"action"`
	}
	if err := Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Action != "status" {
		t.Fatalf("Action = %q, want %q", decoded.Action, "status")
	}
}

func TestAnyTargetDecodesToStringKeyedMap(t *testing.T) {
	encoded, err := Marshal(map[string]any{"key": "value"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded any
	if err := Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	m, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded type %T, want map[string]any", decoded)
	}
	if m["key"] != "value" {
		t.Fatalf("m[key] = %v, want %q", m["key"], "value")
	}
}

func TestStreamEncoderDecoderRoundTrip(t *testing.T) {
	var buffer bytes.Buffer
	if err := NewEncoder(&buffer).Encode(map[string]string{"action": "suspend"}); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var decoded struct {
		Action string `cbor:"action"`
	}
	if err := NewDecoder(&buffer).Decode(&decoded); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Action != "suspend" {
		t.Fatalf("Action = %q, want %q", decoded.Action, "suspend")
	}
}
