// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import "testing"

func TestRandomCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := RandomCode(6)
		if err != nil {
			t.Fatalf("RandomCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("got %q, want 6 digits", code)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("got %q, want digits only", code)
			}
		}
	}
}

func TestRandom(t *testing.T) {
	b, err := Random(32)
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	if len(b) != 32 {
		t.Fatalf("got %v bytes, want 32", len(b))
	}
}
