// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"errors"
	"testing"
	"time"
)

func TestElectionPhase(t *testing.T) {
	var (
		start = int64(1700000000)
		end   = start + 3600
	)
	var tests = []struct {
		name   string
		active bool
		now    int64
		want   PhaseT
	}{
		{"before start", true, start - 1, PhaseNotStarted},
		{"at start", true, start, PhaseOpen},
		{"inside bounds", true, start + 10, PhaseOpen},
		{"at end", true, end, PhaseEnded},
		{"past end", true, end + 1, PhaseEnded},
		{"inactive inside bounds", false, start + 10, PhaseEnded},
		{"inactive before start", false, start - 1, PhaseEnded},
	}
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			e := Election{
				ID:        1,
				StartTime: start,
				EndTime:   end,
				Active:    v.active,
			}
			got := e.Phase(time.Unix(v.now, 0))
			if got != v.want {
				t.Errorf("got %v, want %v", got, v.want)
			}
		})
	}
}

func TestGuardErrorReason(t *testing.T) {
	e := GuardError{Op: "castVote", Reason: "already voted"}
	if e.UserReason() != "already voted" {
		t.Errorf("got %q, want ledger reason verbatim", e.UserReason())
	}

	e = GuardError{Op: "castVote"}
	if e.UserReason() == "" {
		t.Error("empty reason must fall back to a generic message")
	}
}

func TestTransportErrorUnwrap(t *testing.T) {
	underlying := errors.New("connection refused")
	var err error = TransportError{
		Op:  "electionCount",
		Err: underlying,
	}
	if !errors.Is(err, underlying) {
		t.Error("transport error did not unwrap to the underlying error")
	}
}

func TestStatusStrings(t *testing.T) {
	// Every defined status, role, and phase has a human readable string.
	for s := StatusNone; s <= StatusWithdrawn; s++ {
		if _, ok := Statuses[s]; !ok {
			t.Errorf("status %v missing from Statuses", uint8(s))
		}
	}
	for r := RoleNone; r <= RoleSuperAdmin; r++ {
		if _, ok := Roles[r]; !ok {
			t.Errorf("role %v missing from Roles", uint8(r))
		}
	}
	for p := PhaseNotStarted; p <= PhaseEnded; p++ {
		if _, ok := Phases[p]; !ok {
			t.Errorf("phase %v missing from Phases", uint8(p))
		}
	}
}
