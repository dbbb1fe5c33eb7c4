// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity

import (
	"errors"
	"testing"
)

var testEntries = []Entry{
	{
		IdentityID: "123456789012",
		Name:       "Aasha",
		Mobile:     "+91-9876543210",
		Email:      "aasha@example.org",
	},
	{
		IdentityID: "234567890123",
		Name:       "Ravi Kumar",
		Mobile:     "+91-9123456789",
		Email:      "ravi@example.org",
	},
}

func TestPrecheck(t *testing.T) {
	l := NewLookup(testEntries)

	var tests = []struct {
		name       string
		identityID string
		asserted   string
		want       MatchT
	}{
		{"unknown identity", "999999999999", "Aasha", MatchNoSuchIdentity},
		{"name mismatch", "123456789012", "Asha", MatchNameMismatch},
		{"exact match", "123456789012", "Aasha", Matched},
		{"case insensitive match", "123456789012", "aasha", Matched},
		{"whitespace trimmed", "234567890123", "  Ravi Kumar ", Matched},
		{"identity id is exact", "12345678901", "Aasha", MatchNoSuchIdentity},
	}
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			got, entry := l.Precheck(v.identityID, v.asserted)
			if got != v.want {
				t.Errorf("got %v, want %v", got, v.want)
			}
			if (got == Matched) != (entry != nil) {
				t.Errorf("entry returned on %v", got)
			}
		})
	}
}

func TestChallengeRoundTrip(t *testing.T) {
	g := NewGate()
	entry := testEntries[0]

	d, err := g.IssueChallenge(entry, ChannelMobile)
	if err != nil {
		t.Fatalf("IssueChallenge: %v", err)
	}
	if d.Destination != entry.Mobile {
		t.Errorf("got destination %v, want %v", d.Destination,
			entry.Mobile)
	}
	if len(d.Code) != CodeDigits {
		t.Errorf("got code %q, want %v digits", d.Code, CodeDigits)
	}

	token, err := g.VerifyChallenge(d.Code)
	if err != nil {
		t.Fatalf("VerifyChallenge: %v", err)
	}
	if token.Entry.IdentityID != entry.IdentityID {
		t.Errorf("token scoped to %v, want %v",
			token.Entry.IdentityID, entry.IdentityID)
	}

	// Token is one shot.
	if _, err := g.Redeem(token.Token); err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	if _, err := g.Redeem(token.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("second redeem got %v, want ErrInvalidToken", err)
	}
}

func TestChallengeWrongCode(t *testing.T) {
	g := NewGate()

	d, err := g.IssueChallenge(testEntries[0], ChannelEmail)
	if err != nil {
		t.Fatalf("IssueChallenge: %v", err)
	}

	wrong := "000000"
	if wrong == d.Code {
		wrong = "000001"
	}
	_, err = g.VerifyChallenge(wrong)
	if !errors.Is(err, ErrChallengeMismatch) {
		t.Fatalf("got %v, want ErrChallengeMismatch", err)
	}

	// A failed attempt leaves the challenge outstanding; the correct
	// code still verifies.
	if _, err := g.VerifyChallenge(d.Code); err != nil {
		t.Fatalf("retry with correct code: %v", err)
	}
}

func TestChallengeReissueInvalidatesPrior(t *testing.T) {
	g := NewGate()

	first, err := g.IssueChallenge(testEntries[0], ChannelMobile)
	if err != nil {
		t.Fatalf("IssueChallenge: %v", err)
	}
	second, err := g.IssueChallenge(testEntries[0], ChannelMobile)
	if err != nil {
		t.Fatalf("IssueChallenge: %v", err)
	}

	if first.Code != second.Code {
		_, err = g.VerifyChallenge(first.Code)
		if !errors.Is(err, ErrChallengeMismatch) {
			t.Fatalf("old code got %v, want ErrChallengeMismatch",
				err)
		}
	}
	if _, err := g.VerifyChallenge(second.Code); err != nil {
		t.Fatalf("latest code: %v", err)
	}
}

func TestVerifyWithoutChallenge(t *testing.T) {
	g := NewGate()
	_, err := g.VerifyChallenge("123456")
	if !errors.Is(err, ErrNoChallenge) {
		t.Fatalf("got %v, want ErrNoChallenge", err)
	}
}

func TestChallengeChannels(t *testing.T) {
	g := NewGate()

	entry := Entry{
		IdentityID: "345678901234",
		Name:       "No Contact",
	}
	_, err := g.IssueChallenge(entry, ChannelMobile)
	if !errors.Is(err, ErrInvalidChannel) {
		t.Fatalf("got %v, want ErrInvalidChannel", err)
	}
	_, err = g.IssueChallenge(testEntries[0], ChannelT(99))
	if !errors.Is(err, ErrInvalidChannel) {
		t.Fatalf("got %v, want ErrInvalidChannel", err)
	}
}
