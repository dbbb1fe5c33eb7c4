// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-test/deep"

	"github.com/chunav/chunav/ledger"
	"github.com/chunav/chunav/ledger/testledger"
)

func newTestSync(t *testing.T) (*Sync, *testledger.TestLedger) {
	t.Helper()
	tl := testledger.New()
	return NewSync(tl), tl
}

func TestElectionsAllOrNothing(t *testing.T) {
	s, tl := newTestSync(t)
	now := time.Now().Unix()
	tl.AddElection(ledger.Election{
		ID:        1,
		Name:      "general",
		StartTime: now,
		EndTime:   now + 3600,
		Active:    true,
	})
	tl.AddElection(ledger.Election{
		ID:        2,
		Name:      "municipal",
		StartTime: now,
		EndTime:   now + 3600,
		Active:    true,
	})

	elections, err := s.Elections(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elections) != 2 {
		t.Fatalf("got %v elections, want 2", len(elections))
	}
	if elections[0].ID != 1 || elections[1].ID != 2 {
		t.Errorf("elections out of order: %v, %v",
			elections[0].ID, elections[1].ID)
	}

	// A single failed detail fetch must abort the whole refresh.
	tl.FailElectionDetails[2] = errors.New("read timeout")
	_, err = s.Elections(context.Background())
	if err == nil {
		t.Fatal("expected refresh to fail")
	}
}

func TestPendingVotersPrimary(t *testing.T) {
	s, tl := newTestSync(t)
	alice := common.HexToAddress("0x01")
	bob := common.HexToAddress("0x02")
	tl.SetVoter(ledger.Voter{
		Address:    alice,
		ElectionID: 1,
		Status:     ledger.StatusPending,
	})
	tl.SetVoter(ledger.Voter{
		Address:    bob,
		ElectionID: 2,
		Status:     ledger.StatusPending,
	})

	voters, err := s.PendingVoters(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(voters) != 1 || voters[0].Address != alice {
		t.Fatalf("got %v, want only %v", voters, alice.Hex())
	}

	// electionID 0 means all elections.
	voters, err = s.PendingVoters(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(voters) != 2 {
		t.Fatalf("got %v voters, want 2", len(voters))
	}
}

func TestPendingVotersScanFallback(t *testing.T) {
	s, tl := newTestSync(t)

	// Disable the primary enumeration so that the registration scan is
	// exercised.
	tl.FailPendingVoters = errors.New("enumeration reverted")

	alice := common.HexToAddress("0x01")
	bob := common.HexToAddress("0x02")
	carol := common.HexToAddress("0x03")
	dave := common.HexToAddress("0x04")

	// Alice registered twice; only the most recent notification counts.
	tl.AddRegistration(ledger.Registration{Voter: alice, ElectionID: 2})
	tl.AddRegistration(ledger.Registration{Voter: bob, ElectionID: 1})
	tl.AddRegistration(ledger.Registration{Voter: carol, ElectionID: 1})
	tl.AddRegistration(ledger.Registration{Voter: dave, ElectionID: 1})
	tl.AddRegistration(ledger.Registration{Voter: alice, ElectionID: 1})

	tl.SetVoter(ledger.Voter{
		Address:    alice,
		ElectionID: 1,
		Status:     ledger.StatusPending,
	})
	tl.SetVoter(ledger.Voter{
		Address:    bob,
		ElectionID: 1,
		Status:     ledger.StatusVerified,
	})
	tl.SetVoter(ledger.Voter{
		Address:    carol,
		ElectionID: 1,
		Status:     ledger.StatusPending,
	})
	tl.SetVoter(ledger.Voter{
		Address:    dave,
		ElectionID: 1,
		Status:     ledger.StatusPending,
	})

	// Dave's status lookup fails; he is skipped, not fatal.
	tl.FailVoterStatus[dave] = errors.New("read timeout")

	voters, err := s.PendingVoters(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []common.Address
	for _, v := range voters {
		got = append(got, v.Address)
	}
	want := []common.Address{alice, carol}
	if diff := deep.Equal(got, want); diff != nil {
		t.Error(diff)
	}
}

func TestPendingVotersAllSourcesFail(t *testing.T) {
	s, tl := newTestSync(t)
	tl.FailPendingVoters = errors.New("enumeration reverted")
	tl.ScanUnsupported = true

	_, err := s.PendingVoters(context.Background(), 0)
	if err == nil {
		t.Fatal("expected all sources to fail")
	}
	if !errors.Is(err, ledger.ErrScanUnsupported) {
		t.Errorf("expected ErrScanUnsupported, got %v", err)
	}
}

func TestBallot(t *testing.T) {
	s, tl := newTestSync(t)
	a := common.HexToAddress("0x0a")
	b := common.HexToAddress("0x0b")
	c := common.HexToAddress("0x0c")
	tl.SetCandidate(ledger.Candidate{
		Address:    a,
		ElectionID: 1,
		Status:     ledger.StatusVerified,
		Votes:      3,
	})
	tl.SetCandidate(ledger.Candidate{
		Address:    b,
		ElectionID: 1,
		Status:     ledger.StatusPending,
	})
	tl.SetCandidate(ledger.Candidate{
		Address:    c,
		ElectionID: 1,
		Status:     ledger.StatusVerified,
		Votes:      7,
	})

	ballot, err := s.Ballot(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []common.Address
	for _, cand := range ballot {
		got = append(got, cand.Address)
	}
	want := []common.Address{c, a}
	if diff := deep.Equal(got, want); diff != nil {
		t.Error(diff)
	}
}
