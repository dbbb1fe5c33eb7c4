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

	"github.com/chunav/chunav/identity"
	"github.com/chunav/chunav/ledger"
	"github.com/chunav/chunav/ledger/testledger"
)

// newTestDispatcher returns a dispatcher whose session is connected as the
// provided actor.
func newTestDispatcher(t *testing.T, tl *testledger.TestLedger, actor common.Address) *Dispatcher {
	t.Helper()

	sess := NewSession(tl)
	err := sess.Connect(context.Background(), actor)
	if err != nil {
		t.Fatalf("connect %v: %v", actor.Hex(), err)
	}
	return NewDispatcher(tl, NewSync(tl), sess)
}

// TestVoterLifecycle walks one voter through registration, verification, and
// voting against a single open election.
func TestVoterLifecycle(t *testing.T) {
	var (
		ctx     = context.Background()
		voter   = common.HexToAddress("0x11")
		officer = common.HexToAddress("0x22")
		cand    = common.HexToAddress("0x33")
		t0      = time.Unix(1700000000, 0)
	)

	tl := testledger.New()
	tl.Now = func() time.Time { return t0.Add(10 * time.Second) }
	tl.AddElection(ledger.Election{
		ID:        1,
		Name:      "general",
		StartTime: t0.Unix(),
		EndTime:   t0.Unix() + 3600,
		Active:    true,
	})
	tl.SetAdmin(officer, ledger.RolePollingOfficer, true)
	tl.SetCandidate(ledger.Candidate{
		Address:    cand,
		ElectionID: 1,
		Name:       "candidate",
		Status:     ledger.StatusVerified,
	})

	d := newTestDispatcher(t, tl, voter)
	d.now = tl.Now
	od := newTestDispatcher(t, tl, officer)
	od.now = tl.Now

	// Voting before registering is rejected locally.
	err := d.Vote(ctx, 1, cand)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("vote before registration: got %v, want ValidationError",
			err)
	}

	// Register.
	entry := &identity.Entry{
		IdentityID: "123456789012",
		Name:       "Aasha",
	}
	err = d.Register(ctx, entry, 1)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := d.session.Voter().Status; got != ledger.StatusPending {
		t.Fatalf("status after register: got %v, want %v",
			got, ledger.StatusPending)
	}

	// Registering again while pending is rejected locally.
	err = d.Register(ctx, entry, 1)
	var sce StatusChangeError
	if !errors.As(err, &sce) {
		t.Fatalf("re-register: got %v, want StatusChangeError", err)
	}

	// Officer verifies the registration.
	v, err := od.DecideVoter(ctx, voter, ledger.StatusVerified)
	if err != nil {
		t.Fatalf("decide voter: %v", err)
	}
	if v.Status != ledger.StatusVerified {
		t.Fatalf("decided status: got %v, want %v",
			v.Status, ledger.StatusVerified)
	}

	// Deciding the same record again is rejected locally.
	_, err = od.DecideVoter(ctx, voter, ledger.StatusRejected)
	if !errors.As(err, &sce) {
		t.Fatalf("re-decide: got %v, want StatusChangeError", err)
	}

	// The voter's cached record is stale until an explicit resync.
	if got := d.session.Voter().Status; got != ledger.StatusPending {
		t.Fatalf("status before resync: got %v, want %v",
			got, ledger.StatusPending)
	}
	err = d.session.Resync(ctx)
	if err != nil {
		t.Fatalf("resync: %v", err)
	}

	// Vote.
	err = d.Vote(ctx, 1, cand)
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if !d.session.Voter().HasVoted {
		t.Fatal("hasVoted not reflected after vote")
	}

	// Voting twice is rejected locally.
	err = d.Vote(ctx, 1, cand)
	if !errors.As(err, &ve) {
		t.Fatalf("double vote: got %v, want ValidationError", err)
	}

	// The vote landed on the ledger.
	c, err := tl.CandidateProfile(ctx, 1, cand)
	if err != nil {
		t.Fatalf("candidate profile: %v", err)
	}
	if c.Votes != 1 {
		t.Fatalf("candidate votes: got %v, want 1", c.Votes)
	}
}

func TestDispatchEndedElection(t *testing.T) {
	var (
		ctx   = context.Background()
		voter = common.HexToAddress("0x11")
		t0    = time.Unix(1700000000, 0)
	)

	tl := testledger.New()
	tl.Now = func() time.Time { return t0.Add(2 * time.Hour) }
	tl.AddElection(ledger.Election{
		ID:        1,
		StartTime: t0.Unix(),
		EndTime:   t0.Unix() + 3600,
		Active:    true,
	})

	d := newTestDispatcher(t, tl, voter)
	d.now = tl.Now

	entry := &identity.Entry{IdentityID: "123456789012", Name: "Aasha"}
	err := d.Register(ctx, entry, 1)
	var pe PhaseError
	if !errors.As(err, &pe) {
		t.Fatalf("register after end: got %v, want PhaseError", err)
	}

	_, err = d.Nominate(ctx, 1, "name", "party", "symbol", "")
	if !errors.As(err, &pe) {
		t.Fatalf("nominate after end: got %v, want PhaseError", err)
	}
}

func TestDispatchInFlight(t *testing.T) {
	var (
		voter = common.HexToAddress("0x11")
	)

	tl := testledger.New()
	d := newTestDispatcher(t, tl, voter)

	err := d.begin(voter, ActionRegister, "1")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	// The same action on the same entity is locked out.
	err = d.begin(voter, ActionRegister, "1")
	var ife InFlightError
	if !errors.As(err, &ife) {
		t.Fatalf("duplicate begin: got %v, want InFlightError", err)
	}

	// A different entity or a different action is not.
	err = d.begin(voter, ActionRegister, "2")
	if err != nil {
		t.Fatalf("begin other entity: %v", err)
	}
	err = d.begin(voter, ActionVote, "1")
	if err != nil {
		t.Fatalf("begin other action: %v", err)
	}

	// Completion frees the slot.
	d.end(voter, ActionRegister, "1")
	err = d.begin(voter, ActionRegister, "1")
	if err != nil {
		t.Fatalf("begin after end: %v", err)
	}
}

func TestDispatchAuthorization(t *testing.T) {
	var (
		ctx     = context.Background()
		nobody  = common.HexToAddress("0x11")
		officer = common.HexToAddress("0x22")
		root    = common.HexToAddress("0x33")
	)

	tl := testledger.New()
	tl.SetAdmin(officer, ledger.RolePollingOfficer, true)
	tl.SetAdmin(root, ledger.RoleSuperAdmin, true)
	tl.SetVoter(ledger.Voter{
		Address: nobody,
		Status:  ledger.StatusPending,
	})

	// No role at all.
	d := newTestDispatcher(t, tl, nobody)
	_, err := d.DecideVoter(ctx, nobody, ledger.StatusVerified)
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("decide without role: got %v, want ErrNotAuthorized",
			err)
	}

	// A polling officer cannot reach outside their capability.
	od := newTestDispatcher(t, tl, officer)
	_, err = od.CreateElection(ctx, "general", 100, 200, "north")
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("create election as officer: got %v, "+
			"want ErrNotAuthorized", err)
	}
	_, err = od.GrantRole(ctx, nobody, ledger.RolePollingOfficer)
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("grant role as officer: got %v, want ErrNotAuthorized",
			err)
	}

	// A decision outcome other than Verified or Rejected is rejected.
	_, err = od.DecideVoter(ctx, nobody, ledger.StatusWithdrawn)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("withdraw decision: got %v, want ValidationError", err)
	}

	// Super admin can do all of it.
	rd := newTestDispatcher(t, tl, root)
	elections, err := rd.CreateElection(ctx, "general", 100, 200, "north")
	if err != nil {
		t.Fatalf("create election as super admin: %v", err)
	}
	if len(elections) != 1 {
		t.Fatalf("got %v elections, want 1", len(elections))
	}
	a, err := rd.GrantRole(ctx, nobody, ledger.RoleElectionAuthority)
	if err != nil {
		t.Fatalf("grant role as super admin: %v", err)
	}
	if a.Role != ledger.RoleElectionAuthority || !a.Active {
		t.Fatalf("granted role: got %v active %v", a.Role, a.Active)
	}
	parties, err := rd.AddParty(ctx, "unity", "sun")
	if err != nil {
		t.Fatalf("add party: %v", err)
	}
	if len(parties) != 1 || parties[0].Name != "unity" {
		t.Fatalf("unexpected party registry: %v", parties)
	}
}

func TestDispatchCreateElectionValidation(t *testing.T) {
	var (
		ctx  = context.Background()
		root = common.HexToAddress("0x33")
	)

	tl := testledger.New()
	tl.SetAdmin(root, ledger.RoleSuperAdmin, true)

	d := newTestDispatcher(t, tl, root)

	var ve ValidationError
	_, err := d.CreateElection(ctx, "", 100, 200, "north")
	if !errors.As(err, &ve) {
		t.Fatalf("empty name: got %v, want ValidationError", err)
	}
	_, err = d.CreateElection(ctx, "general", 200, 100, "north")
	if !errors.As(err, &ve) {
		t.Fatalf("inverted bounds: got %v, want ValidationError", err)
	}
}

func TestDispatchEndElection(t *testing.T) {
	var (
		ctx  = context.Background()
		root = common.HexToAddress("0x33")
		t0   = time.Unix(1700000000, 0)
	)

	tl := testledger.New()
	tl.Now = func() time.Time { return t0.Add(time.Minute) }
	tl.SetAdmin(root, ledger.RoleSuperAdmin, true)
	tl.AddElection(ledger.Election{
		ID:        1,
		StartTime: t0.Unix(),
		EndTime:   t0.Unix() + 3600,
		Active:    true,
	})

	d := newTestDispatcher(t, tl, root)
	d.now = tl.Now

	e, err := d.EndElection(ctx, 1)
	if err != nil {
		t.Fatalf("end election: %v", err)
	}
	if e.Active {
		t.Fatal("election still active after end")
	}
	if e.Phase(tl.Now()) != ledger.PhaseEnded {
		t.Fatal("ended election phase not Ended")
	}

	// Ending twice is rejected locally.
	_, err = d.EndElection(ctx, 1)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("double end: got %v, want ValidationError", err)
	}
}

func TestDispatchNominationRoundTrip(t *testing.T) {
	var (
		ctx   = context.Background()
		voter = common.HexToAddress("0x11")
		t0    = time.Unix(1700000000, 0)
	)

	tl := testledger.New()
	tl.Now = func() time.Time { return t0.Add(time.Minute) }
	tl.AddElection(ledger.Election{
		ID:        1,
		StartTime: t0.Unix(),
		EndTime:   t0.Unix() + 3600,
		Active:    true,
	})
	tl.SetVoter(ledger.Voter{
		Address:    voter,
		ElectionID: 1,
		Status:     ledger.StatusVerified,
	})

	d := newTestDispatcher(t, tl, voter)
	d.now = tl.Now

	c, err := d.Nominate(ctx, 1, "Aasha", "unity", "sun", "bio")
	if err != nil {
		t.Fatalf("nominate: %v", err)
	}
	if c.Status != ledger.StatusPending {
		t.Fatalf("nomination status: got %v, want %v",
			c.Status, ledger.StatusPending)
	}

	c, err = d.Withdraw(ctx, 1)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if c.Status != ledger.StatusWithdrawn {
		t.Fatalf("withdrawn status: got %v, want %v",
			c.Status, ledger.StatusWithdrawn)
	}

	// A withdrawn nomination cannot be withdrawn again.
	_, err = d.Withdraw(ctx, 1)
	var sce StatusChangeError
	if !errors.As(err, &sce) {
		t.Fatalf("double withdraw: got %v, want StatusChangeError", err)
	}
}
