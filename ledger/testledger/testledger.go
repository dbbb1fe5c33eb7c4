// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package testledger provides an in-memory ledger implementation for use in
// tests. It enforces the same guards as the production ledger so that
// workflow code can be exercised against realistic rejections, and it
// records registration notifications so that the event-scan fallback can be
// tested. Failures can be injected per operation to simulate transport
// problems.
package testledger

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chunav/chunav/ledger"
)

type candidateKey struct {
	electionID uint64
	address    common.Address
}

// TestLedger is an in-memory ledger.Ledger. The exported Fail* fields can
// be set to inject read failures; writes that fail a guard return a
// ledger.GuardError with the same reasons the production contract reports.
type TestLedger struct {
	sync.Mutex

	elections     map[uint64]*ledger.Election
	voters        map[common.Address]*ledger.Voter
	candidates    map[candidateKey]*ledger.Candidate
	admins        map[common.Address]*ledger.Admin
	parties       []ledger.Party
	registrations []ledger.Registration
	electionCount uint64

	// Now supplies the current time for phase guards. Defaults to
	// time.Now.
	Now func() time.Time

	// ScanUnsupported makes Registrations return ErrScanUnsupported.
	ScanUnsupported bool

	// Injected read failures.
	FailElectionCount   error
	FailElectionDetails map[uint64]error
	FailPendingVoters   error
	FailVoterStatus     map[common.Address]error
	FailRegistrations   error
}

// New returns an empty TestLedger.
func New() *TestLedger {
	return &TestLedger{
		elections:           make(map[uint64]*ledger.Election),
		voters:              make(map[common.Address]*ledger.Voter),
		candidates:          make(map[candidateKey]*ledger.Candidate),
		admins:              make(map[common.Address]*ledger.Admin),
		FailElectionDetails: make(map[uint64]error),
		FailVoterStatus:     make(map[common.Address]error),
		Now:                 time.Now,
	}
}

// AddElection inserts an election directly, bypassing guards. Test setup
// only.
func (t *TestLedger) AddElection(e ledger.Election) {
	t.Lock()
	defer t.Unlock()

	if e.ID > t.electionCount {
		t.electionCount = e.ID
	}
	c := e
	t.elections[e.ID] = &c
}

// SetAdmin inserts an admin role tuple directly, bypassing guards. Test
// setup only.
func (t *TestLedger) SetAdmin(addr common.Address, role ledger.RoleT, active bool) {
	t.Lock()
	defer t.Unlock()

	t.admins[addr] = &ledger.Admin{
		Role:   role,
		Active: active,
	}
}

// SetVoter inserts a voter record directly, bypassing guards. Test setup
// only.
func (t *TestLedger) SetVoter(v ledger.Voter) {
	t.Lock()
	defer t.Unlock()

	c := v
	t.voters[v.Address] = &c
}

// SetCandidate inserts a candidate record directly, bypassing guards. Test
// setup only.
func (t *TestLedger) SetCandidate(c ledger.Candidate) {
	t.Lock()
	defer t.Unlock()

	cc := c
	t.candidates[candidateKey{c.ElectionID, c.Address}] = &cc
}

// AddRegistration appends a registration notification directly. Test setup
// only.
func (t *TestLedger) AddRegistration(r ledger.Registration) {
	t.Lock()
	defer t.Unlock()

	t.registrations = append(t.registrations, r)
}

func (t *TestLedger) hasCapability(actor common.Address, roles ...ledger.RoleT) bool {
	a, ok := t.admins[actor]
	if !ok || !a.Active {
		return false
	}
	if a.Role == ledger.RoleSuperAdmin {
		return true
	}
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

func (t *TestLedger) phase(electionID uint64) (ledger.PhaseT, bool) {
	e, ok := t.elections[electionID]
	if !ok {
		return ledger.PhaseEnded, false
	}
	return e.Phase(t.Now()), true
}

// ElectionCount satisfies the ledger.Ledger interface.
func (t *TestLedger) ElectionCount(ctx context.Context) (uint64, error) {
	t.Lock()
	defer t.Unlock()

	if t.FailElectionCount != nil {
		return 0, t.FailElectionCount
	}
	return t.electionCount, nil
}

// ElectionDetails satisfies the ledger.Ledger interface.
func (t *TestLedger) ElectionDetails(ctx context.Context, electionID uint64) (*ledger.Election, error) {
	t.Lock()
	defer t.Unlock()

	if err, ok := t.FailElectionDetails[electionID]; ok {
		return nil, err
	}
	e, ok := t.elections[electionID]
	if !ok {
		return nil, ledger.GuardError{
			Op:     "getElectionDetails",
			Reason: "election does not exist",
		}
	}
	c := *e
	return &c, nil
}

// ElectionCandidates satisfies the ledger.Ledger interface.
func (t *TestLedger) ElectionCandidates(ctx context.Context, electionID uint64) ([]ledger.Candidate, error) {
	t.Lock()
	defer t.Unlock()

	var cs []ledger.Candidate
	for k, c := range t.candidates {
		if k.electionID == electionID {
			cs = append(cs, *c)
		}
	}
	return cs, nil
}

// CandidateProfile satisfies the ledger.Ledger interface.
func (t *TestLedger) CandidateProfile(ctx context.Context, electionID uint64, candidate common.Address) (*ledger.Candidate, error) {
	t.Lock()
	defer t.Unlock()

	c, ok := t.candidates[candidateKey{electionID, candidate}]
	if !ok {
		return &ledger.Candidate{
			Address:    candidate,
			ElectionID: electionID,
			Status:     ledger.StatusNone,
		}, nil
	}
	cc := *c
	return &cc, nil
}

// VoterStatus satisfies the ledger.Ledger interface.
func (t *TestLedger) VoterStatus(ctx context.Context, voter common.Address) (*ledger.Voter, error) {
	t.Lock()
	defer t.Unlock()

	if err, ok := t.FailVoterStatus[voter]; ok {
		return nil, err
	}
	v, ok := t.voters[voter]
	if !ok {
		return &ledger.Voter{
			Address: voter,
			Status:  ledger.StatusNone,
		}, nil
	}
	c := *v
	return &c, nil
}

// AdminRole satisfies the ledger.Ledger interface.
func (t *TestLedger) AdminRole(ctx context.Context, admin common.Address) (*ledger.Admin, error) {
	t.Lock()
	defer t.Unlock()

	a, ok := t.admins[admin]
	if !ok {
		return &ledger.Admin{
			Role:   ledger.RoleNone,
			Active: false,
		}, nil
	}
	c := *a
	return &c, nil
}

// PendingVoters satisfies the ledger.Ledger interface.
func (t *TestLedger) PendingVoters(ctx context.Context) ([]ledger.Voter, error) {
	t.Lock()
	defer t.Unlock()

	if t.FailPendingVoters != nil {
		return nil, t.FailPendingVoters
	}
	var vs []ledger.Voter
	for _, v := range t.voters {
		if v.Status == ledger.StatusPending {
			vs = append(vs, *v)
		}
	}
	return vs, nil
}

// Registrations satisfies the ledger.Ledger interface.
func (t *TestLedger) Registrations(ctx context.Context) ([]ledger.Registration, error) {
	t.Lock()
	defer t.Unlock()

	if t.ScanUnsupported {
		return nil, ledger.ErrScanUnsupported
	}
	if t.FailRegistrations != nil {
		return nil, t.FailRegistrations
	}
	rs := make([]ledger.Registration, len(t.registrations))
	copy(rs, t.registrations)
	return rs, nil
}

// Parties satisfies the ledger.Ledger interface.
func (t *TestLedger) Parties(ctx context.Context) ([]ledger.Party, error) {
	t.Lock()
	defer t.Unlock()

	ps := make([]ledger.Party, len(t.parties))
	copy(ps, t.parties)
	return ps, nil
}

// RegisterVoter satisfies the ledger.Ledger interface.
func (t *TestLedger) RegisterVoter(ctx context.Context, actor common.Address, name, identityRef string, electionID uint64) error {
	t.Lock()
	defer t.Unlock()

	phase, ok := t.phase(electionID)
	if !ok {
		return ledger.GuardError{
			Op:     "registerVoter",
			Reason: "election does not exist",
		}
	}
	if phase == ledger.PhaseEnded {
		return ledger.GuardError{
			Op:     "registerVoter",
			Reason: "election ended",
		}
	}
	if v, ok := t.voters[actor]; ok && v.Status != ledger.StatusNone {
		return ledger.GuardError{
			Op:     "registerVoter",
			Reason: "already registered",
		}
	}
	t.voters[actor] = &ledger.Voter{
		Address:     actor,
		Name:        name,
		IdentityRef: identityRef,
		ElectionID:  electionID,
		Status:      ledger.StatusPending,
	}
	t.registrations = append(t.registrations, ledger.Registration{
		Voter:      actor,
		Name:       name,
		ElectionID: electionID,
	})
	return nil
}

// SubmitNomination satisfies the ledger.Ledger interface.
func (t *TestLedger) SubmitNomination(ctx context.Context, actor common.Address, electionID uint64, name, party, symbol, bio string) error {
	t.Lock()
	defer t.Unlock()

	phase, ok := t.phase(electionID)
	if !ok {
		return ledger.GuardError{
			Op:     "submitNomination",
			Reason: "election does not exist",
		}
	}
	if phase == ledger.PhaseEnded {
		return ledger.GuardError{
			Op:     "submitNomination",
			Reason: "election ended",
		}
	}
	key := candidateKey{electionID, actor}
	if c, ok := t.candidates[key]; ok && c.Status != ledger.StatusNone {
		return ledger.GuardError{
			Op:     "submitNomination",
			Reason: "already nominated",
		}
	}
	t.candidates[key] = &ledger.Candidate{
		Address:    actor,
		ElectionID: electionID,
		Name:       name,
		Party:      party,
		Symbol:     symbol,
		Bio:        bio,
		Status:     ledger.StatusPending,
	}
	if e, ok := t.elections[electionID]; ok {
		e.CandidateCount++
	}
	return nil
}

// WithdrawNomination satisfies the ledger.Ledger interface.
func (t *TestLedger) WithdrawNomination(ctx context.Context, actor common.Address, electionID uint64) error {
	t.Lock()
	defer t.Unlock()

	c, ok := t.candidates[candidateKey{electionID, actor}]
	if !ok || c.Status == ledger.StatusNone {
		return ledger.GuardError{
			Op:     "withdrawNomination",
			Reason: "no nomination found",
		}
	}
	if c.Status != ledger.StatusPending && c.Status != ledger.StatusVerified {
		return ledger.GuardError{
			Op:     "withdrawNomination",
			Reason: "nomination already decided",
		}
	}
	c.Status = ledger.StatusWithdrawn
	return nil
}

// CastVote satisfies the ledger.Ledger interface.
func (t *TestLedger) CastVote(ctx context.Context, actor common.Address, electionID uint64, candidate common.Address) error {
	t.Lock()
	defer t.Unlock()

	v, ok := t.voters[actor]
	if !ok || v.Status != ledger.StatusVerified {
		return ledger.GuardError{
			Op:     "castVote",
			Reason: "not a verified voter",
		}
	}
	if v.HasVoted {
		return ledger.GuardError{
			Op:     "castVote",
			Reason: "already voted",
		}
	}
	if v.ElectionID != electionID {
		return ledger.GuardError{
			Op:     "castVote",
			Reason: "not enrolled in this election",
		}
	}
	phase, _ := t.phase(electionID)
	if phase != ledger.PhaseOpen {
		return ledger.GuardError{
			Op:     "castVote",
			Reason: "election not open",
		}
	}
	c, ok := t.candidates[candidateKey{electionID, candidate}]
	if !ok || c.Status != ledger.StatusVerified {
		return ledger.GuardError{
			Op:     "castVote",
			Reason: "candidate not verified",
		}
	}
	v.HasVoted = true
	c.Votes++
	if e, ok := t.elections[electionID]; ok {
		e.TotalVotes++
	}
	return nil
}

// VerifyVoter satisfies the ledger.Ledger interface.
func (t *TestLedger) VerifyVoter(ctx context.Context, actor, voter common.Address, status ledger.StatusT) error {
	t.Lock()
	defer t.Unlock()

	if !t.hasCapability(actor, ledger.RolePollingOfficer) {
		return ledger.GuardError{
			Op:     "verifyVoter",
			Reason: "not authorized",
		}
	}
	if status != ledger.StatusVerified && status != ledger.StatusRejected {
		return ledger.GuardError{
			Op:     "verifyVoter",
			Reason: "invalid status",
		}
	}
	v, ok := t.voters[voter]
	if !ok || v.Status == ledger.StatusNone {
		return ledger.GuardError{
			Op:     "verifyVoter",
			Reason: "voter not registered",
		}
	}
	if v.Status != ledger.StatusPending {
		return ledger.GuardError{
			Op:     "verifyVoter",
			Reason: "registration already decided",
		}
	}
	v.Status = status
	return nil
}

// VerifyCandidate satisfies the ledger.Ledger interface.
func (t *TestLedger) VerifyCandidate(ctx context.Context, actor common.Address, electionID uint64, candidate common.Address, status ledger.StatusT) error {
	t.Lock()
	defer t.Unlock()

	if !t.hasCapability(actor, ledger.RoleLocalityOfficer) {
		return ledger.GuardError{
			Op:     "verifyCandidate",
			Reason: "not authorized",
		}
	}
	if status != ledger.StatusVerified && status != ledger.StatusRejected {
		return ledger.GuardError{
			Op:     "verifyCandidate",
			Reason: "invalid status",
		}
	}
	c, ok := t.candidates[candidateKey{electionID, candidate}]
	if !ok || c.Status == ledger.StatusNone {
		return ledger.GuardError{
			Op:     "verifyCandidate",
			Reason: "no nomination found",
		}
	}
	if c.Status != ledger.StatusPending {
		return ledger.GuardError{
			Op:     "verifyCandidate",
			Reason: "nomination already decided",
		}
	}
	c.Status = status
	return nil
}

// CreateElection satisfies the ledger.Ledger interface.
func (t *TestLedger) CreateElection(ctx context.Context, actor common.Address, name string, startTime, endTime int64, constituency string) error {
	t.Lock()
	defer t.Unlock()

	if !t.hasCapability(actor, ledger.RoleElectionAuthority) {
		return ledger.GuardError{
			Op:     "createElection",
			Reason: "not authorized",
		}
	}
	if startTime >= endTime {
		return ledger.GuardError{
			Op:     "createElection",
			Reason: "invalid time bounds",
		}
	}
	t.electionCount++
	t.elections[t.electionCount] = &ledger.Election{
		ID:           t.electionCount,
		Name:         name,
		Constituency: constituency,
		StartTime:    startTime,
		EndTime:      endTime,
		Active:       true,
	}
	return nil
}

// EndElection satisfies the ledger.Ledger interface.
func (t *TestLedger) EndElection(ctx context.Context, actor common.Address, electionID uint64) error {
	t.Lock()
	defer t.Unlock()

	if !t.hasCapability(actor, ledger.RoleElectionAuthority) {
		return ledger.GuardError{
			Op:     "endElection",
			Reason: "not authorized",
		}
	}
	e, ok := t.elections[electionID]
	if !ok {
		return ledger.GuardError{
			Op:     "endElection",
			Reason: "election does not exist",
		}
	}
	if !e.Active {
		return ledger.GuardError{
			Op:     "endElection",
			Reason: "election already ended",
		}
	}
	e.Active = false
	return nil
}

// AddAdmin satisfies the ledger.Ledger interface.
func (t *TestLedger) AddAdmin(ctx context.Context, actor, admin common.Address, role ledger.RoleT) error {
	t.Lock()
	defer t.Unlock()

	if !t.hasCapability(actor) {
		return ledger.GuardError{
			Op:     "addAdmin",
			Reason: "not authorized",
		}
	}
	if role < ledger.RoleLocalityOfficer || role > ledger.RoleSuperAdmin {
		return ledger.GuardError{
			Op:     "addAdmin",
			Reason: "invalid role",
		}
	}
	t.admins[admin] = &ledger.Admin{
		Role:   role,
		Active: true,
	}
	return nil
}

// AddParty satisfies the ledger.Ledger interface.
func (t *TestLedger) AddParty(ctx context.Context, actor common.Address, name, symbol string) error {
	t.Lock()
	defer t.Unlock()

	if !t.hasCapability(actor, ledger.RoleElectionAuthority) {
		return ledger.GuardError{
			Op:     "addParty",
			Reason: "not authorized",
		}
	}
	t.parties = append(t.parties, ledger.Party{
		Name:   name,
		Symbol: symbol,
	})
	return nil
}
