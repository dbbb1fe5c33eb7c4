// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chunav/chunav/identity"
	"github.com/chunav/chunav/ledger"
)

// ErrNotAuthorized is returned when the connected actor's role does not
// grant the capability an action requires. This is the local pre-guard; the
// ledger enforces the same rule authoritatively.
var ErrNotAuthorized = errors.New("role does not grant this action")

// InFlightError is returned when an action is submitted while the same
// action for the same entity is still awaiting confirmation.
type InFlightError struct {
	Action ActionT
}

// Error satisfies the error interface.
func (e InFlightError) Error() string {
	return fmt.Sprintf("%v is already awaiting confirmation", e.Action)
}

// PhaseError is returned when an action is submitted against an election
// whose derived phase does not permit it.
type PhaseError struct {
	Phase ledger.PhaseT
}

// Error satisfies the error interface.
func (e PhaseError) Error() string {
	return fmt.Sprintf("election is %v", e.Phase)
}

// ValidationError is a local input rejection. No ledger call is made for a
// request that fails validation.
type ValidationError struct {
	Reason string
}

// Error satisfies the error interface.
func (e ValidationError) Error() string {
	return e.Reason
}

type inflightKey struct {
	actor  common.Address
	action ActionT
	entity string
}

// Dispatcher submits state changing actions to the ledger. Every action
// follows the same protocol: local pre-guards, submit, await confirmation,
// then re-derive the affected state with a fresh read. Cached state is
// never mutated on a hopeful basis. While a submission is awaiting
// confirmation the same action for the same entity cannot be submitted
// again.
type Dispatcher struct {
	ledger   ledger.Ledger
	sync     *Sync
	session  *Session
	now      func() time.Time
	inflight chan map[inflightKey]struct{} // Buffered single slot lock
}

// NewDispatcher returns a Dispatcher bound to the provided ledger, sync
// layer, and session.
func NewDispatcher(l ledger.Ledger, s *Sync, sess *Session) *Dispatcher {
	c := make(chan map[inflightKey]struct{}, 1)
	c <- make(map[inflightKey]struct{})
	return &Dispatcher{
		ledger:   l,
		sync:     s,
		session:  sess,
		now:      time.Now,
		inflight: c,
	}
}

// begin marks an action in flight. It fails when the same action for the
// same entity is already awaiting confirmation.
func (d *Dispatcher) begin(actor common.Address, action ActionT, entity string) error {
	key := inflightKey{actor, action, entity}
	m := <-d.inflight
	defer func() { d.inflight <- m }()

	if _, ok := m[key]; ok {
		return InFlightError{Action: action}
	}
	m[key] = struct{}{}
	return nil
}

// end clears an in flight action. It is always called once the submission
// has resolved, confirmed or not; an indeterminate outcome frees the slot
// so that the actor can refresh reads, but the caller is told not to
// resubmit blindly via the TransportError Submitted flag.
func (d *Dispatcher) end(actor common.Address, action ActionT, entity string) {
	key := inflightKey{actor, action, entity}
	m := <-d.inflight
	delete(m, key)
	d.inflight <- m
}

// electionPhase fetches an election and derives its phase at the current
// time. Phase guards are evaluated at submission time, not decision time.
func (d *Dispatcher) electionPhase(ctx context.Context, electionID uint64) (ledger.PhaseT, error) {
	e, err := d.sync.Election(ctx, electionID)
	if err != nil {
		return ledger.PhaseEnded, err
	}
	return e.Phase(d.now()), nil
}

// Register submits a voter registration for the connected actor. The
// identity entry must come from a redeemed registration authorization
// token issued by the identity gate; the raw identity ID never reaches the
// ledger, only its hashed reference does.
func (d *Dispatcher) Register(ctx context.Context, entry *identity.Entry, electionID uint64) error {
	actor, err := d.session.Address()
	if err != nil {
		return err
	}
	if entry == nil {
		return ValidationError{Reason: "registration is not authorized"}
	}

	// Local pre-guards.
	if v := d.session.Voter(); !VoterStatusChangeAllowed(v.Status, ledger.StatusPending) {
		return StatusChangeError{From: v.Status, To: ledger.StatusPending}
	}
	phase, err := d.electionPhase(ctx, electionID)
	if err != nil {
		return err
	}
	if phase == ledger.PhaseEnded {
		return PhaseError{Phase: phase}
	}

	entity := fmt.Sprintf("%v", electionID)
	if err := d.begin(actor, ActionRegister, entity); err != nil {
		return err
	}
	defer d.end(actor, ActionRegister, entity)

	log.Infof("Registering voter %v for election %v", actor.Hex(),
		electionID)

	err = d.ledger.RegisterVoter(ctx, actor, entry.Name, entry.Ref(),
		electionID)
	if err != nil {
		return err
	}

	return d.session.Resync(ctx)
}

// Nominate submits a candidate nomination for the connected actor and
// returns the re-derived nomination record.
func (d *Dispatcher) Nominate(ctx context.Context, electionID uint64, name, party, symbol, bio string) (*ledger.Candidate, error) {
	actor, err := d.session.Address()
	if err != nil {
		return nil, err
	}
	if name == "" || party == "" {
		return nil, ValidationError{Reason: "name and party are required"}
	}

	cur, err := d.ledger.CandidateProfile(ctx, electionID, actor)
	if err != nil {
		return nil, err
	}
	if !CandidateStatusChangeAllowed(cur.Status, ledger.StatusPending) {
		return nil, StatusChangeError{
			From: cur.Status,
			To:   ledger.StatusPending,
		}
	}
	phase, err := d.electionPhase(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if phase == ledger.PhaseEnded {
		return nil, PhaseError{Phase: phase}
	}

	entity := fmt.Sprintf("%v", electionID)
	if err := d.begin(actor, ActionNominate, entity); err != nil {
		return nil, err
	}
	defer d.end(actor, ActionNominate, entity)

	log.Infof("Nominating %v for election %v (%v)", actor.Hex(),
		electionID, party)

	err = d.ledger.SubmitNomination(ctx, actor, electionID, name, party,
		symbol, bio)
	if err != nil {
		return nil, err
	}

	return d.ledger.CandidateProfile(ctx, electionID, actor)
}

// Withdraw withdraws the connected actor's nomination and returns the
// re-derived nomination record.
func (d *Dispatcher) Withdraw(ctx context.Context, electionID uint64) (*ledger.Candidate, error) {
	actor, err := d.session.Address()
	if err != nil {
		return nil, err
	}

	cur, err := d.ledger.CandidateProfile(ctx, electionID, actor)
	if err != nil {
		return nil, err
	}
	if !CandidateStatusChangeAllowed(cur.Status, ledger.StatusWithdrawn) {
		return nil, StatusChangeError{
			From: cur.Status,
			To:   ledger.StatusWithdrawn,
		}
	}

	entity := fmt.Sprintf("%v", electionID)
	if err := d.begin(actor, ActionWithdraw, entity); err != nil {
		return nil, err
	}
	defer d.end(actor, ActionWithdraw, entity)

	log.Infof("Withdrawing nomination of %v from election %v",
		actor.Hex(), electionID)

	err = d.ledger.WithdrawNomination(ctx, actor, electionID)
	if err != nil {
		return nil, err
	}

	return d.ledger.CandidateProfile(ctx, electionID, actor)
}

// Vote casts the connected actor's vote for a candidate.
func (d *Dispatcher) Vote(ctx context.Context, electionID uint64, candidate common.Address) error {
	actor, err := d.session.Address()
	if err != nil {
		return err
	}

	// Local pre-guards: the voter must hold a verified, unspent
	// registration for this election, the election must be open, and
	// the target must be a verified candidate.
	v := d.session.Voter()
	if v.Status != ledger.StatusVerified {
		return ValidationError{Reason: "not a verified voter"}
	}
	if v.HasVoted {
		return ValidationError{Reason: "vote already cast"}
	}
	if v.ElectionID != electionID {
		return ValidationError{Reason: "not enrolled in this election"}
	}
	phase, err := d.electionPhase(ctx, electionID)
	if err != nil {
		return err
	}
	if phase != ledger.PhaseOpen {
		return PhaseError{Phase: phase}
	}
	target, err := d.ledger.CandidateProfile(ctx, electionID, candidate)
	if err != nil {
		return err
	}
	if target.Status != ledger.StatusVerified {
		return ValidationError{Reason: "candidate is not verified"}
	}

	entity := fmt.Sprintf("%v", electionID)
	if err := d.begin(actor, ActionVote, entity); err != nil {
		return err
	}
	defer d.end(actor, ActionVote, entity)

	log.Infof("Casting vote of %v in election %v", actor.Hex(),
		electionID)

	err = d.ledger.CastVote(ctx, actor, electionID, candidate)
	if err != nil {
		return err
	}

	return d.session.Resync(ctx)
}

// DecideVoter decides a pending voter registration and returns the
// re-derived voter record. Decisions are one shot; a record that has
// already been decided is rejected locally before any ledger call.
func (d *Dispatcher) DecideVoter(ctx context.Context, voter common.Address, status ledger.StatusT) (*ledger.Voter, error) {
	actor, err := d.session.Address()
	if err != nil {
		return nil, err
	}
	if !RoleHas(d.session.Admin(), CapDecideVoters) {
		return nil, ErrNotAuthorized
	}
	if !DecisionStatus(status) {
		return nil, ValidationError{Reason: "invalid decision status"}
	}

	cur, err := d.ledger.VoterStatus(ctx, voter)
	if err != nil {
		return nil, err
	}
	if !VoterStatusChangeAllowed(cur.Status, status) {
		return nil, StatusChangeError{From: cur.Status, To: status}
	}

	entity := voter.Hex()
	if err := d.begin(actor, ActionDecideVoters, entity); err != nil {
		return nil, err
	}
	defer d.end(actor, ActionDecideVoters, entity)

	log.Infof("Deciding voter %v: %v", voter.Hex(), status)

	err = d.ledger.VerifyVoter(ctx, actor, voter, status)
	if err != nil {
		return nil, err
	}

	return d.ledger.VoterStatus(ctx, voter)
}

// DecideCandidate decides a pending candidate nomination and returns the
// re-derived nomination record.
func (d *Dispatcher) DecideCandidate(ctx context.Context, electionID uint64, candidate common.Address, status ledger.StatusT) (*ledger.Candidate, error) {
	actor, err := d.session.Address()
	if err != nil {
		return nil, err
	}
	if !RoleHas(d.session.Admin(), CapDecideCandidates) {
		return nil, ErrNotAuthorized
	}
	if !DecisionStatus(status) {
		return nil, ValidationError{Reason: "invalid decision status"}
	}

	cur, err := d.ledger.CandidateProfile(ctx, electionID, candidate)
	if err != nil {
		return nil, err
	}
	if !CandidateStatusChangeAllowed(cur.Status, status) {
		return nil, StatusChangeError{From: cur.Status, To: status}
	}

	entity := fmt.Sprintf("%v/%v", electionID, candidate.Hex())
	if err := d.begin(actor, ActionDecideCandidates, entity); err != nil {
		return nil, err
	}
	defer d.end(actor, ActionDecideCandidates, entity)

	log.Infof("Deciding candidate %v in election %v: %v",
		candidate.Hex(), electionID, status)

	err = d.ledger.VerifyCandidate(ctx, actor, electionID, candidate,
		status)
	if err != nil {
		return nil, err
	}

	return d.ledger.CandidateProfile(ctx, electionID, candidate)
}

// CreateElection creates a new election and returns the refreshed election
// list. The new election's ID is discovered from the refresh, never
// assumed.
func (d *Dispatcher) CreateElection(ctx context.Context, name string, startTime, endTime int64, constituency string) ([]ledger.Election, error) {
	actor, err := d.session.Address()
	if err != nil {
		return nil, err
	}
	if !RoleHas(d.session.Admin(), CapManageElections) {
		return nil, ErrNotAuthorized
	}
	if name == "" {
		return nil, ValidationError{Reason: "election name is required"}
	}
	if startTime >= endTime {
		return nil, ValidationError{Reason: "start time must precede end time"}
	}

	if err := d.begin(actor, ActionManageElections, "create"); err != nil {
		return nil, err
	}
	defer d.end(actor, ActionManageElections, "create")

	log.Infof("Creating election %q (%v)", name, constituency)

	err = d.ledger.CreateElection(ctx, actor, name, startTime, endTime,
		constituency)
	if err != nil {
		return nil, err
	}

	return d.sync.Elections(ctx)
}

// EndElection administratively ends an election and returns the re-derived
// election record.
func (d *Dispatcher) EndElection(ctx context.Context, electionID uint64) (*ledger.Election, error) {
	actor, err := d.session.Address()
	if err != nil {
		return nil, err
	}
	if !RoleHas(d.session.Admin(), CapManageElections) {
		return nil, ErrNotAuthorized
	}

	cur, err := d.sync.Election(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if !cur.Active {
		return nil, ValidationError{Reason: "election already ended"}
	}

	entity := fmt.Sprintf("%v", electionID)
	if err := d.begin(actor, ActionManageElections, entity); err != nil {
		return nil, err
	}
	defer d.end(actor, ActionManageElections, entity)

	log.Infof("Ending election %v", electionID)

	err = d.ledger.EndElection(ctx, actor, electionID)
	if err != nil {
		return nil, err
	}

	return d.sync.Election(ctx, electionID)
}

// GrantRole grants an admin role to an address and returns the re-derived
// role tuple.
func (d *Dispatcher) GrantRole(ctx context.Context, admin common.Address, role ledger.RoleT) (*ledger.Admin, error) {
	actor, err := d.session.Address()
	if err != nil {
		return nil, err
	}
	if !RoleHas(d.session.Admin(), CapManageRoles) {
		return nil, ErrNotAuthorized
	}
	if role < ledger.RoleLocalityOfficer || role > ledger.RoleSuperAdmin {
		return nil, ValidationError{Reason: "invalid role"}
	}

	entity := admin.Hex()
	if err := d.begin(actor, ActionManageRoles, entity); err != nil {
		return nil, err
	}
	defer d.end(actor, ActionManageRoles, entity)

	log.Infof("Granting role %v to %v", role, admin.Hex())

	err = d.ledger.AddAdmin(ctx, actor, admin, role)
	if err != nil {
		return nil, err
	}

	return d.ledger.AdminRole(ctx, admin)
}

// AddParty appends a party to the registry and returns the refreshed
// registry.
func (d *Dispatcher) AddParty(ctx context.Context, name, symbol string) ([]ledger.Party, error) {
	actor, err := d.session.Address()
	if err != nil {
		return nil, err
	}
	if !RoleHas(d.session.Admin(), CapManageElections) {
		return nil, ErrNotAuthorized
	}
	if name == "" || symbol == "" {
		return nil, ValidationError{Reason: "party name and symbol are required"}
	}

	if err := d.begin(actor, ActionManageParties, name); err != nil {
		return nil, err
	}
	defer d.end(actor, ActionManageParties, name)

	log.Infof("Adding party %q (%v)", name, symbol)

	err = d.ledger.AddParty(ctx, actor, name, symbol)
	if err != nil {
		return nil, err
	}

	return d.sync.Parties(ctx)
}
