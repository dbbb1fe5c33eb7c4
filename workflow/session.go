// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package workflow

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chunav/chunav/ledger"
)

// ErrNotConnected is returned when an operation that requires a connected
// actor is attempted on a disconnected session.
var ErrNotConnected = errors.New("no actor connected")

// Session is the single process wide actor context: the connected address,
// its admin role tuple, and its voter record, all mirrored from the ledger.
// It is created by Connect, cleared by Disconnect, and refreshed only by an
// explicit Resync following a confirmed action; it is never updated
// optimistically.
type Session struct {
	sync.Mutex
	ledger    ledger.Ledger
	connected bool
	address   common.Address
	admin     ledger.Admin
	voter     ledger.Voter
}

// NewSession returns a disconnected Session backed by the provided ledger.
func NewSession(l ledger.Ledger) *Session {
	return &Session{
		ledger: l,
	}
}

// Connect binds the session to an actor address and mirrors its role tuple
// and voter record from the ledger. Connecting while already connected
// rebinds the session, which covers account changes.
func (s *Session) Connect(ctx context.Context, address common.Address) error {
	admin, err := s.ledger.AdminRole(ctx, address)
	if err != nil {
		return err
	}
	voter, err := s.ledger.VoterStatus(ctx, address)
	if err != nil {
		return err
	}

	s.Lock()
	s.connected = true
	s.address = address
	s.admin = *admin
	s.voter = *voter
	s.Unlock()

	log.Debugf("Session connected: %v role %v active %v status %v",
		address.Hex(), admin.Role, admin.Active, voter.Status)

	return nil
}

// Disconnect clears the session.
func (s *Session) Disconnect() {
	s.Lock()
	defer s.Unlock()

	s.connected = false
	s.address = common.Address{}
	s.admin = ledger.Admin{}
	s.voter = ledger.Voter{}

	log.Debugf("Session disconnected")
}

// Resync re-fetches the connected actor's role tuple and voter record from
// the ledger.
func (s *Session) Resync(ctx context.Context) error {
	s.Lock()
	if !s.connected {
		s.Unlock()
		return ErrNotConnected
	}
	address := s.address
	s.Unlock()

	admin, err := s.ledger.AdminRole(ctx, address)
	if err != nil {
		return err
	}
	voter, err := s.ledger.VoterStatus(ctx, address)
	if err != nil {
		return err
	}

	s.Lock()
	// The session may have been rebound or cleared while the reads were
	// in flight; only apply the refresh if it still belongs to the same
	// actor.
	if s.connected && s.address == address {
		s.admin = *admin
		s.voter = *voter
	}
	s.Unlock()

	return nil
}

// Connected returns whether an actor is connected.
func (s *Session) Connected() bool {
	s.Lock()
	defer s.Unlock()
	return s.connected
}

// Address returns the connected actor address.
func (s *Session) Address() (common.Address, error) {
	s.Lock()
	defer s.Unlock()
	if !s.connected {
		return common.Address{}, ErrNotConnected
	}
	return s.address, nil
}

// Admin returns the connected actor's admin role tuple.
func (s *Session) Admin() ledger.Admin {
	s.Lock()
	defer s.Unlock()
	return s.admin
}

// Voter returns the connected actor's voter record.
func (s *Session) Voter() ledger.Voter {
	s.Lock()
	defer s.Unlock()
	return s.voter
}
