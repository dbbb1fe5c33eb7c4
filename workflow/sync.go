// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package workflow

import (
	"context"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/chunav/chunav/ledger"
)

// scanConcurrency caps the number of per-address status lookups that the
// registration scan source runs at once.
const scanConcurrency = 8

// PendingVoterSource enumerates voter registrations that are awaiting a
// decision, optionally scoped to one election (electionID 0 means all).
type PendingVoterSource interface {
	// Name returns the source name for logging.
	Name() string

	// PendingVoters returns the pending voter records.
	PendingVoters(ctx context.Context, electionID uint64) ([]ledger.Voter, error)
}

// primarySource reads the ledger's pending voter enumeration directly.
type primarySource struct {
	ledger ledger.Ledger
}

func (p *primarySource) Name() string {
	return "pending enumeration"
}

func (p *primarySource) PendingVoters(ctx context.Context, electionID uint64) ([]ledger.Voter, error) {
	voters, err := p.ledger.PendingVoters(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]ledger.Voter, 0, len(voters))
	for _, v := range voters {
		if electionID != 0 && v.ElectionID != electionID {
			continue
		}
		filtered = append(filtered, v)
	}
	return filtered, nil
}

// scanSource re-derives pending voters from historical registration
// notifications. Discovered addresses are deduplicated keeping only the
// most recently observed entry per address, then each address's current
// status is looked up individually. Individual lookups run concurrently
// and a lookup failure drops that address from the result instead of
// aborting the scan.
type scanSource struct {
	ledger ledger.Ledger
}

func (s *scanSource) Name() string {
	return "registration scan"
}

func (s *scanSource) PendingVoters(ctx context.Context, electionID uint64) ([]ledger.Voter, error) {
	regs, err := s.ledger.Registrations(ctx)
	if err != nil {
		return nil, err
	}

	// Walk the notifications newest first so that only the most recent
	// entry per address survives.
	seen := make(map[common.Address]struct{})
	var addrs []common.Address
	for i := len(regs) - 1; i >= 0; i-- {
		r := regs[i]
		if _, ok := seen[r.Voter]; ok {
			continue
		}
		seen[r.Voter] = struct{}{}
		if electionID != 0 && r.ElectionID != electionID {
			continue
		}
		addrs = append(addrs, r.Voter)
	}

	log.Debugf("Registration scan: %v notifications, %v unique addresses",
		len(regs), len(addrs))

	// Re-derive the current status per discovered address. Each lookup
	// is resolved independently; only the successes are aggregated.
	var (
		mtx    sync.Mutex
		voters []ledger.Voter
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)
	for _, addr := range addrs {
		addr := addr
		g.Go(func() error {
			v, err := s.ledger.VoterStatus(gctx, addr)
			if err != nil {
				log.Warnf("Status lookup failed for %v, "+
					"skipping: %v", addr.Hex(), err)
				return nil
			}
			if v.Status != ledger.StatusPending {
				return nil
			}
			if electionID != 0 && v.ElectionID != electionID {
				return nil
			}
			mtx.Lock()
			voters = append(voters, *v)
			mtx.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(voters, func(i, j int) bool {
		return voters[i].Address.Hex() < voters[j].Address.Hex()
	})
	return voters, nil
}

// Sync derives the current entity state from the ledger. All displayed
// state is produced by this layer; nothing is ever synthesized locally.
type Sync struct {
	ledger  ledger.Ledger
	sources []PendingVoterSource
}

// NewSync returns a Sync over the provided ledger. Pending voters are
// discovered through the ledger's own enumeration first, falling back to
// the registration scan when the enumeration is unavailable.
func NewSync(l ledger.Ledger) *Sync {
	return &Sync{
		ledger: l,
		sources: []PendingVoterSource{
			&primarySource{ledger: l},
			&scanSource{ledger: l},
		},
	}
}

// Elections returns all elections ordered by ID. The refresh is all or
// nothing: a failure fetching any individual election aborts the whole
// refresh, since an incomplete election list is worse than none.
func (s *Sync) Elections(ctx context.Context) ([]ledger.Election, error) {
	count, err := s.ledger.ElectionCount(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "election count")
	}

	elections := make([]ledger.Election, 0, count)
	for id := uint64(1); id <= count; id++ {
		e, err := s.ledger.ElectionDetails(ctx, id)
		if err != nil {
			return nil, errors.WithMessagef(err, "election %v", id)
		}
		elections = append(elections, *e)
	}
	return elections, nil
}

// Election returns a single election.
func (s *Sync) Election(ctx context.Context, electionID uint64) (*ledger.Election, error) {
	return s.ledger.ElectionDetails(ctx, electionID)
}

// Voter returns the voter record for an address. An address that has never
// registered yields a StatusNone record.
func (s *Sync) Voter(ctx context.Context, address common.Address) (*ledger.Voter, error) {
	return s.ledger.VoterStatus(ctx, address)
}

// Candidates returns all candidate nominations for an election.
func (s *Sync) Candidates(ctx context.Context, electionID uint64) ([]ledger.Candidate, error) {
	return s.ledger.ElectionCandidates(ctx, electionID)
}

// PendingCandidates returns the candidate nominations for an election that
// are awaiting a decision.
func (s *Sync) PendingCandidates(ctx context.Context, electionID uint64) ([]ledger.Candidate, error) {
	cs, err := s.ledger.ElectionCandidates(ctx, electionID)
	if err != nil {
		return nil, err
	}
	pending := make([]ledger.Candidate, 0, len(cs))
	for _, c := range cs {
		if c.Status == ledger.StatusPending {
			pending = append(pending, c)
		}
	}
	return pending, nil
}

// Ballot returns the verified candidates for an election, i.e. those that
// are eligible to receive votes, sorted by descending vote count.
func (s *Sync) Ballot(ctx context.Context, electionID uint64) ([]ledger.Candidate, error) {
	cs, err := s.ledger.ElectionCandidates(ctx, electionID)
	if err != nil {
		return nil, err
	}
	verified := make([]ledger.Candidate, 0, len(cs))
	for _, c := range cs {
		if c.Status == ledger.StatusVerified {
			verified = append(verified, c)
		}
	}
	sort.Slice(verified, func(i, j int) bool {
		if verified[i].Votes != verified[j].Votes {
			return verified[i].Votes > verified[j].Votes
		}
		return verified[i].Address.Hex() < verified[j].Address.Hex()
	})
	return verified, nil
}

// PendingVoters returns the voter registrations awaiting a decision,
// optionally scoped to one election (electionID 0 means all). Sources are
// tried in order; a source failure falls through to the next one.
func (s *Sync) PendingVoters(ctx context.Context, electionID uint64) ([]ledger.Voter, error) {
	var lastErr error
	for _, src := range s.sources {
		voters, err := src.PendingVoters(ctx, electionID)
		if err != nil {
			log.Warnf("Pending voter source %v failed: %v",
				src.Name(), err)
			lastErr = err
			continue
		}
		return voters, nil
	}
	return nil, errors.WithMessage(lastErr, "all pending voter sources failed")
}

// Parties returns the political party registry.
func (s *Sync) Parties(ctx context.Context) ([]ledger.Party, error) {
	return s.ledger.Parties(ctx)
}
