// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package identity implements the pre-registration identity gate. A
// registrant is checked against a static identity lookup table, then
// challenged with a one time code delivered over a contact channel before a
// voter registration may be submitted to the ledger. Delivery is simulated;
// the code is returned to the caller instead of being transmitted. Nothing
// in this package touches the ledger.
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"

	"github.com/chunav/chunav/util"
)

// CodeDigits is the number of digits in a challenge code.
const CodeDigits = 6

type MatchT int
type ChannelT int

const (
	// Precheck results.
	MatchNoSuchIdentity MatchT = 0
	MatchNameMismatch   MatchT = 1
	Matched             MatchT = 2

	// Challenge delivery channels.
	ChannelMobile ChannelT = 0
	ChannelEmail  ChannelT = 1
)

var (
	// Matches contains the human readable precheck results.
	Matches = map[MatchT]string{
		MatchNoSuchIdentity: "no such identity",
		MatchNameMismatch:   "name mismatch",
		Matched:             "matched",
	}

	// ErrNoChallenge is returned when a challenge verification is
	// attempted and no challenge is outstanding.
	ErrNoChallenge = errors.New("no challenge outstanding")

	// ErrChallengeMismatch is returned when the submitted code does not
	// match the outstanding challenge code. The challenge remains
	// outstanding and may be retried or reissued.
	ErrChallengeMismatch = errors.New("challenge code mismatch")

	// ErrInvalidToken is returned when a registration authorization
	// token is redeemed that was never issued or was already spent.
	ErrInvalidToken = errors.New("invalid registration authorization")

	// ErrInvalidChannel is returned when a challenge is requested over
	// a channel the entry has no contact details for.
	ErrInvalidChannel = errors.New("invalid delivery channel")
)

func (m MatchT) String() string {
	if v, ok := Matches[m]; ok {
		return v
	}
	return fmt.Sprintf("unknown match result %v", int(m))
}

// Entry is a single identity lookup record. The table is read only
// reference data; the workflow never mutates it.
type Entry struct {
	IdentityID string `json:"identityid"`
	Name       string `json:"name"`
	Mobile     string `json:"mobile"`
	Email      string `json:"email"`
}

// Ref returns the hashed identity reference that is stored on the ledger in
// place of the raw identity ID.
func (e *Entry) Ref() string {
	return crypto.Keccak256Hash([]byte(e.IdentityID)).Hex()
}

// Lookup is the static identity table.
type Lookup struct {
	entries map[string]Entry
}

// NewLookup returns a Lookup over the provided entries.
func NewLookup(entries []Entry) *Lookup {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[e.IdentityID] = e
	}
	return &Lookup{
		entries: m,
	}
}

// LoadLookup loads an identity table from a JSON file containing an array
// of entries.
func LoadLookup(path string) (*Lookup, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	err = json.Unmarshal(b, &entries)
	if err != nil {
		return nil, fmt.Errorf("unmarshal identity table %v: %v",
			path, err)
	}
	log.Debugf("Identity table loaded: %v entries from %v",
		len(entries), path)
	return NewLookup(entries), nil
}

// Precheck matches an asserted identity against the table. The identity ID
// is matched exactly; the name is matched case insensitively. The entry is
// only returned on a Matched result.
func (l *Lookup) Precheck(identityID, assertedName string) (MatchT, *Entry) {
	e, ok := l.entries[identityID]
	if !ok {
		return MatchNoSuchIdentity, nil
	}
	if !strings.EqualFold(strings.TrimSpace(assertedName), e.Name) {
		return MatchNameMismatch, nil
	}
	return Matched, &e
}

// Delivery describes a simulated challenge delivery. Code is handed back to
// the caller in place of an actual SMS or email send.
type Delivery struct {
	Destination string
	Code        string
}

// AuthToken is a one shot registration authorization produced by a
// successful challenge verification. It is scoped to the identity entry
// that was matched during the precheck.
type AuthToken struct {
	Token string
	Entry Entry
}

type challenge struct {
	entry   Entry
	channel ChannelT
	code    string
}

// Gate holds the session scoped challenge state. Only the most recently
// issued code is ever valid; reissuing replaces any outstanding challenge.
// Tokens issued by the gate may be redeemed exactly once.
type Gate struct {
	sync.Mutex
	outstanding *challenge
	tokens      map[string]Entry
}

// NewGate returns an empty Gate.
func NewGate() *Gate {
	return &Gate{
		tokens: make(map[string]Entry),
	}
}

// IssueChallenge generates a new challenge code for the provided entry and
// channel, invalidating any prior outstanding code.
func (g *Gate) IssueChallenge(entry Entry, channel ChannelT) (*Delivery, error) {
	var dest string
	switch channel {
	case ChannelMobile:
		dest = entry.Mobile
	case ChannelEmail:
		dest = entry.Email
	default:
		return nil, ErrInvalidChannel
	}
	if dest == "" {
		return nil, ErrInvalidChannel
	}

	code, err := util.RandomCode(CodeDigits)
	if err != nil {
		return nil, err
	}

	g.Lock()
	g.outstanding = &challenge{
		entry:   entry,
		channel: channel,
		code:    code,
	}
	g.Unlock()

	log.Debugf("Challenge issued for identity %v via channel %v",
		entry.IdentityID, channel)

	return &Delivery{
		Destination: dest,
		Code:        code,
	}, nil
}

// VerifyChallenge checks a submitted code against the outstanding
// challenge. On success the challenge is consumed and a one shot
// registration authorization token is returned. On failure the challenge
// remains outstanding.
func (g *Gate) VerifyChallenge(submitted string) (*AuthToken, error) {
	g.Lock()
	defer g.Unlock()

	if g.outstanding == nil {
		return nil, ErrNoChallenge
	}
	if submitted != g.outstanding.code {
		return nil, ErrChallengeMismatch
	}

	entry := g.outstanding.entry
	g.outstanding = nil

	token := uuid.New().String()
	g.tokens[token] = entry

	log.Debugf("Challenge verified for identity %v", entry.IdentityID)

	return &AuthToken{
		Token: token,
		Entry: entry,
	}, nil
}

// Redeem spends a registration authorization token and returns the identity
// entry it is scoped to. A token can be redeemed exactly once.
func (g *Gate) Redeem(token string) (*Entry, error) {
	g.Lock()
	defer g.Unlock()

	entry, ok := g.tokens[token]
	if !ok {
		return nil, ErrInvalidToken
	}
	delete(g.tokens, token)
	return &entry, nil
}
