// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ethledger

import (
	"errors"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

func TestContractABIParses(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		t.Fatalf("abi does not parse: %v", err)
	}

	methods := []string{
		"electionCount",
		"getElectionDetails",
		"getElectionStats",
		"getElectionCandidates",
		"getVoterStatus",
		"getCandidateProfile",
		"admins",
		"getParties",
		"getPendingVoters",
		"registerVoter",
		"castVote",
		"submitNomination",
		"withdrawNomination",
		"createElection",
		"endElection",
		"addAdmin",
		"verifyVoter",
		"verifyCandidate",
		"addParty",
	}
	for _, m := range methods {
		if _, ok := parsed.Methods[m]; !ok {
			t.Errorf("method %v missing from abi", m)
		}
	}
	if _, ok := parsed.Events["VoterRegistered"]; !ok {
		t.Error("event VoterRegistered missing from abi")
	}
}

type fakeDataError struct {
	msg  string
	data interface{}
}

func (e fakeDataError) Error() string          { return e.msg }
func (e fakeDataError) ErrorData() interface{} { return e.data }

func TestRevertReason(t *testing.T) {
	// Error(string) selector followed by the abi encoded reason
	// "already voted".
	revertData := "0x08c379a0" +
		"0000000000000000000000000000000000000000000000000000000000000020" +
		"000000000000000000000000000000000000000000000000000000000000000d" +
		"616c726561647920766f74656400000000000000000000000000000000000000"

	tests := []struct {
		name       string
		err        error
		wantReason string
		wantOK     bool
	}{
		{
			name: "structured revert data",
			err: fakeDataError{
				msg:  "execution reverted",
				data: revertData,
			},
			wantReason: "already voted",
			wantOK:     true,
		},
		{
			name:       "inline reason string",
			err:        errors.New("execution reverted: election ended"),
			wantReason: "election ended",
			wantOK:     true,
		},
		{
			name:       "bare revert",
			err:        errors.New("execution reverted"),
			wantReason: "",
			wantOK:     true,
		},
		{
			name:   "unrelated error",
			err:    errors.New("connection refused"),
			wantOK: false,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			reason, ok := revertReason(test.err)
			if ok != test.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, test.wantOK)
			}
			if reason != test.wantReason {
				t.Errorf("reason: got %q, want %q",
					reason, test.wantReason)
			}
		})
	}
}
