// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package workflow

import (
	"testing"

	"github.com/chunav/chunav/ledger"
)

func TestRoleHas(t *testing.T) {
	allCaps := []Capability{
		CapDecideVoters,
		CapDecideCandidates,
		CapManageElections,
		CapManageRoles,
	}

	tests := []struct {
		name    string
		admin   ledger.Admin
		granted []Capability
	}{
		{
			name:    "none grants nothing",
			admin:   ledger.Admin{Role: ledger.RoleNone, Active: true},
			granted: nil,
		},
		{
			name:    "locality officer decides candidates",
			admin:   ledger.Admin{Role: ledger.RoleLocalityOfficer, Active: true},
			granted: []Capability{CapDecideCandidates},
		},
		{
			name:    "polling officer decides voters",
			admin:   ledger.Admin{Role: ledger.RolePollingOfficer, Active: true},
			granted: []Capability{CapDecideVoters},
		},
		{
			name:    "election authority manages elections",
			admin:   ledger.Admin{Role: ledger.RoleElectionAuthority, Active: true},
			granted: []Capability{CapManageElections},
		},
		{
			name:    "super admin grants everything",
			admin:   ledger.Admin{Role: ledger.RoleSuperAdmin, Active: true},
			granted: allCaps,
		},
		{
			name:    "inactive super admin grants nothing",
			admin:   ledger.Admin{Role: ledger.RoleSuperAdmin, Active: false},
			granted: nil,
		},
		{
			name:    "inactive polling officer grants nothing",
			admin:   ledger.Admin{Role: ledger.RolePollingOfficer, Active: false},
			granted: nil,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			want := make(map[Capability]struct{})
			for _, c := range test.granted {
				want[c] = struct{}{}
			}
			for _, c := range allCaps {
				_, wantGranted := want[c]
				got := RoleHas(test.admin, c)
				if got != wantGranted {
					t.Errorf("RoleHas(%v, %v): got %v, want %v",
						test.admin.Role, c, got, wantGranted)
				}
			}
		})
	}
}
