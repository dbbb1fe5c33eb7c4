// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package workflow

import (
	"fmt"

	"github.com/chunav/chunav/ledger"
)

// Capability is a named permission an admin role grants.
type Capability int

const (
	// CapDecideVoters allows deciding pending voter registrations.
	CapDecideVoters Capability = 0

	// CapDecideCandidates allows deciding pending candidate
	// nominations.
	CapDecideCandidates Capability = 1

	// CapManageElections allows creating elections, ending elections,
	// and managing the party registry.
	CapManageElections Capability = 2

	// CapManageRoles allows granting admin roles to other actors.
	CapManageRoles Capability = 3
)

// Capabilities contains the human readable capabilities.
var Capabilities = map[Capability]string{
	CapDecideVoters:     "decide voter registrations",
	CapDecideCandidates: "decide candidate nominations",
	CapManageElections:  "manage elections",
	CapManageRoles:      "manage admin roles",
}

func (c Capability) String() string {
	if v, ok := Capabilities[c]; ok {
		return v
	}
	return fmt.Sprintf("unknown capability %v", int(c))
}

// roleCapabilities contains the capabilities each role grants. SuperAdmin
// is a strict superset of all other roles; no other role implies another's
// privileges.
var roleCapabilities = map[ledger.RoleT]map[Capability]struct{}{
	ledger.RoleNone: {},
	ledger.RoleLocalityOfficer: {
		CapDecideCandidates: {},
	},
	ledger.RolePollingOfficer: {
		CapDecideVoters: {},
	},
	ledger.RoleElectionAuthority: {
		CapManageElections: {},
	},
	ledger.RoleSuperAdmin: {
		CapDecideVoters:     {},
		CapDecideCandidates: {},
		CapManageElections:  {},
		CapManageRoles:      {},
	},
}

// RoleHas returns whether the admin role tuple grants the provided
// capability. An inactive role grants nothing regardless of its tier.
func RoleHas(admin ledger.Admin, c Capability) bool {
	if !admin.Active {
		return false
	}
	caps, ok := roleCapabilities[admin.Role]
	if !ok {
		return false
	}
	_, ok = caps[c]
	return ok
}
