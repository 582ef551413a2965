package model

import (
	"encoding/json"
)

// Role is a logical part of the machine the card knows how to show or drive.
type Role string

const (
	RoleCurrentTemp      Role = "currentTemp"
	RoleTargetTemp       Role = "targetTemp"
	RoleMode             Role = "mode"
	RoleProfile          Role = "profile"
	RoleWeight           Role = "weight"
	RoleMachineActive    Role = "machineActive"
	RoleModeSelect       Role = "modeSelect"
	RoleProfileSelect    Role = "profileSelect"
	RoleTargetTempNumber Role = "targetTempNumber"
	RoleStartBrew        Role = "startBrew"
	RoleStopBrew         Role = "stopBrew"
	RoleStartSteam       Role = "startSteam"
	RoleFlush            Role = "flush"
)

// AllRoles lists every role in display order.
var AllRoles = []Role{
	RoleCurrentTemp,
	RoleTargetTemp,
	RoleMode,
	RoleProfile,
	RoleWeight,
	RoleMachineActive,
	RoleModeSelect,
	RoleProfileSelect,
	RoleTargetTempNumber,
	RoleStartBrew,
	RoleStopBrew,
	RoleStartSteam,
	RoleFlush,
}

// RoleMap maps roles to entity ids. A role missing from the map is unresolved.
type RoleMap map[Role]string

// Get returns the entity id for a role.
func (m RoleMap) Get(r Role) (string, bool) {
	id, ok := m[r]
	return id, ok && id != ""
}

// Empty is true when no role resolved.
func (m RoleMap) Empty() bool {
	for _, id := range m {
		if id != "" {
			return false
		}
	}
	return true
}

// Clone copies the map so callers never share the service's mapping.
func (m RoleMap) Clone() RoleMap {
	c := make(RoleMap, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// MarshalJSON writes every role, unresolved ones as null.
func (m RoleMap) MarshalJSON() ([]byte, error) {
	out := make(map[Role]*string, len(AllRoles))
	for _, r := range AllRoles {
		if id, ok := m.Get(r); ok {
			out[r] = &id
		} else {
			out[r] = nil
		}
	}
	return json.Marshal(out)
}
