package resolver

import "gaggimate-dashboard/internal/domain/model"

// Domains a role may expect.
const (
	DomainSensor = "sensor"
	DomainSwitch = "switch"
	DomainSelect = "select"
	DomainNumber = "number"
	DomainButton = "button"
)

// RoleSpec tells the resolver how to recognise the entity behind a role.
type RoleSpec struct {
	Role     model.Role
	Domain   string
	Keywords []string
}

// DefaultRoleSpecs are the keyword lists used for GaggiMate entities.
func DefaultRoleSpecs() []RoleSpec {
	return []RoleSpec{
		{Role: model.RoleCurrentTemp, Domain: DomainSensor, Keywords: []string{"current_temperature"}},
		{Role: model.RoleTargetTemp, Domain: DomainSensor, Keywords: []string{"target_temperature"}},
		{Role: model.RoleMode, Domain: DomainSensor, Keywords: []string{"mode"}},
		{Role: model.RoleProfile, Domain: DomainSensor, Keywords: []string{"profile", "selected_profile"}},
		{Role: model.RoleWeight, Domain: DomainSensor, Keywords: []string{"weight", "current_weight"}},
		{Role: model.RoleMachineActive, Domain: DomainSwitch, Keywords: []string{"machine_active"}},
		{Role: model.RoleModeSelect, Domain: DomainSelect, Keywords: []string{"mode"}},
		{Role: model.RoleProfileSelect, Domain: DomainSelect, Keywords: []string{"profile", "selected_profile"}},
		{Role: model.RoleTargetTempNumber, Domain: DomainNumber, Keywords: []string{"target_temperature"}},
		{Role: model.RoleStartBrew, Domain: DomainButton, Keywords: []string{"start_brew"}},
		{Role: model.RoleStopBrew, Domain: DomainButton, Keywords: []string{"stop_brew"}},
		{Role: model.RoleStartSteam, Domain: DomainButton, Keywords: []string{"start_steam"}},
		{Role: model.RoleFlush, Domain: DomainButton, Keywords: []string{"flush"}},
	}
}
