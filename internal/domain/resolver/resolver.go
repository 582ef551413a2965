// Package resolver guesses which Home Assistant entities belong to which
// role of an espresso machine by matching entity ids against keyword lists.
//
// Matching is first-hit in candidate order. There is no scoring, so two
// entities that both match a role resolve to whichever the host listed first.
package resolver

import (
	"strings"

	"gaggimate-dashboard/internal/domain/model"
)

// ResolveRoles builds a fresh RoleMap from the candidate entity ids.
// Roles with no matching candidate are left out of the map.
func ResolveRoles(candidates []string, specs []RoleSpec) model.RoleMap {
	roles := make(model.RoleMap, len(specs))
	for _, spec := range specs {
		if id, ok := FindEntity(candidates, spec); ok {
			roles[spec.Role] = id
		}
	}
	return roles
}

// FindEntity returns the first candidate in the role's domain whose
// lowercased id contains any of its keywords. An empty domain
// accepts every domain.
func FindEntity(candidates []string, spec RoleSpec) (string, bool) {
	for _, entityID := range candidates {
		if spec.Domain != "" && model.Domain(entityID) != spec.Domain {
			continue
		}
		lowerID := strings.ToLower(entityID)
		for _, keyword := range spec.Keywords {
			if strings.Contains(lowerID, strings.ToLower(keyword)) {
				return entityID, true
			}
		}
	}
	return "", false
}

// BaseName derives the device prefix of a seed entity: the local name up to
// its first underscore. "sensor.gaggimate_current_temperature" gives
// "gaggimate". Seeds without a domain separator give false.
func BaseName(seed string) (string, bool) {
	_, local, ok := strings.Cut(seed, ".")
	if !ok || local == "" {
		return "", false
	}
	base, _, _ := strings.Cut(local, "_")
	return base, base != ""
}

// SeedCandidates keeps the entity ids that contain the seed's base name,
// in the order given.
func SeedCandidates(seed string, entityIDs []string) []string {
	base, ok := BaseName(seed)
	if !ok {
		return nil
	}
	var candidates []string
	for _, id := range entityIDs {
		if strings.Contains(id, base) {
			candidates = append(candidates, id)
		}
	}
	return candidates
}

// DeviceCandidates keeps the registry entries attached to the device, in
// registry order.
func DeviceCandidates(deviceID string, entries []model.RegistryEntry) []string {
	var candidates []string
	for _, e := range entries {
		if e.DeviceID == deviceID {
			candidates = append(candidates, e.EntityID)
		}
	}
	return candidates
}
