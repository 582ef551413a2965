package model

import "strings"

// Device is an entry of the Home Assistant device registry.
type Device struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	NameByUser   string `json:"name_by_user,omitempty"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
}

// DisplayName prefers the user given name, then the integration name, then the id.
func (d Device) DisplayName() string {
	if d.NameByUser != "" {
		return d.NameByUser
	}
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// RegistryEntry is an entry of the Home Assistant entity registry.
type RegistryEntry struct {
	EntityID string `json:"entity_id"`
	DeviceID string `json:"device_id,omitempty"`
	Platform string `json:"platform,omitempty"`
}

// EntityState is a live state object as pushed by Home Assistant.
type EntityState struct {
	EntityID   string                 `json:"entity_id"`
	State      string                 `json:"state"`
	Attributes map[string]interface{} `json:"attributes"`
}

// Domain returns the platform domain, the part of the id before the first dot.
func (s EntityState) Domain() string {
	return Domain(s.EntityID)
}

// Domain returns the text before the first dot of an entity id, or "" when
// the id carries no domain.
func Domain(entityID string) string {
	domain, _, ok := strings.Cut(entityID, ".")
	if !ok {
		return ""
	}
	return domain
}

// ServiceCall is a fire-and-forget request to a Home Assistant service.
type ServiceCall struct {
	Domain   string                 `json:"domain"`
	Service  string                 `json:"service"`
	EntityID string                 `json:"entity_id"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

// Payload is the service data body sent to Home Assistant.
func (c ServiceCall) Payload() map[string]interface{} {
	payload := make(map[string]interface{}, len(c.Data)+1)
	for k, v := range c.Data {
		payload[k] = v
	}
	payload["entity_id"] = c.EntityID
	return payload
}
