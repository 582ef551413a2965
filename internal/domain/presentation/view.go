// Package presentation turns a resolved role map and a state snapshot into
// the card's view. Everything here is a pure function of its inputs.
package presentation

import (
	"fmt"

	"gaggimate-dashboard/internal/domain/model"
)

const (
	Placeholder    = "--"
	DefaultProfile = "Default"

	PromptMessage = "Please configure the device in the card settings."
	EmptyMessage  = "No GaggiMate entities found."

	defaultTempMin  = 80
	defaultTempMax  = 100
	defaultTempStep = 0.1
)

// Status tells which of the three card faces to show.
type Status string

const (
	StatusUnconfigured Status = "unconfigured"
	StatusEmpty        Status = "empty"
	StatusReady        Status = "ready"
)

// Action names accepted by the card.
const (
	ActionPower             = "power"
	ActionMode              = "mode"
	ActionProfile           = "profile"
	ActionTargetTemperature = "target-temperature"
	ActionStartBrew         = "start-brew"
	ActionStopBrew          = "stop-brew"
	ActionStartSteam        = "start-steam"
	ActionFlush             = "flush"
)

type View struct {
	Status      Status    `json:"status"`
	Message     string    `json:"message,omitempty"`
	Name        string    `json:"name"`
	Device      string    `json:"device,omitempty"`
	Active      bool      `json:"active"`
	Power       bool      `json:"power_control"`
	Mode        ModeInfo  `json:"mode"`
	CurrentTemp string    `json:"current_temp"`
	TargetTemp  string    `json:"target_temp"`
	Profile     *InfoRow  `json:"profile,omitempty"`
	Weight      *InfoRow  `json:"weight,omitempty"`
	Controls    *Controls `json:"controls,omitempty"`
}

// CurrentTempLabel is the big temperature figure, e.g. "92.5°".
func (v View) CurrentTempLabel() string {
	return v.CurrentTemp + "°"
}

// TargetTempLabel is the line under it, e.g. "→ 93°".
func (v View) TargetTempLabel() string {
	return "→ " + v.TargetTemp + "°"
}

type InfoRow struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

func (r InfoRow) String() string {
	return fmt.Sprintf("%s: %s%s", r.Label, r.Value, r.Unit)
}

type Controls struct {
	Mode       *Select      `json:"mode,omitempty"`
	Profile    *Select      `json:"profile,omitempty"`
	TargetTemp *NumberInput `json:"target_temp,omitempty"`
	Buttons    []Button     `json:"buttons,omitempty"`
}

type Select struct {
	Action  string   `json:"action"`
	Label   string   `json:"label"`
	Options []Option `json:"options"`
}

type Option struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

type NumberInput struct {
	Action string  `json:"action"`
	Label  string  `json:"label"`
	Value  string  `json:"value"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Step   float64 `json:"step"`
}

type Button struct {
	Action string `json:"action"`
	Label  string `json:"label"`
	Icon   string `json:"icon"`
	Class  string `json:"class"`
}

// StateLookup is the read side of the state snapshot.
type StateLookup interface {
	Get(entityID string) (model.EntityState, bool)
}

// Input bundles what a render pass reads.
type Input struct {
	Roles     model.RoleMap
	States    StateLookup
	Config    model.CardConfig
	Device    *model.Device
	Connected bool
}

var buttons = []struct {
	role model.Role
	btn  Button
}{
	{model.RoleStartBrew, Button{Action: ActionStartBrew, Label: "Start Brew", Icon: "mdi:coffee", Class: "brew-button"}},
	{model.RoleStopBrew, Button{Action: ActionStopBrew, Label: "Stop", Icon: "mdi:stop", Class: "stop-button"}},
	{model.RoleStartSteam, Button{Action: ActionStartSteam, Label: "Steam", Icon: "mdi:kettle-steam", Class: "steam-button"}},
	{model.RoleFlush, Button{Action: ActionFlush, Label: "Flush", Icon: "mdi:water", Class: "flush-button"}},
}

// BuildView renders one pass of the card.
func BuildView(in Input) View {
	v := View{Name: in.Config.Name}
	if v.Name == "" {
		v.Name = model.DefaultCardName
	}
	if !in.Connected || !in.Config.Configured() {
		v.Status = StatusUnconfigured
		v.Message = PromptMessage
		return v
	}
	if in.Device != nil {
		v.Device = in.Device.DisplayName()
	}
	if in.Roles.Empty() {
		v.Status = StatusEmpty
		v.Message = EmptyMessage
		return v
	}
	v.Status = StatusReady

	lookup := func(r model.Role) (model.EntityState, bool) {
		id, ok := in.Roles.Get(r)
		if !ok || in.States == nil {
			return model.EntityState{}, false
		}
		return in.States.Get(id)
	}
	value := func(r model.Role, def string) string {
		if st, ok := lookup(r); ok && st.State != "" {
			return st.State
		}
		return def
	}

	modeState, _ := lookup(model.RoleMode)
	profileState, hasProfile := lookup(model.RoleProfile)
	_, hasWeight := lookup(model.RoleWeight)
	activeState, _ := lookup(model.RoleMachineActive)

	v.CurrentTemp = value(model.RoleCurrentTemp, Placeholder)
	v.TargetTemp = value(model.RoleTargetTemp, Placeholder)
	v.Mode = LookupMode(modeState.State)
	v.Active = activeState.State == "on"
	_, v.Power = in.Roles.Get(model.RoleMachineActive)

	if in.Config.ShowProfile && hasProfile {
		v.Profile = &InfoRow{Icon: "mdi:coffee-outline", Label: "Profile", Value: value(model.RoleProfile, DefaultProfile)}
	}
	if in.Config.ShowWeight && hasWeight {
		v.Weight = &InfoRow{Icon: "mdi:scale", Label: "Weight", Value: value(model.RoleWeight, Placeholder), Unit: "g"}
	}
	if !in.Config.ShowControls {
		return v
	}

	c := &Controls{}
	if st, ok := lookup(model.RoleModeSelect); ok {
		c.Mode = newSelect(ActionMode, "Mode", st, modeState.State)
	}
	if st, ok := lookup(model.RoleProfileSelect); ok {
		c.Profile = newSelect(ActionProfile, "Profile", st, profileState.State)
	}
	if st, ok := lookup(model.RoleTargetTempNumber); ok {
		c.TargetTemp = &NumberInput{
			Action: ActionTargetTemperature,
			Label:  "Target Temp (°C)",
			Value:  v.TargetTemp,
			Min:    numberAttr(st.Attributes, "min", defaultTempMin),
			Max:    numberAttr(st.Attributes, "max", defaultTempMax),
			Step:   numberAttr(st.Attributes, "step", defaultTempStep),
		}
	}
	for _, b := range buttons {
		if _, ok := in.Roles.Get(b.role); ok {
			c.Buttons = append(c.Buttons, b.btn)
		}
	}
	if c.Mode != nil || c.Profile != nil || c.TargetTemp != nil || len(c.Buttons) > 0 {
		v.Controls = c
	}
	return v
}

func newSelect(action, label string, st model.EntityState, current string) *Select {
	s := &Select{Action: action, Label: label}
	for _, o := range stringsAttr(st.Attributes, "options") {
		s.Options = append(s.Options, Option{Value: o, Selected: o == current})
	}
	return s
}

func stringsAttr(attrs map[string]interface{}, key string) []string {
	switch raw := attrs[key].(type) {
	case []string:
		return raw
	case []interface{}:
		out := make([]string, 0, len(raw))
		for _, o := range raw {
			if s, ok := o.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// numberAttr falls back to def for missing, zero or non-numeric attributes.
func numberAttr(attrs map[string]interface{}, key string, def float64) float64 {
	var f float64
	switch n := attrs[key].(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	}
	if f == 0 {
		return def
	}
	return f
}
