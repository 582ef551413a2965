package presentation

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gaggimate-dashboard/internal/domain/model"
)

type states map[string]model.EntityState

func (s states) Get(id string) (model.EntityState, bool) {
	st, ok := s[id]
	return st, ok
}

func fullRoles() model.RoleMap {
	return model.RoleMap{
		model.RoleCurrentTemp:      "sensor.gm_current_temperature",
		model.RoleTargetTemp:       "sensor.gm_target_temperature",
		model.RoleMode:             "sensor.gm_mode",
		model.RoleProfile:          "sensor.gm_selected_profile",
		model.RoleWeight:           "sensor.gm_current_weight",
		model.RoleMachineActive:    "switch.gm_machine_active",
		model.RoleModeSelect:       "select.gm_mode",
		model.RoleProfileSelect:    "select.gm_profile",
		model.RoleTargetTempNumber: "number.gm_target_temperature",
		model.RoleStartBrew:        "button.gm_start_brew",
		model.RoleFlush:            "button.gm_flush",
	}
}

func fullStates() states {
	return states{
		"sensor.gm_current_temperature": {State: "92.5"},
		"sensor.gm_target_temperature":  {State: "93"},
		"sensor.gm_mode":                {State: "Brew"},
		"sensor.gm_selected_profile":    {State: "Classic"},
		"sensor.gm_current_weight":      {State: "18.2"},
		"switch.gm_machine_active":      {State: "on"},
		"select.gm_mode": {State: "Brew", Attributes: map[string]interface{}{
			"options": []interface{}{"Standby", "Brew", "Steam"},
		}},
		"select.gm_profile": {State: "Classic", Attributes: map[string]interface{}{
			"options": []interface{}{"Classic", "Turbo"},
		}},
		"number.gm_target_temperature": {State: "93", Attributes: map[string]interface{}{
			"min": 85.0, "max": 98.0,
		}},
	}
}

func TestBuildView_Unconfigured(t *testing.T) {
	v := BuildView(Input{Config: model.StubConfig(), Connected: true})
	assert.Equal(t, StatusUnconfigured, v.Status)
	assert.Equal(t, PromptMessage, v.Message)

	cfg := model.StubConfig()
	cfg.DeviceID = "dev1"
	v = BuildView(Input{Config: cfg, Roles: fullRoles(), Connected: false})
	assert.Equal(t, StatusUnconfigured, v.Status)
}

func TestBuildView_NoEntities(t *testing.T) {
	cfg := model.StubConfig()
	cfg.DeviceID = "dev1"
	v := BuildView(Input{Config: cfg, Roles: model.RoleMap{}, Connected: true})
	assert.Equal(t, StatusEmpty, v.Status)
	assert.Equal(t, EmptyMessage, v.Message)
}

func TestBuildView_Full(t *testing.T) {
	cfg := model.StubConfig()
	cfg.DeviceID = "dev1"
	v := BuildView(Input{
		Config:    cfg,
		Roles:     fullRoles(),
		States:    fullStates(),
		Device:    &model.Device{ID: "dev1", Name: "GaggiMate Pro"},
		Connected: true,
	})

	assert.Equal(t, StatusReady, v.Status)
	assert.Equal(t, "GaggiMate Pro", v.Device)
	assert.Equal(t, "92.5°", v.CurrentTempLabel())
	assert.Equal(t, "→ 93°", v.TargetTempLabel())
	assert.Equal(t, "Brew", v.Mode.Label)
	assert.True(t, v.Active)
	assert.True(t, v.Power)
	require.NotNil(t, v.Profile)
	assert.Equal(t, "Profile: Classic", v.Profile.String())
	require.NotNil(t, v.Weight)
	assert.Equal(t, "Weight: 18.2g", v.Weight.String())

	require.NotNil(t, v.Controls)
	require.NotNil(t, v.Controls.Mode)
	assert.Equal(t, []Option{{Value: "Standby"}, {Value: "Brew", Selected: true}, {Value: "Steam"}}, v.Controls.Mode.Options)
	require.NotNil(t, v.Controls.Profile)
	assert.True(t, v.Controls.Profile.Options[0].Selected)
	require.NotNil(t, v.Controls.TargetTemp)
	assert.Equal(t, 85.0, v.Controls.TargetTemp.Min)
	assert.Equal(t, 98.0, v.Controls.TargetTemp.Max)
	assert.Equal(t, 0.1, v.Controls.TargetTemp.Step)
	assert.Equal(t, "93", v.Controls.TargetTemp.Value)

	var actions []string
	for _, b := range v.Controls.Buttons {
		actions = append(actions, b.Action)
	}
	assert.Equal(t, []string{ActionStartBrew, ActionFlush}, actions)
}

func TestBuildView_PlaceholdersAndOmittedControls(t *testing.T) {
	cfg := model.StubConfig()
	cfg.DeviceID = "dev1"
	roles := model.RoleMap{
		model.RoleCurrentTemp:   "sensor.dev1_current_temperature",
		model.RoleMachineActive: "switch.dev1_machine_active",
	}
	v := BuildView(Input{Config: cfg, Roles: roles, States: states{}, Connected: true})

	assert.Equal(t, StatusReady, v.Status)
	assert.Equal(t, "--°", v.CurrentTempLabel())
	assert.Equal(t, "→ --°", v.TargetTempLabel())
	assert.Equal(t, ModeStandby, v.Mode.Key)
	assert.False(t, v.Active)
	assert.True(t, v.Power)
	assert.Nil(t, v.Profile)
	assert.Nil(t, v.Weight)
	assert.Nil(t, v.Controls)
}

func TestBuildView_Toggles(t *testing.T) {
	cfg := model.StubConfig()
	cfg.Entity = "sensor.gm_current_temperature"
	cfg.ShowProfile = false
	cfg.ShowWeight = false
	cfg.ShowControls = false
	v := BuildView(Input{Config: cfg, Roles: fullRoles(), States: fullStates(), Connected: true})

	assert.Nil(t, v.Profile)
	assert.Nil(t, v.Weight)
	assert.Nil(t, v.Controls)
}

func TestLookupMode(t *testing.T) {
	assert.Equal(t, "Hot Water", LookupMode("Hot Water").Label)
	assert.Equal(t, "Steam", LookupMode("steam").Label)
	assert.Equal(t, "Standby", LookupMode("descaling").Label)
	assert.Equal(t, "Standby", LookupMode("").Label)
}

func TestRenderText(t *testing.T) {
	cfg := model.StubConfig()
	cfg.DeviceID = "dev1"
	v := BuildView(Input{Config: cfg, Roles: fullRoles(), States: fullStates(), Connected: true})

	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, v))
	out := buf.String()
	assert.Contains(t, out, "GaggiMate [on]")
	assert.Contains(t, out, "Temperature: 92.5° → 93°")
	assert.Contains(t, out, "Mode: Standby, *Brew, Steam")
	assert.Contains(t, out, "Actions: Start Brew, Flush")

	buf.Reset()
	require.NoError(t, RenderText(&buf, BuildView(Input{Config: model.StubConfig(), Connected: true})))
	assert.Equal(t, "GaggiMate\n"+PromptMessage+"\n", buf.String())
}

func TestRenderHTML(t *testing.T) {
	cfg := model.StubConfig()
	cfg.DeviceID = "dev1"
	v := BuildView(Input{Config: cfg, Roles: fullRoles(), States: fullStates(), Connected: true})

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, v))
	out := buf.String()
	assert.Contains(t, out, "92.5°")
	assert.Contains(t, out, "Start Brew")
	assert.NotContains(t, out, "Steam</button>")

	buf.Reset()
	require.NoError(t, RenderFace(&buf, BuildView(Input{Config: model.StubConfig(), Connected: true})))
	assert.Contains(t, buf.String(), PromptMessage)
}
