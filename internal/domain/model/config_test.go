package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCardConfig(t *testing.T) {
	cfg, err := ParseCardConfig([]byte(`{"device_id":"dev1","show_weight":false}`))
	require.NoError(t, err)
	assert.Equal(t, CardConfig{
		DeviceID:     "dev1",
		Name:         DefaultCardName,
		ShowProfile:  true,
		ShowWeight:   false,
		ShowControls: true,
	}, cfg)
	assert.True(t, cfg.Configured())
}

func TestParseCardConfig_Invalid(t *testing.T) {
	for _, in := range []string{"", "null", "{"} {
		_, err := ParseCardConfig([]byte(in))
		assert.ErrorIs(t, err, ErrInvalidConfig, in)
	}
}

func TestStubConfig(t *testing.T) {
	cfg := StubConfig()
	assert.False(t, cfg.Configured())
	assert.Equal(t, "GaggiMate", cfg.Name)
}

func TestRoleMap(t *testing.T) {
	m := RoleMap{RoleFlush: "button.x_flush", RoleMode: ""}
	_, ok := m.Get(RoleMode)
	assert.False(t, ok)
	assert.False(t, m.Empty())
	assert.True(t, RoleMap{RoleMode: ""}.Empty())

	c := m.Clone()
	c[RoleFlush] = "button.y_flush"
	assert.Equal(t, "button.x_flush", m[RoleFlush])

	data, err := m.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"flush":"button.x_flush"`)
	assert.Contains(t, string(data), `"mode":null`)
}

func TestDomain(t *testing.T) {
	assert.Equal(t, "sensor", Domain("sensor.gaggimate_mode"))
	assert.Equal(t, "", Domain("gaggimate_mode"))
}
