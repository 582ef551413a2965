package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gaggimate-dashboard/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileConfigRepository_Missing(t *testing.T) {
	repo := NewFileConfigRepository(filepath.Join(t.TempDir(), "card.json"))
	cfg, err := repo.Get(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, model.StubConfig(), cfg)
}

func TestFileConfigRepository_PartialJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"entity":"sensor.gaggimate_current_temperature","show_controls":false}`), 0644))

	cfg, err := NewFileConfigRepository(path).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sensor.gaggimate_current_temperature", cfg.Entity)
	assert.Equal(t, "GaggiMate", cfg.Name)
	assert.True(t, cfg.ShowWeight)
	assert.False(t, cfg.ShowControls)
}

func TestFileConfigRepository_BrokenJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"device_id":`), 0644))

	_, err := NewFileConfigRepository(path).Get(context.Background())
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestFileConfigRepository_RoundTrip(t *testing.T) {
	for _, name := range []string{"card.json", "card.yaml"} {
		t.Run(name, func(t *testing.T) {
			repo := NewFileConfigRepository(filepath.Join(t.TempDir(), name))
			cfg := model.CardConfig{DeviceID: "dev1", Name: "Bar", ShowProfile: true}

			require.NoError(t, repo.Save(context.Background(), cfg))
			loaded, err := repo.Get(context.Background())
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestFileConfigRepository_YAMLDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.yml")
	require.NoError(t, os.WriteFile(path, []byte("device_id: dev1\nshow_weight: false\n"), 0644))

	cfg, err := NewFileConfigRepository(path).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dev1", cfg.DeviceID)
	assert.False(t, cfg.ShowWeight)
	assert.True(t, cfg.ShowProfile)
	assert.Equal(t, "GaggiMate", cfg.Name)
}
