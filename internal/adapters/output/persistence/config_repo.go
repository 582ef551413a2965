package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gaggimate-dashboard/internal/domain/model"
	"gaggimate-dashboard/internal/ports"

	"github.com/goccy/go-yaml"
)

// FileConfigRepository stores the card config in a single file, as YAML when
// the path ends in .yaml or .yml and as JSON otherwise.
type FileConfigRepository struct {
	filepath string
	mu       sync.RWMutex
}

var _ ports.ConfigRepository = (*FileConfigRepository)(nil)

func NewFileConfigRepository(filepath string) *FileConfigRepository {
	return &FileConfigRepository{filepath: filepath}
}

func (r *FileConfigRepository) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(r.filepath))
	return ext == ".yaml" || ext == ".yml"
}

// Get returns the stub config when the file does not exist yet. Keys missing
// from the file keep their stub defaults.
func (r *FileConfigRepository) Get(ctx context.Context) (model.CardConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.filepath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.StubConfig(), nil
		}
		return model.CardConfig{}, err
	}

	if !r.isYAML() {
		cfg, err := model.ParseCardConfig(data)
		if errors.Is(err, model.ErrInvalidConfig) && len(strings.TrimSpace(string(data))) == 0 {
			return model.StubConfig(), nil
		}
		return cfg, err
	}

	cfg := model.StubConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.CardConfig{}, fmt.Errorf("%w: %v", model.ErrInvalidConfig, err)
	}
	return cfg, nil
}

func (r *FileConfigRepository) Save(ctx context.Context, config model.CardConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		data []byte
		err  error
	)
	if r.isYAML() {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(r.filepath, data, 0644)
}
