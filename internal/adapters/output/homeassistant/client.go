package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"gaggimate-dashboard/internal/domain/model"
	"gaggimate-dashboard/internal/ports"

	"github.com/go-logr/logr"
	"github.com/gorilla/websocket"
)

const statesCacheTTL = 2 * time.Second

// Client talks to Home Assistant over REST for states and service calls and
// over the WebSocket API for the registries and the state_changed feed.
type Client struct {
	url        string
	token      string
	httpClient *http.Client
	dialer     *websocket.Dialer
	logger     logr.Logger
	mu         sync.RWMutex

	cacheStates []model.EntityState
	cacheTime   time.Time
}

var _ ports.HomeAssistantPort = (*Client)(nil)

func NewClient(logger logr.Logger) *Client {
	return &Client{
		httpClient: &http.Client{},
		dialer:     websocket.DefaultDialer,
		logger:     logger.WithName("homeassistant"),
	}
}

func (c *Client) Configure(url, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.url = strings.TrimSuffix(url, "/")
	c.token = token
	c.cacheStates = nil
	c.cacheTime = time.Time{}
}

func (c *Client) IsConfigured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.url != "" && c.token != ""
}

func (c *Client) credentials() (string, string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.url == "" || c.token == "" {
		return "", "", ports.ErrNotConfigured
	}
	return c.url, c.token, nil
}

// GetStates returns every state object. Results are cached for a couple of
// seconds so a burst of renders costs one request.
func (c *Client) GetStates(ctx context.Context) ([]model.EntityState, error) {
	c.mu.RLock()
	if c.cacheStates != nil && time.Since(c.cacheTime) < statesCacheTTL {
		res := c.cacheStates
		c.mu.RUnlock()
		return res, nil
	}
	c.mu.RUnlock()

	url, token, err := c.credentials()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/api/states", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HA API error: %d", resp.StatusCode)
	}

	var states []model.EntityState
	if err := json.NewDecoder(resp.Body).Decode(&states); err != nil {
		return nil, fmt.Errorf("decode states: %w", err)
	}
	for i := range states {
		stripAttributes(states[i].Attributes)
	}

	c.mu.Lock()
	c.cacheStates = states
	c.cacheTime = time.Now()
	c.mu.Unlock()

	return states, nil
}

// stripAttributes drops attributes the card never reads.
func stripAttributes(attr map[string]interface{}) {
	delete(attr, "entity_picture")
	delete(attr, "entity_picture_local")
	delete(attr, "source_list")
	delete(attr, "sound_mode_list")
}

// CallService posts the call's payload to /api/services/<domain>/<service>.
func (c *Client) CallService(ctx context.Context, call model.ServiceCall) error {
	urlBase, token, err := c.credentials()
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/services/%s/%s", urlBase, call.Domain, call.Service)
	body, err := json.Marshal(call.Payload())
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("HA API error: %d", resp.StatusCode)
	}

	c.mu.Lock()
	c.cacheTime = time.Time{}
	c.mu.Unlock()

	c.logger.V(1).Info("service called", "domain", call.Domain, "service", call.Service, "entity_id", call.EntityID)
	return nil
}

// ListDevices reads the device registry.
func (c *Client) ListDevices(ctx context.Context) ([]model.Device, error) {
	var devices []model.Device
	if err := c.list(ctx, "config/device_registry/list", &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// ListEntities reads the entity registry.
func (c *Client) ListEntities(ctx context.Context) ([]model.RegistryEntry, error) {
	var entries []model.RegistryEntry
	if err := c.list(ctx, "config/entity_registry/list", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) list(ctx context.Context, command string, out interface{}) error {
	sess, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	raw, err := sess.Command(ctx, command, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", command, err)
	}
	return nil
}
