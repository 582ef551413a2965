package homeassistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gaggimate-dashboard/internal/domain/model"
	"gaggimate-dashboard/internal/ports"

	"github.com/gorilla/websocket"
)

const (
	msgAuthRequired = "auth_required"
	msgAuth         = "auth"
	msgAuthOK       = "auth_ok"
	msgAuthInvalid  = "auth_invalid"
	msgResult       = "result"
	msgEvent        = "event"

	eventStateChanged = "state_changed"
)

var ErrAuthInvalid = errors.New("Home Assistant rejected the access token")

type wsMessage struct {
	ID      int             `json:"id,omitempty"`
	Type    string          `json:"type"`
	Success bool            `json:"success,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *wsError        `json:"error,omitempty"`
	Event   *wsEvent        `json:"event,omitempty"`
	Message string          `json:"message,omitempty"`
}

type wsError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type wsEvent struct {
	EventType string `json:"event_type"`
	Data      struct {
		EntityID string             `json:"entity_id"`
		NewState *model.EntityState `json:"new_state"`
	} `json:"data"`
}

// session is one authenticated WebSocket connection. Commands are numbered
// per connection and answered by a result message with the same id.
type session struct {
	conn   *websocket.Conn
	nextID int
}

// websocketURL maps http(s)://host to ws(s)://host/api/websocket.
func websocketURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/api/websocket"
}

func (c *Client) dial(ctx context.Context) (*session, error) {
	url, token, err := c.credentials()
	if err != nil {
		return nil, err
	}
	conn, _, err := c.dialer.DialContext(ctx, websocketURL(url), nil)
	if err != nil {
		return nil, fmt.Errorf("dial websocket: %w", err)
	}
	sess := &session{conn: conn}
	if err := sess.auth(ctx, token); err != nil {
		conn.Close()
		return nil, err
	}
	return sess, nil
}

func (s *session) auth(ctx context.Context, token string) error {
	msg, err := s.read(ctx)
	if err != nil {
		return err
	}
	if msg.Type != msgAuthRequired {
		return fmt.Errorf("unexpected %q before auth", msg.Type)
	}
	if err := s.conn.WriteJSON(map[string]string{"type": msgAuth, "access_token": token}); err != nil {
		return err
	}
	msg, err = s.read(ctx)
	if err != nil {
		return err
	}
	switch msg.Type {
	case msgAuthOK:
		return nil
	case msgAuthInvalid:
		return fmt.Errorf("%w: %s", ErrAuthInvalid, msg.Message)
	}
	return fmt.Errorf("unexpected %q during auth", msg.Type)
}

func (s *session) read(ctx context.Context) (wsMessage, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = s.conn.SetReadDeadline(deadline)
	}
	var msg wsMessage
	if err := s.conn.ReadJSON(&msg); err != nil {
		return msg, fmt.Errorf("read websocket: %w", err)
	}
	return msg, nil
}

// Command sends a command and waits for its result. Messages for other ids
// are skipped.
func (s *session) Command(ctx context.Context, typ string, fields map[string]interface{}) (json.RawMessage, error) {
	s.nextID++
	id := s.nextID
	req := map[string]interface{}{"id": id, "type": typ}
	for k, v := range fields {
		req[k] = v
	}
	if err := s.conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("write %s: %w", typ, err)
	}
	for {
		msg, err := s.read(ctx)
		if err != nil {
			return nil, err
		}
		if msg.ID != id || msg.Type != msgResult {
			continue
		}
		if !msg.Success {
			if msg.Error != nil {
				return nil, fmt.Errorf("%s: %s: %s", typ, msg.Error.Code, msg.Error.Message)
			}
			return nil, fmt.Errorf("%s failed", typ)
		}
		return msg.Result, nil
	}
}

func (s *session) Close() error {
	return s.conn.Close()
}

// Watch subscribes to state_changed, loads the full snapshot into the store
// and then applies every new state until ctx is done or the connection drops.
// An event without a new state removes the entity.
func (c *Client) Watch(ctx context.Context, store ports.StateStore) error {
	sess, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	stop := context.AfterFunc(ctx, func() { sess.Close() })
	defer stop()

	if _, err := sess.Command(ctx, "subscribe_events", map[string]interface{}{"event_type": eventStateChanged}); err != nil {
		return err
	}
	states, err := c.GetStates(ctx)
	if err != nil {
		return err
	}
	if err := store.Replace(states); err != nil {
		return err
	}
	c.logger.Info("following state changes", "entities", len(states))

	for {
		msg, err := sess.read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if msg.Type != msgEvent || msg.Event == nil || msg.Event.EventType != eventStateChanged {
			continue
		}
		st := msg.Event.Data.NewState
		if st == nil {
			// entity removed
			if err := store.Delete(msg.Event.Data.EntityID); err != nil {
				c.logger.Error(err, "failed to drop state", "entity_id", msg.Event.Data.EntityID)
			}
			continue
		}
		stripAttributes(st.Attributes)
		if err := store.Upsert(*st); err != nil {
			c.logger.Error(err, "failed to store state", "entity_id", st.EntityID)
		}
	}
}

// Follow keeps Watch running, reconnecting after retry, until ctx is done.
func (c *Client) Follow(ctx context.Context, store ports.StateStore, retry time.Duration) {
	for {
		err := c.Watch(ctx, store)
		if ctx.Err() != nil {
			return
		}
		c.logger.Error(err, "state feed lost", "retry", retry.String())
		select {
		case <-ctx.Done():
			return
		case <-time.After(retry):
		}
	}
}
