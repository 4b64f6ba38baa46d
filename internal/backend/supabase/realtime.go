package supabase

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"taskverse/internal/backend"
)

const (
	// heartbeatInterval keeps the realtime socket alive.
	heartbeatInterval = 30 * time.Second

	// channelTopic mirrors the channel name the web client used.
	channelTopic = "realtime:tasks-changes"
)

// phxMessage is the phoenix-framed envelope the realtime service speaks.
type phxMessage struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Ref     string          `json:"ref"`
	Payload json.RawMessage `json:"payload"`
}

type joinPayload struct {
	Config joinConfig `json:"config"`
}

type joinConfig struct {
	PostgresChanges []postgresChange `json:"postgres_changes"`
}

type postgresChange struct {
	Event  string `json:"event"`
	Schema string `json:"schema"`
	Table  string `json:"table"`
}

type changePayload struct {
	Data struct {
		Type  string `json:"type"`
		Table string `json:"table"`
	} `json:"data"`
}

// Subscribe implements backend.Notifier: one websocket, one channel join for
// every event type on the table. Events are not filtered by user; the
// row-level policy keeps cross-user rows out of the scoped reload that
// follows. The returned subscription owns the socket and closes it on
// release.
func (c *Client) Subscribe(ctx context.Context, table string) (*backend.Subscription, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.websocketURL(), nil)
	if err != nil {
		return nil, backend.NewError(err.Error())
	}

	join, err := json.Marshal(joinPayload{
		Config: joinConfig{
			PostgresChanges: []postgresChange{{Event: "*", Schema: "public", Table: table}},
		},
	})
	if err != nil {
		conn.Close()
		return nil, backend.NewError(err.Error())
	}
	if err := conn.WriteJSON(phxMessage{Topic: channelTopic, Event: "phx_join", Ref: "1", Payload: join}); err != nil {
		conn.Close()
		return nil, backend.NewError(err.Error())
	}

	sub := backend.NewSubscription(func() { conn.Close() })
	done := make(chan struct{})
	go c.readLoop(conn, sub, done)
	go c.heartbeat(ctx, conn, done)
	return sub, nil
}

func (c *Client) websocketURL() string {
	u := c.baseURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/realtime/v1/websocket?apikey=" + c.anonKey + "&vsn=1.0.0"
}

// readLoop publishes row changes until the socket dies or the subscription
// is released (which closes the socket and errors the pending read).
func (c *Client) readLoop(conn *websocket.Conn, sub *backend.Subscription, done chan struct{}) {
	defer close(done)
	for {
		var msg phxMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Event != "postgres_changes" {
			continue
		}
		var payload changePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.log.Warn("realtime: dropping malformed change event", "error", err)
			continue
		}
		sub.Publish(backend.Change{
			Type:  backend.ChangeType(payload.Data.Type),
			Table: payload.Data.Table,
		})
	}
}

// heartbeat is the only writer after the join frame.
func (c *Client) heartbeat(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	ref := 2
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			conn.Close()
			return
		case <-ticker.C:
			msg := phxMessage{Topic: "phoenix", Event: "heartbeat", Ref: strconv.Itoa(ref), Payload: json.RawMessage("{}")}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
			ref++
		}
	}
}
