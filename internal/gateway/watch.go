package gateway

import (
	"context"
	"fmt"
	"net/url"

	"github.com/gorilla/websocket"
	"reminders-lite/internal/model"
)

// Watch dials the change feed for sess. The returned channel is closed when
// ctx ends or the connection drops.
func (c *Client) Watch(ctx context.Context, sess model.Session) (<-chan model.ChangeEvent, error) {
	if !sess.Valid() {
		return nil, &TransportError{Op: "watch", Err: fmt.Errorf("no session")}
	}

	u := *c.baseURL.JoinPath("ws")
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.RawQuery = url.Values{"token": {sess.Token}}.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return nil, &TransportError{Op: "watch", Status: status, Err: err}
	}

	events := make(chan model.ChangeEvent, 16)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	go func() {
		defer close(events)
		defer close(done)
		defer conn.Close()
		for {
			var ev model.ChangeEvent
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			if ev.Type != model.ChangeEventType {
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
