package hub

import (
	"encoding/json"
	"errors"
	"testing"

	"reminders-lite/internal/model"
)

type testWriter struct {
	writes [][]byte
	fail   bool
	closed bool
}

func (w *testWriter) Write(message []byte) error {
	w.writes = append(w.writes, message)
	if w.fail {
		return errors.New("test")
	}
	return nil
}

func (w *testWriter) Close() error {
	w.closed = true
	return nil
}

func TestHub_RegisterBroadcastUnregister(t *testing.T) {
	h := New()
	w1 := &testWriter{}
	c1 := NewConnection(1, w1)

	h.Register(c1)
	h.Broadcast(1, []byte("x"))
	if len(w1.writes) != 1 {
		t.Fatalf("expected 1 write, got %d", len(w1.writes))
	}

	h.Unregister(c1)
	h.Broadcast(1, []byte("x"))
	if len(w1.writes) != 1 {
		t.Fatalf("expected no more writes, got %d", len(w1.writes))
	}
	if h.Count(1) != 0 {
		t.Fatalf("expected no connections left")
	}
}

func TestHub_BroadcastIsPerUser(t *testing.T) {
	h := New()
	mine := &testWriter{}
	other := &testWriter{}
	h.Register(NewConnection(1, mine))
	h.Register(NewConnection(2, other))

	h.Broadcast(1, []byte("x"))
	if len(mine.writes) != 1 || len(other.writes) != 0 {
		t.Fatalf("expected only user 1 to receive, got %d/%d", len(mine.writes), len(other.writes))
	}
}

func TestHub_RemovesFailedConnections(t *testing.T) {
	h := New()
	w1 := &testWriter{fail: true}
	h.Register(NewConnection(1, w1))

	h.Broadcast(1, []byte("x"))
	h.Broadcast(1, []byte("x"))
	if len(w1.writes) != 1 {
		t.Fatalf("expected only 1 write before removal, got %d", len(w1.writes))
	}
	if !w1.closed {
		t.Fatalf("expected failed writer closed")
	}
}

func TestHub_PublishEncodesChangeEvent(t *testing.T) {
	h := New()
	w := &testWriter{}
	h.Register(NewConnection(3, w))

	h.Publish(3, 9, model.OpUpdate)
	if len(w.writes) != 1 {
		t.Fatalf("expected 1 write, got %d", len(w.writes))
	}
	var ev model.ChangeEvent
	if err := json.Unmarshal(w.writes[0], &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Type != model.ChangeEventType || ev.UserID != 3 || ev.ReminderID != 9 || ev.Op != model.OpUpdate {
		t.Fatalf("unexpected event %+v", ev)
	}
}
