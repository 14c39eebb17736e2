package ws

import (
	"encoding/json"
	"io"
	"log"
	"testing"
	"time"

	"jobscout/internal/domain/scrape"
)

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func TestHub_RegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub(log.New(io.Discard, "", 0))
	go hub.Run()

	c1 := NewClient(hub, nil)
	c2 := NewClient(hub, nil)
	hub.Register(c1)
	hub.Register(c2)
	waitFor(t, func() bool { return hub.ClientCount() == 2 }, "both clients registered")

	hub.Broadcast([]byte("hello"))

	for _, c := range []*Client{c1, c2} {
		select {
		case msg := <-c.send:
			if string(msg) != "hello" {
				t.Fatalf("unexpected message %q", msg)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("client never received broadcast")
		}
	}

	hub.Unregister(c1)
	waitFor(t, func() bool { return hub.ClientCount() == 1 }, "client removed")

	// Unregister closes the send channel.
	select {
	case _, open := <-c1.send:
		if open {
			t.Fatalf("expected closed send channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("send channel never closed")
	}
}

func TestSessionNotifier_BroadcastsEvent(t *testing.T) {
	hub := NewHub(log.New(io.Discard, "", 0))
	go hub.Run()

	c := NewClient(hub, nil)
	hub.Register(c)
	waitFor(t, func() bool { return hub.ClientCount() == 1 }, "client registered")

	n := NewSessionNotifier(hub)
	n.SessionCompleted(scrape.Session{
		ID:         "search_20260830_120000_deadbeef",
		FocusAreas: []string{"internship"},
		TotalFound: 12,
		TotalSaved: 9,
		Success:    true,
	})

	select {
	case msg := <-c.send:
		var evt SessionEvent
		if err := json.Unmarshal(msg, &evt); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if evt.Type != "session_completed" || evt.SessionID != "search_20260830_120000_deadbeef" {
			t.Fatalf("unexpected event: %+v", evt)
		}
		if evt.TotalSaved != 9 || !evt.Success {
			t.Fatalf("counts not carried: %+v", evt)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("event never delivered")
	}
}
