package ws

import (
	"encoding/json"
	"testing"
	"time"
)

func waitForEvent(t *testing.T, ch <-chan []byte) Event {
	t.Helper()
	select {
	case data := <-ch:
		var evt Event
		if err := json.Unmarshal(data, &evt); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublishReachesOnlyRoomSubscribers(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	inRoom := NewClient(hub, nil, nil, nil, 101)
	inRoom.subscribe(42)
	outside := NewClient(hub, nil, nil, nil, 202)
	outside.subscribe(77)

	hub.register <- inRoom
	hub.register <- outside

	hub.Publish(42, "chat:message", map[string]string{"message": "hello"})

	evt := waitForEvent(t, inRoom.send)
	if evt.Type != "chat:message" || evt.MatchID != 42 {
		t.Fatalf("unexpected event: %+v", evt)
	}

	select {
	case data := <-outside.send:
		t.Fatalf("client outside the room received %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRegisterReplacesExistingConnectionForUser(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	first := NewClient(hub, nil, nil, nil, 101)
	first.subscribe(42)
	hub.register <- first

	second := NewClient(hub, nil, nil, nil, 101)
	second.subscribe(42)
	hub.register <- second

	select {
	case <-first.done:
	case <-time.After(time.Second):
		t.Fatal("first connection was not dropped")
	}

	hub.Publish(42, "chat:message", map[string]string{"message": "hi"})
	evt := waitForEvent(t, second.send)
	if evt.MatchID != 42 {
		t.Fatalf("unexpected event: %+v", evt)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	client := NewClient(hub, nil, nil, nil, 101)
	client.subscribe(42)
	hub.register <- client

	hub.Publish(42, "chat:message", map[string]string{"message": "one"})
	waitForEvent(t, client.send)

	client.unsubscribe(42)
	hub.Publish(42, "chat:message", map[string]string{"message": "two"})

	select {
	case data := <-client.send:
		t.Fatalf("received event after unsubscribe: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}
