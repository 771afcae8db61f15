package notifications

import (
	"testing"

	"github.com/google/uuid"
)

// TestHubPublishToSubscriber проверяет доставку события подписчику.
func TestHubPublishToSubscriber(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, cancel := hub.Subscribe(userID)
	defer cancel()

	hub.Publish(userID, Event{Type: EventLedgerImported})

	select {
	case event := <-ch:
		if event.Type != EventLedgerImported {
			t.Fatalf("expected ledger.imported, got %s", event.Type)
		}
		if event.Timestamp.IsZero() {
			t.Fatal("expected timestamp to be set")
		}
	default:
		t.Fatal("expected event in channel")
	}
}

// TestHubIsolatesUsers проверяет, что чужие события не доставляются.
func TestHubIsolatesUsers(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe(uuid.New())
	defer cancel()

	hub.Publish(uuid.New(), Event{Type: EventSnapshotCreated})

	select {
	case event := <-ch:
		t.Fatalf("unexpected event %s", event.Type)
	default:
	}
}

// TestHubReplaysLastEvent проверяет доставку последнего события при
// переподключении.
func TestHubReplaysLastEvent(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	hub.Publish(userID, Event{Type: EventSnapshotCreated, Data: "stale"})
	hub.Publish(userID, Event{Type: EventSnapshotCreated, Data: "fresh"})

	ch, cancel := hub.Subscribe(userID)
	defer cancel()

	select {
	case event := <-ch:
		if event.Data != "fresh" {
			t.Fatalf("expected latest event, got %v", event.Data)
		}
	default:
		t.Fatal("expected replayed event")
	}

	select {
	case event := <-ch:
		t.Fatalf("expected single replayed event, got extra %v", event.Data)
	default:
	}
}

// TestHubUnsubscribeClosesChannel проверяет идемпотентную отписку.
func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, cancel := hub.Subscribe(userID)
	cancel()
	cancel()

	if _, open := <-ch; open {
		t.Fatal("expected closed channel after unsubscribe")
	}

	// Публикация после отписки не паникует на закрытом канале.
	hub.Publish(userID, Event{Type: EventLedgerImported})
}
