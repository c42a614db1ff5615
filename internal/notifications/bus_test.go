package notifications

import (
	"testing"

	"github.com/angelmondragon/pim-console/pkg/enums"
)

func TestBusPublishAndDrain(t *testing.T) {
	bus := NewBus(4)
	first := bus.Publish(Success("save", "Producto guardado"))
	bus.Publish(Notification{})
	bus.Publish(Error("save", "boom"))

	if first.ID == "" || first.CreatedAt.IsZero() {
		t.Fatalf("publish should stamp id and time: %+v", first)
	}

	got := bus.Drain()
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got[0].Severity != enums.SeveritySuccess || got[1].Severity != enums.SeverityError {
		t.Fatalf("unexpected order %+v", got)
	}
	if len(bus.Drain()) != 0 {
		t.Fatalf("drain should empty the buffer")
	}
}

func TestBusDropsOldestWhenFull(t *testing.T) {
	bus := NewBus(2)
	bus.Publish(Info("a", "one"))
	bus.Publish(Info("a", "two"))
	bus.Publish(Info("a", "three"))

	got := bus.Drain()
	if len(got) != 2 || got[0].Message != "two" || got[1].Message != "three" {
		t.Fatalf("unexpected buffer %+v", got)
	}
}

func TestBusCloseDiscards(t *testing.T) {
	bus := NewBus(0)
	bus.Publish(Warning("videos", "Límite alcanzado"))

	bus.Close()
	published := bus.Publish(Info("x", "after close"))

	if published.ID == "" {
		t.Fatalf("publish after close should still stamp the notification")
	}
	if got := bus.Drain(); len(got) != 0 {
		t.Fatalf("expected empty bus after close, got %+v", got)
	}
}
