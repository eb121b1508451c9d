package events

import (
	// Go Internal Packages
	"testing"
	"time"
)

func TestBus_PublishReachesAllSubscribers(t *testing.T) {
	t.Parallel()

	b := NewBus(4)
	defer b.Close()

	id1, ch1 := b.Subscribe()
	id2, ch2 := b.Subscribe()
	if id1 == id2 {
		t.Fatal("subscriber ids must be unique")
	}

	c := Change{ReferenceNo: "A1", At: time.Now()}
	b.Publish(c)

	for _, ch := range []<-chan Change{ch1, ch2} {
		select {
		case got := <-ch:
			if got.ReferenceNo != "A1" {
				t.Fatalf("change reference = %q, want A1", got.ReferenceNo)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive change")
		}
	}
}

func TestBus_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	t.Parallel()

	b := NewBus(1)
	defer b.Close()

	_, ch := b.Subscribe()
	b.Publish(Change{ReferenceNo: "A1"})
	b.Publish(Change{ReferenceNo: "A2"}) // no room, dropped

	got := <-ch
	if got.ReferenceNo != "A1" {
		t.Fatalf("first change = %q, want A1", got.ReferenceNo)
	}
	select {
	case extra := <-ch:
		t.Fatalf("unexpected buffered change %q", extra.ReferenceNo)
	default:
	}
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()

	b := NewBus(1)
	defer b.Close()

	id, ch := b.Subscribe()
	b.Unsubscribe(id)

	if _, ok := <-ch; ok {
		t.Fatal("channel still open after Unsubscribe")
	}
	// Publishing after unsubscribe must not panic.
	b.Publish(Change{ReferenceNo: "A1"})
}

func TestBus_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	b := NewBus(1)
	_, ch := b.Subscribe()
	b.Close()
	b.Close()

	if _, ok := <-ch; ok {
		t.Fatal("channel still open after Close")
	}
	b.Publish(Change{ReferenceNo: "A1"}) // no-op on a closed bus

	if id, late := b.Subscribe(); id == "" {
		t.Fatal("Subscribe() after Close returned empty id")
	} else if _, ok := <-late; ok {
		t.Fatal("late subscriber channel should be closed immediately")
	}
}
