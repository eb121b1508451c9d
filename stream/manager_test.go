package stream

import (
	// Go Internal Packages
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	// Local Packages
	models "tx-tracker/models"

	// External Packages
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// wsServer is a test websocket endpoint that plays the given frames to every
// client and then holds the connection open.
type wsServer struct {
	srv      *httptest.Server
	accepted atomic.Int32
	frames   []string
}

func newWSServer(t *testing.T, frames ...string) *wsServer {
	t.Helper()

	ws := &wsServer{frames: frames}
	upgrader := websocket.Upgrader{}
	ws.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ws.accepted.Add(1)
		for _, f := range ws.frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		// Hold the connection until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(ws.srv.Close)
	return ws
}

func (w *wsServer) endpoint() string {
	return "ws" + strings.TrimPrefix(w.srv.URL, "http")
}

func testManager(endpoint string) *Manager {
	return NewManager(ManagerConfig{
		Endpoint:    endpoint,
		BaseDelay:   5 * time.Millisecond,
		MaxDelay:    20 * time.Millisecond,
		MaxAttempts: 3,
		ChannelSize: 16,
	}, zap.NewNop(), nil)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func recvEvent(t *testing.T, ch <-chan models.InboundEvent) models.InboundEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
		return models.InboundEvent{}
	}
}

func TestManager_DeliversEventsInOrder(t *testing.T) {
	t.Parallel()

	srv := newWSServer(t,
		`{"type":"TRANSACTION_UPDATE","reference_no":"A1","status":"pending","amount":100,"currency":"IDR"}`,
		`{"type":"TRANSACTION_UPDATE","reference_no":"A2","status":"success","amount":200,"currency":"IDR"}`,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := testManager(srv.endpoint())
	m.Start(ctx)

	first := recvEvent(t, m.Events())
	if first.ReferenceNo != "A1" {
		t.Fatalf("first event reference = %q, want A1", first.ReferenceNo)
	}
	second := recvEvent(t, m.Events())
	if second.ReferenceNo != "A2" {
		t.Fatalf("second event reference = %q, want A2", second.ReferenceNo)
	}
	if second.ReceivedAt.IsZero() {
		t.Fatal("event not stamped with receive time")
	}

	waitFor(t, "open state", m.IsConnected)
	state := m.State()
	if state.Status != StatusOpen {
		t.Fatalf("Status = %q, want %q", state.Status, StatusOpen)
	}
	if state.LastMessage == nil || state.LastMessage.ReferenceNo != "A2" {
		t.Fatal("LastMessage should hold the most recent parsed event")
	}
	if state.ReconnectAttempt != 0 {
		t.Fatalf("ReconnectAttempt = %d after successful open, want 0", state.ReconnectAttempt)
	}
}

func TestManager_DropsMalformedFrames(t *testing.T) {
	t.Parallel()

	srv := newWSServer(t,
		`{not json`,
		`{"type":"TRANSACTION_UPDATE","reference_no":"GOOD","status":"success"}`,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := testManager(srv.endpoint())
	m.Start(ctx)

	// The malformed frame is dropped without crashing or being delivered.
	ev := recvEvent(t, m.Events())
	if ev.ReferenceNo != "GOOD" {
		t.Fatalf("delivered event reference = %q, want GOOD", ev.ReferenceNo)
	}

	state := m.State()
	if state.LastMessage == nil || state.LastMessage.ReferenceNo != "GOOD" {
		t.Fatal("malformed frame must not become LastMessage")
	}
}

func TestManager_DisconnectIsTerminal(t *testing.T) {
	t.Parallel()

	srv := newWSServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := testManager(srv.endpoint())
	m.Start(ctx)
	waitFor(t, "open state", m.IsConnected)

	m.Disconnect()

	state := m.State()
	if state.Status != StatusClosed {
		t.Fatalf("Status = %q after Disconnect, want %q", state.Status, StatusClosed)
	}
	if state.LastMessage != nil {
		t.Fatal("LastMessage not reset by Disconnect")
	}
	if state.ReconnectAttempt != 0 {
		t.Fatalf("ReconnectAttempt = %d after Disconnect, want 0", state.ReconnectAttempt)
	}

	// A clean close never schedules a reconnect.
	time.Sleep(100 * time.Millisecond)
	if got := srv.accepted.Load(); got != 1 {
		t.Fatalf("server accepted %d connections, want 1", got)
	}
	if m.IsConnected() {
		t.Fatal("manager reconnected after intentional close")
	}
}

func TestManager_ReconnectsAfterUncleanClose(t *testing.T) {
	t.Parallel()

	upgrader := websocket.Upgrader{}
	var accepted atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		n := accepted.Add(1)
		if n == 1 {
			// Drop the first connection without a close handshake.
			_ = conn.Close()
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := testManager("ws" + strings.TrimPrefix(srv.URL, "http"))
	m.Start(ctx)

	waitFor(t, "automatic reconnect", func() bool { return accepted.Load() >= 2 })
	waitFor(t, "open state after reconnect", m.IsConnected)
}

// failingDialManager builds a manager whose dials always fail, counting them.
func failingDialManager(maxAttempts int) (*Manager, *atomic.Int32) {
	m := NewManager(ManagerConfig{
		Endpoint:    "ws://unreachable.invalid/ws",
		BaseDelay:   time.Millisecond,
		MaxDelay:    4 * time.Millisecond,
		MaxAttempts: maxAttempts,
	}, zap.NewNop(), nil)

	var calls atomic.Int32
	m.dial = func(context.Context, string) (*websocket.Conn, error) {
		calls.Add(1)
		return nil, context.DeadlineExceeded
	}
	return m, &calls
}

func TestManager_StopsAtAttemptCap(t *testing.T) {
	t.Parallel()

	m, calls := failingDialManager(2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	// Initial dial plus two scheduled retries, then terminal.
	waitFor(t, "attempt cap", func() bool {
		s := m.State()
		return calls.Load() == 3 && s.Status == StatusClosed &&
			s.ReconnectAttempt == 2 &&
			s.Notification != nil && s.Notification.Severity == SeverityError
	})

	// Terminal: no further automatic attempts fire.
	time.Sleep(50 * time.Millisecond)
	if got := calls.Load(); got != 3 {
		t.Fatalf("dials after cap = %d, want 3", got)
	}
}

func TestManager_ManualReconnectResetsAttempts(t *testing.T) {
	t.Parallel()

	m, calls := failingDialManager(2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	waitFor(t, "attempt cap", func() bool { return calls.Load() == 3 })

	m.Reconnect()

	// A full fresh cycle runs: the counter was reset to zero, so the dead
	// endpoint is dialed three more times before going terminal again.
	waitFor(t, "second attempt cycle", func() bool {
		s := m.State()
		return calls.Load() == 6 && s.ReconnectAttempt == 2 && s.Notification != nil
	})
}
