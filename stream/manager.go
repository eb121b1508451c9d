package stream

import (
	// Go Internal Packages
	"context"
	"fmt"
	"sync"
	"time"

	// Local Packages
	models "tx-tracker/models"

	// External Packages
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Status is the connection lifecycle state.
type Status string

const (
	StatusClosed     Status = "closed"
	StatusConnecting Status = "connecting"
	StatusOpen       Status = "open"
)

// Notification is a user-facing connection status message. Success and info
// notifications clear themselves after the notify window; the failure
// notification raised when the attempt cap is reached is persistent.
type Notification struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

const (
	SeveritySuccess = "success"
	SeverityError   = "error"
	SeverityInfo    = "info"
)

// State is a read-only snapshot of the manager, safe to hand to callers.
type State struct {
	Status           Status               `json:"status"`
	Connected        bool                 `json:"connected"`
	ReconnectAttempt int                  `json:"reconnectAttempt"`
	LastMessage      *models.InboundEvent `json:"lastMessage,omitempty"`
	Notification     *Notification        `json:"notification,omitempty"`
}

type ManagerConfig struct {
	Endpoint     string
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	MaxAttempts  int
	ChannelSize  int
	NotifyWindow time.Duration
}

// Manager owns one live websocket to the real-time event source. It dials,
// watches, and redials with exponential backoff, and delivers each parsed
// inbound frame exactly once on Events, in arrival order.
//
// Single-socket invariant: a generation counter is bumped on every dial and
// on teardown; read loops, dial results and reconnect timers from an older
// generation discard themselves instead of touching current state.
type Manager struct {
	conf    ManagerConfig
	backoff Backoff
	logger  *zap.Logger
	metrics *Metrics
	dial    func(ctx context.Context, endpoint string) (*websocket.Conn, error)

	events chan models.InboundEvent

	mu       sync.Mutex
	ctx      context.Context
	status   Status
	conn     *websocket.Conn
	gen      int
	attempt  int
	terminal bool
	timer    *time.Timer
	last     *models.InboundEvent
	note     *Notification
	noteSeq  int
}

func NewManager(conf ManagerConfig, logger *zap.Logger, metrics *Metrics) *Manager {
	if conf.ChannelSize < 1 {
		conf.ChannelSize = 256
	}
	if conf.NotifyWindow <= 0 {
		conf.NotifyWindow = 5 * time.Second
	}
	return &Manager{
		conf:    conf,
		backoff: Backoff{Base: conf.BaseDelay, Max: conf.MaxDelay},
		logger:  logger,
		metrics: metrics,
		dial:    dialWebsocket,
		events:  make(chan models.InboundEvent, conf.ChannelSize),
		status:  StatusClosed,
	}
}

func dialWebsocket(ctx context.Context, endpoint string) (*websocket.Conn, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		return nil, err
	}
	return conn, nil
}

// Start begins the first connection attempt and ties the manager to ctx:
// cancelling ctx disconnects cleanly with no further reconnects.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	m.ctx = ctx
	m.terminal = false
	m.connectLocked()
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.Disconnect()
	}()
}

// Events is the delivery channel for parsed inbound frames. The channel is
// owned by the manager and never closed; consumers select against their own
// context.
func (m *Manager) Events() <-chan models.InboundEvent {
	return m.events
}

// State returns a snapshot of the connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{
		Status:           m.status,
		Connected:        m.status == StatusOpen,
		ReconnectAttempt: m.attempt,
		LastMessage:      m.last,
		Notification:     m.note,
	}
}

// IsConnected reports whether the socket is currently open.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status == StatusOpen
}

// Reconnect is the manual path: it cancels any pending scheduled reconnect,
// resets the attempt counter, drops any existing socket and dials fresh.
func (m *Manager) Reconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTimerLocked()
	m.attempt = 0
	m.terminal = false
	m.closeConnLocked(false)
	m.connectLocked()
}

// Disconnect is the intentional close: pending timers are cancelled, the
// socket is closed cleanly and the manager goes terminal until the next
// manual Reconnect. Attempt counter and last message are reset.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTimerLocked()
	m.terminal = true
	m.gen++ // orphan any in-flight dial or read loop
	m.closeConnLocked(true)
	m.status = StatusClosed
	m.attempt = 0
	m.last = nil
	if m.metrics != nil {
		m.metrics.Connected.Set(0)
	}
}

func (m *Manager) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Manager) closeConnLocked(clean bool) {
	if m.conn == nil {
		return
	}
	if clean {
		deadline := time.Now().Add(time.Second)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client disconnect")
		_ = m.conn.WriteControl(websocket.CloseMessage, msg, deadline)
	}
	_ = m.conn.Close()
	m.conn = nil
}

// connectLocked starts a dial for a new connection generation. The dial
// itself runs off the lock; a stale result is discarded by the generation
// check when it lands.
func (m *Manager) connectLocked() {
	m.status = StatusConnecting
	m.gen++
	gen := m.gen
	ctx := m.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	go func() {
		conn, err := m.dial(ctx, m.conf.Endpoint)
		m.mu.Lock()
		defer m.mu.Unlock()
		if gen != m.gen || m.terminal {
			if conn != nil {
				_ = conn.Close()
			}
			return
		}
		if err != nil {
			m.logger.Warn("websocket dial failed", zap.String("endpoint", m.conf.Endpoint), zap.Error(err))
			m.status = StatusClosed
			m.notifyLocked("WebSocket connection error", SeverityError, true)
			m.scheduleReconnectLocked()
			return
		}

		m.conn = conn
		m.status = StatusOpen
		m.attempt = 0
		if m.metrics != nil {
			m.metrics.Connected.Set(1)
			m.metrics.ConnectsTotal.Inc()
		}
		m.logger.Info("websocket connected", zap.String("endpoint", m.conf.Endpoint))
		m.notifyLocked("Connected to real-time updates", SeveritySuccess, true)
		go m.readLoop(gen, conn)
	}()
}

func (m *Manager) readLoop(gen int, conn *websocket.Conn) {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			m.connLost(gen, err)
			return
		}

		ev, perr := models.ParseInboundEvent(frame, time.Now())
		if perr != nil {
			m.logger.Error("dropping malformed frame", zap.Error(perr))
			if m.metrics != nil {
				m.metrics.ParseFailures.Inc()
			}
			continue
		}

		m.mu.Lock()
		if gen != m.gen {
			m.mu.Unlock()
			return
		}
		m.last = &ev
		ctx := m.ctx
		m.mu.Unlock()

		if m.metrics != nil {
			m.metrics.EventsTotal.Inc()
		}
		if ctx != nil {
			select {
			case m.events <- ev:
			case <-ctx.Done():
				return
			}
		} else {
			m.events <- ev
		}
	}
}

// connLost handles an unclean close reported by the read loop of the given
// generation. Stale generations (already replaced or torn down) are ignored.
func (m *Manager) connLost(gen int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return
	}

	m.logger.Warn("websocket disconnected", zap.Error(err))
	m.closeConnLocked(false)
	m.status = StatusClosed
	if m.metrics != nil {
		m.metrics.Connected.Set(0)
	}
	if m.terminal {
		return
	}
	m.scheduleReconnectLocked()
}

// scheduleReconnectLocked arms the backoff timer for the next automatic
// attempt, or goes terminal with a persistent failure notification once the
// attempt cap is reached.
func (m *Manager) scheduleReconnectLocked() {
	if m.conf.MaxAttempts > 0 && m.attempt >= m.conf.MaxAttempts {
		m.terminal = true
		m.logger.Error("reconnect attempts exhausted", zap.Int("attempts", m.attempt))
		m.notifyLocked(
			fmt.Sprintf("Unable to connect to server after %d attempts", m.attempt),
			SeverityError, false)
		return
	}

	delay := m.backoff.Delay(m.attempt)
	m.attempt++
	if m.metrics != nil {
		m.metrics.Reconnects.Inc()
	}
	m.logger.Info("scheduling reconnect",
		zap.Duration("delay", delay),
		zap.Int("attempt", m.attempt),
		zap.Int("max_attempts", m.conf.MaxAttempts))

	m.timer = time.AfterFunc(delay, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		// A manual reconnect or disconnect may have fired while armed.
		if m.terminal || m.status != StatusClosed {
			return
		}
		m.connectLocked()
	})
}

// notifyLocked publishes a notification; transient ones clear themselves
// after the notify window unless something newer replaced them.
func (m *Manager) notifyLocked(msg, severity string, transient bool) {
	m.noteSeq++
	seq := m.noteSeq
	m.note = &Notification{Message: msg, Severity: severity}
	if !transient {
		return
	}
	time.AfterFunc(m.conf.NotifyWindow, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.noteSeq == seq {
			m.note = nil
		}
	})
}
