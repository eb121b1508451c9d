package tracker

import (
	// Go Internal Packages
	"context"
	"sync"
	"sync/atomic"
	"time"

	// Local Packages
	events "tx-tracker/events"
	models "tx-tracker/models"
	reconciler "tx-tracker/services/reconciler"
	stream "tx-tracker/stream"

	// External Packages
	"go.uber.org/zap"
)

// NoResultsMessage is surfaced when a successful fetch matches nothing.
const NoResultsMessage = "No transactions found"

// Fetcher is the external transactions endpoint collaborator.
type Fetcher interface {
	SearchTransactions(ctx context.Context, q models.TransactionQuery) (*models.TransactionsResponse, error)
}

// Connection is the live event source. *stream.Manager implements it.
type Connection interface {
	Events() <-chan models.InboundEvent
	State() stream.State
	IsConnected() bool
	Reconnect()
	Disconnect()
}

// Tracker ties the connection manager, the reconciler and the fetch
// collaborator into the one client core both presentation shells consume.
//
// Fetches are tagged with a monotonic sequence token; a completion that
// lands after a newer fetch has started is discarded, so an old page can
// never overwrite a fresher working set. Events from the connection are
// applied strictly in arrival order, one at a time.
type Tracker struct {
	logger  *zap.Logger
	conn    Connection
	api     Fetcher
	set     *reconciler.Reconciler
	bus     *events.Bus
	metrics *Metrics

	fetchSeq atomic.Int64

	mu         sync.Mutex
	pagination models.Pagination
	query      models.TransactionQuery
	message    string
}

func New(logger *zap.Logger, conn Connection, api Fetcher, metrics *Metrics) *Tracker {
	return &Tracker{
		logger:  logger,
		conn:    conn,
		api:     api,
		set:     reconciler.New(logger),
		bus:     events.NewBus(64),
		metrics: metrics,
	}
}

// Bus exposes the change channel shells subscribe to for highlights.
func (t *Tracker) Bus() *events.Bus {
	return t.bus
}

// Run consumes the connection's event channel until ctx is cancelled. Every
// applied event is announced on the bus with the reference number that
// changed.
func (t *Tracker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			t.bus.Close()
			return
		case ev := <-t.conn.Events():
			ref, ok := t.set.ApplyEvent(ev)
			if !ok {
				if t.metrics != nil {
					t.metrics.EventsDropped.Inc()
				}
				continue
			}
			if t.metrics != nil {
				t.metrics.EventsApplied.Inc()
			}
			t.bus.Publish(events.Change{ReferenceNo: ref, At: time.Now()})
		}
	}
}

// Fetch loads one page from the transactions endpoint and replaces the
// working set with it. On failure the working set is cleared and the error
// message kept for display; a stale completion is a silent no-op.
func (t *Tracker) Fetch(ctx context.Context, q models.TransactionQuery) error {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}

	token := t.fetchSeq.Add(1)
	if t.metrics != nil {
		t.metrics.FetchesTotal.Inc()
	}

	resp, err := t.api.SearchTransactions(ctx, q)

	if token != t.fetchSeq.Load() {
		t.logger.Debug("discarding stale fetch completion", zap.Int64("token", token))
		if t.metrics != nil {
			t.metrics.StaleFetches.Inc()
		}
		return nil
	}

	if err != nil {
		t.logger.Error("fetch failed", zap.Error(err))
		if t.metrics != nil {
			t.metrics.FetchFailures.Inc()
		}
		t.set.Clear()
		t.mu.Lock()
		t.query = q
		t.message = err.Error()
		t.mu.Unlock()
		return err
	}

	t.set.Replace(resp.Data, q.Page, q.Limit)

	t.mu.Lock()
	t.query = q
	if resp.Pagination != nil {
		t.pagination = *resp.Pagination
	} else {
		t.pagination = models.Pagination{Page: q.Page, Limit: q.Limit, Total: len(resp.Data), TotalPage: 1}
	}
	if len(resp.Data) == 0 {
		t.message = NoResultsMessage
	} else {
		t.message = ""
	}
	t.mu.Unlock()
	return nil
}

// Transactions returns the current working set in display order.
func (t *Tracker) Transactions() []models.TransactionRecord {
	return t.set.Snapshot()
}

// Pagination returns the pagination block of the last successful fetch.
func (t *Tracker) Pagination() models.Pagination {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pagination
}

// Query returns the filters of the most recent fetch.
func (t *Tracker) Query() models.TransactionQuery {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.query
}

// Message returns the user-visible error or info message, empty when none.
func (t *Tracker) Message() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.message
}

// ConnectionState snapshots the underlying connection manager.
func (t *Tracker) ConnectionState() stream.State {
	return t.conn.State()
}

// Reconnect forwards the manual reconnect request to the connection.
func (t *Tracker) Reconnect() {
	t.conn.Reconnect()
}

// Disconnect forwards the intentional close to the connection.
func (t *Tracker) Disconnect() {
	t.conn.Disconnect()
}
