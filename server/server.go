package server

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	// Local Packages
	events "tx-tracker/events"
	models "tx-tracker/models"
	tracker "tx-tracker/services/tracker"

	// External Packages
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server is the dashboard shell's HTTP surface: it serves the reconciled
// working set, connection status, manual reconnect/disconnect, and metrics.
type Server struct {
	logger          *zap.Logger
	tracker         *tracker.Tracker
	registry        *prometheus.Registry
	defaultPageSize int
	highlightWindow time.Duration

	hmu        sync.Mutex
	highlights map[string]time.Time
}

func New(logger *zap.Logger, t *tracker.Tracker, registry *prometheus.Registry, pageSize int, highlightWindow time.Duration) *Server {
	if highlightWindow <= 0 {
		highlightWindow = 4 * time.Second
	}
	return &Server{
		logger:          logger,
		tracker:         t,
		registry:        registry,
		defaultPageSize: pageSize,
		highlightWindow: highlightWindow,
		highlights:      make(map[string]time.Time),
	}
}

// Run subscribes to working-set changes for highlight bookkeeping and serves
// HTTP until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	id, changes := s.tracker.Bus().Subscribe()
	defer s.tracker.Bus().Unsubscribe(id)
	go s.trackHighlights(changes)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Router wires the dashboard routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/transactions", s.handleTransactions).Methods(http.MethodGet)
	r.HandleFunc("/transactions/fetch", s.handleFetch).Methods(http.MethodPost)
	r.HandleFunc("/reconnect", s.handleReconnect).Methods(http.MethodPost)
	r.HandleFunc("/disconnect", s.handleDisconnect).Methods(http.MethodPost)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

// trackHighlights records each change so rows can be flagged for the
// highlight window. Entries expire lazily on read.
func (s *Server) trackHighlights(changes <-chan events.Change) {
	for c := range changes {
		s.hmu.Lock()
		s.highlights[c.ReferenceNo] = c.At
		s.hmu.Unlock()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.ConnectionState())
}

// transactionRow is one row of the working set as served to the dashboard,
// the record plus its transient highlight flag.
type transactionRow struct {
	models.TransactionRecord
	Highlighted bool `json:"highlighted"`
}

type transactionsPage struct {
	Data       []transactionRow  `json:"data"`
	Pagination models.Pagination `json:"pagination"`
	Message    string            `json:"message,omitempty"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, _ *http.Request) {
	records := s.tracker.Transactions()
	rows := make([]transactionRow, len(records))
	for i, rec := range records {
		rows[i] = transactionRow{
			TransactionRecord: rec,
			Highlighted:       s.highlighted(rec.ReferenceNo),
		}
	}
	writeJSON(w, http.StatusOK, transactionsPage{
		Data:       rows,
		Pagination: s.tracker.Pagination(),
		Message:    s.tracker.Message(),
	})
}

// handleFetch triggers a fresh page fetch with the given filters, mirroring
// the dashboard's search / filter / page-change controls.
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	q := queryFromRequest(r, s.defaultPageSize)
	if err := s.tracker.Fetch(r.Context(), q); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	s.handleTransactions(w, r)
}

func (s *Server) handleReconnect(w http.ResponseWriter, _ *http.Request) {
	s.tracker.Reconnect()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "reconnecting"})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, _ *http.Request) {
	s.tracker.Disconnect()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "disconnected"})
}

// highlighted reports whether the record changed within the highlight
// window, pruning expired entries as a side effect.
func (s *Server) highlighted(referenceNo string) bool {
	s.hmu.Lock()
	defer s.hmu.Unlock()
	at, ok := s.highlights[referenceNo]
	if !ok {
		return false
	}
	if time.Since(at) > s.highlightWindow {
		delete(s.highlights, referenceNo)
		return false
	}
	return true
}

func queryFromRequest(r *http.Request, defaultLimit int) models.TransactionQuery {
	q := models.TransactionQuery{
		ReferenceNumber: r.URL.Query().Get("referenceNumber"),
		Status:          r.URL.Query().Get("status"),
		StartDate:       r.URL.Query().Get("startDate"),
		EndDate:         r.URL.Query().Get("endDate"),
		Search:          r.URL.Query().Get("search"),
		Page:            intParam(r, "page", 1),
		Limit:           intParam(r, "limit", defaultLimit),
	}
	return q
}

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
