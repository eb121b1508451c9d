package reconciler

import (
	// Go Internal Packages
	"sync"

	// Local Packages
	models "tx-tracker/models"

	// External Packages
	"go.uber.org/zap"
)

// Reconciler owns the working set: the ordered in-memory collection of
// transaction records currently displayed. It merges inbound real-time
// events and paginated fetch results, keyed by reference number, and keeps
// at most one record per reference number at all times.
type Reconciler struct {
	logger *zap.Logger

	mu      sync.Mutex
	records []models.TransactionRecord
}

func New(logger *zap.Logger) *Reconciler {
	return &Reconciler{logger: logger}
}

// ApplyEvent merges one inbound event into the working set. It returns the
// reference number that changed and whether anything was applied. Events of
// an unrecognized type or without a reference number are dropped, logged,
// and leave the set untouched. Never panics to the caller.
func (r *Reconciler) ApplyEvent(ev models.InboundEvent) (string, bool) {
	if ev.Type != models.EventTransactionUpdate {
		r.logger.Debug("ignoring event of unknown type", zap.String("type", ev.Type))
		return "", false
	}

	ref := ev.Reference()
	if ref == "" {
		r.logger.Warn("dropping transaction update without reference number")
		return "", false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i := range r.records {
		if r.records[i].ReferenceNo == ref || r.records[i].ReferenceNoAlias == ref {
			idx = i
			break
		}
	}

	if idx >= 0 {
		// Known record: only the volatile fields move. Identity fields
		// (merchant, reference, dates of origin) stay as fetched.
		rec := &r.records[idx]
		rec.Amount = ev.Amount
		rec.Currency = ev.Currency
		rec.Status = models.NormalizeStatus(ev.Status)
		rec.PaidDate = ev.PaidDate
		rec.UpdatedAt = ev.UpdatedAt
	} else {
		// Unknown reference: live transactions land newest-first.
		r.records = append([]models.TransactionRecord{ev.Record()}, r.records...)
	}

	r.resequenceLocked()
	return ref, true
}

// Replace discards the working set and installs the fetched page, assigning
// sequence numbers continuing from the page offset. This is intentionally
// not a merge: records outside the fetched page are gone until a real-time
// event brings them back.
func (r *Reconciler) Replace(records []models.TransactionRecord, page, pageSize int) {
	if page < 1 {
		page = 1
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = make([]models.TransactionRecord, len(records))
	copy(r.records, records)
	for i := range r.records {
		r.records[i].Normalize()
		r.records[i].SequenceNo = (page-1)*pageSize + i + 1
	}
}

// Clear empties the working set. Used when a fetch fails so stale rows are
// never shown next to an error message.
func (r *Reconciler) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
}

// Snapshot returns a copy of the working set in display order.
func (r *Reconciler) Snapshot() []models.TransactionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.TransactionRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Len reports the working set size.
func (r *Reconciler) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// resequenceLocked renumbers every record to its 1-based display position.
// Sequence numbers always reflect current order, not insertion order.
func (r *Reconciler) resequenceLocked() {
	for i := range r.records {
		r.records[i].SequenceNo = i + 1
	}
}
