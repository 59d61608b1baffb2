// Package collection owns the canonical bill collection and the active bill
// pointer. It is the single entry point for every mutation: each change is
// applied through the ledger editor, checked against the bill invariants,
// persisted, and then announced to observers.
package collection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/ledger"
	"github.com/mmynk/billsplit/internal/metrics"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

// Observer receives the committed snapshot after every change.
type Observer func(models.Snapshot)

// Repository serializes all operations on the collection with a mutex,
// so concurrent callers see one mutation in flight at a time.
type Repository struct {
	mu   sync.Mutex
	snap models.Snapshot

	editor  *ledger.Editor
	store   storage.Store
	now     func() time.Time
	metrics *metrics.Metrics

	// version counts commits. Guarded by mu.
	version uint64

	obsMu     sync.Mutex
	observers map[int]Observer
	nextObs   int

	// Delivery queue, guarded by obsMu. queued is the newest version
	// accepted for delivery.
	pending    []models.Snapshot
	queued     uint64
	delivering bool
}

// Option configures a Repository.
type Option func(*Repository)

// WithStore persists every committed change to store.
func WithStore(store storage.Store) Option {
	return func(r *Repository) { r.store = store }
}

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(ids ledger.IDGenerator) Option {
	return func(r *Repository) { r.editor = ledger.NewEditor(ids) }
}

// WithClock replaces time.Now for bill creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithMetrics records mutations in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Repository) { r.metrics = m }
}

// Open creates a repository and loads the persisted collection when a store
// is configured.
func Open(ctx context.Context, opts ...Option) (*Repository, error) {
	r := &Repository{
		editor:    ledger.NewEditor(nil),
		now:       time.Now,
		observers: make(map[int]Observer),
		snap:      models.Snapshot{Bills: []models.Bill{}},
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.store != nil {
		snap, err := r.store.LoadSnapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load collection: %w", err)
		}
		for _, bill := range snap.Bills {
			if err := bill.CheckInvariants(); err != nil {
				return nil, fmt.Errorf("stored collection is inconsistent: %w", err)
			}
		}
		if snap.Bills == nil {
			snap.Bills = []models.Bill{}
		}
		r.snap = snap
	}

	r.metrics.SetBills(len(r.snap.Bills))
	slog.Debug("Collection opened", "bills", len(r.snap.Bills), "active_bill_id", r.snap.ActiveBillID)
	return r, nil
}

// Subscribe registers fn to be called after committed changes.
// Calls happen one at a time and in commit order. When commits race, a
// snapshot already superseded by a delivered one is skipped, so observers
// always end on the latest state. An observer may call back into the
// repository, including mutations; their changes are delivered after the
// current call returns. The returned function removes the registration.
func (r *Repository) Subscribe(fn Observer) (unsubscribe func()) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()

	id := r.nextObs
	r.nextObs++
	r.observers[id] = fn

	return func() {
		r.obsMu.Lock()
		defer r.obsMu.Unlock()
		delete(r.observers, id)
	}
}

// Snapshot returns a copy of the current collection.
func (r *Repository) Snapshot() models.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap.Clone()
}

// Bills returns every bill, newest first.
func (r *Repository) Bills() []models.Bill {
	return r.Snapshot().Bills
}

// Bill returns the bill with the given ID.
func (r *Repository) Bill(id string) (models.Bill, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexOf(id); i >= 0 {
		return r.snap.Bills[i].Clone(), true
	}
	return models.Bill{}, false
}

// ActiveBillID returns the current selection, which may name a bill that no
// longer exists.
func (r *Repository) ActiveBillID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap.ActiveBillID
}

// ActiveBill returns the bill currently selected for editing.
func (r *Repository) ActiveBill() (models.Bill, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexOf(r.snap.ActiveBillID); i >= 0 {
		return r.snap.Bills[i].Clone(), true
	}
	return models.Bill{}, false
}

// Summary recalculates the breakdown of the bill with the given ID.
func (r *Repository) Summary(id string) (models.BillSummary, bool) {
	bill, ok := r.Bill(id)
	if !ok {
		return models.BillSummary{}, false
	}
	return calculator.Calculate(bill), true
}

// ActiveSummary recalculates the breakdown of the active bill.
func (r *Repository) ActiveSummary() (models.BillSummary, bool) {
	bill, ok := r.ActiveBill()
	if !ok {
		return models.BillSummary{}, false
	}
	return calculator.Calculate(bill), true
}

// Stats aggregates every bill in the collection.
func (r *Repository) Stats() models.HistoryStats {
	return calculator.CalculateHistoryStats(r.Bills())
}

// indexOf returns the position of the bill in the collection, or -1.
// Callers must hold r.mu.
func (r *Repository) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, b := range r.snap.Bills {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// commit persists next, makes it current and assigns it the next version.
// Callers must hold r.mu and call the returned notify after unlocking.
func (r *Repository) commit(ctx context.Context, op string, next models.Snapshot) (notify func(), err error) {
	if r.store != nil {
		if err := r.store.SaveSnapshot(ctx, next); err != nil {
			r.metrics.ObserveMutation(op, metrics.ResultError)
			return func() {}, fmt.Errorf("failed to save collection: %w", err)
		}
	}

	r.snap = next
	r.version++
	r.metrics.ObserveMutation(op, metrics.ResultOK)
	r.metrics.SetBills(len(next.Bills))

	version, published := r.version, next.Clone()
	return func() { r.publish(version, published) }, nil
}

// publish queues snap for delivery. The first caller to find the queue idle
// drains it, calling observers without holding any lock.
func (r *Repository) publish(version uint64, snap models.Snapshot) {
	r.obsMu.Lock()
	if version <= r.queued {
		r.obsMu.Unlock()
		return
	}
	r.queued = version
	r.pending = append(r.pending, snap)
	if r.delivering {
		r.obsMu.Unlock()
		return
	}
	r.delivering = true

	for len(r.pending) > 0 {
		next := r.pending[0]
		r.pending = r.pending[1:]
		observers := make([]Observer, 0, len(r.observers))
		for _, fn := range r.observers {
			observers = append(observers, fn)
		}
		r.obsMu.Unlock()

		for _, fn := range observers {
			fn(next.Clone())
		}

		r.obsMu.Lock()
	}
	r.delivering = false
	r.obsMu.Unlock()
}
