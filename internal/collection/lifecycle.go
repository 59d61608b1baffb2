package collection

import (
	"context"
	"log/slog"

	"github.com/mmynk/billsplit/internal/models"
)

// CreateBill adds a new empty bill at the front of the collection and makes
// it the active bill. A non-blank ownerName seeds the bill with its owner.
func (r *Repository) CreateBill(ctx context.Context, ownerName string) (models.Bill, error) {
	r.mu.Lock()

	bill := r.editor.NewBill(r.now(), ownerName)

	next := r.snap.Clone()
	next.Bills = append([]models.Bill{bill}, next.Bills...)
	next.ActiveBillID = bill.ID

	notify, err := r.commit(ctx, "create_bill", next)
	r.mu.Unlock()
	if err != nil {
		return models.Bill{}, err
	}
	notify()

	slog.Info("Bill created", "bill_id", bill.ID, "participants", len(bill.Participants))
	return bill.Clone(), nil
}

// DeleteBill removes the bill and clears the selection if it was active.
// Deleting an unknown ID does nothing.
func (r *Repository) DeleteBill(ctx context.Context, id string) error {
	r.mu.Lock()

	i := r.indexOf(id)
	if i < 0 {
		r.mu.Unlock()
		return nil
	}

	next := r.snap.Clone()
	next.Bills = append(next.Bills[:i], next.Bills[i+1:]...)
	if next.ActiveBillID == id {
		next.ActiveBillID = ""
	}

	notify, err := r.commit(ctx, "delete_bill", next)
	r.mu.Unlock()
	if err != nil {
		return err
	}
	notify()

	slog.Info("Bill deleted", "bill_id", id)
	return nil
}

// SetActiveBill selects the bill to edit. The bill itself is not changed.
// An unknown ID is stored as-is and simply resolves to no active bill.
func (r *Repository) SetActiveBill(ctx context.Context, id string) error {
	r.mu.Lock()

	if r.snap.ActiveBillID == id {
		r.mu.Unlock()
		return nil
	}

	next := r.snap.Clone()
	next.ActiveBillID = id

	notify, err := r.commit(ctx, "set_active_bill", next)
	r.mu.Unlock()
	if err != nil {
		return err
	}
	notify()

	slog.Debug("Active bill changed", "bill_id", id)
	return nil
}

// ActivateBill selects an existing bill and returns it. For an unknown ID it
// reports false and leaves the selection unchanged.
func (r *Repository) ActivateBill(ctx context.Context, id string) (models.Bill, bool, error) {
	r.mu.Lock()

	i := r.indexOf(id)
	if i < 0 {
		r.mu.Unlock()
		return models.Bill{}, false, nil
	}
	bill := r.snap.Bills[i].Clone()
	if r.snap.ActiveBillID == id {
		r.mu.Unlock()
		return bill, true, nil
	}

	next := r.snap.Clone()
	next.ActiveBillID = id

	notify, err := r.commit(ctx, "set_active_bill", next)
	r.mu.Unlock()
	if err != nil {
		return models.Bill{}, false, err
	}
	notify()

	slog.Debug("Active bill changed", "bill_id", id)
	return bill, true, nil
}

// CleanupEmptyBills removes every bill with a blank title and no items.
// It returns the number of bills removed. The selection is cleared when the
// active bill is among them.
func (r *Repository) CleanupEmptyBills(ctx context.Context) (int, error) {
	r.mu.Lock()

	next := r.snap.Clone()
	kept := next.Bills[:0]
	removedActive := false
	for _, bill := range next.Bills {
		if bill.IsEmpty() {
			if bill.ID == next.ActiveBillID {
				removedActive = true
			}
			continue
		}
		kept = append(kept, bill)
	}
	removed := len(next.Bills) - len(kept)
	if removed == 0 {
		r.mu.Unlock()
		return 0, nil
	}
	next.Bills = kept
	if removedActive {
		next.ActiveBillID = ""
	}

	notify, err := r.commit(ctx, "cleanup_empty_bills", next)
	r.mu.Unlock()
	if err != nil {
		return 0, err
	}
	notify()

	slog.Info("Empty bills cleaned up", "removed", removed)
	return removed, nil
}
