package collection

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/billsplit/internal/ledger"
	"github.com/mmynk/billsplit/internal/metrics"
	"github.com/mmynk/billsplit/internal/models"
)

// editActive applies fn to the active bill and commits the result.
// Without an active bill, or when fn leaves the bill as it was, nothing is
// saved or published. A bill returned by fn that breaks the invariants is a
// programming error and panics.
func (r *Repository) editActive(ctx context.Context, op string, fn func(models.Bill) (models.Bill, error)) error {
	r.mu.Lock()

	i := r.indexOf(r.snap.ActiveBillID)
	if i < 0 {
		r.mu.Unlock()
		slog.Debug("No active bill, edit ignored", "operation", op)
		return nil
	}

	updated, err := fn(r.snap.Bills[i])
	if err != nil {
		r.mu.Unlock()
		r.metrics.ObserveMutation(op, metrics.ResultInvalid)
		return err
	}
	if err := updated.CheckInvariants(); err != nil {
		r.mu.Unlock()
		panic(fmt.Sprintf("collection: %s broke bill invariants: %v", op, err))
	}
	if updated.Equal(r.snap.Bills[i]) {
		r.mu.Unlock()
		r.metrics.ObserveMutation(op, metrics.ResultNoop)
		return nil
	}

	next := r.snap.Clone()
	next.Bills[i] = updated

	notify, err := r.commit(ctx, op, next)
	r.mu.Unlock()
	if err != nil {
		return err
	}
	notify()
	return nil
}

// SetInfo replaces the active bill's title, tax rate and service rate.
func (r *Repository) SetInfo(ctx context.Context, title string, taxRate, serviceRate float64) error {
	return r.editActive(ctx, "set_info", func(b models.Bill) (models.Bill, error) {
		return r.editor.SetInfo(b, title, taxRate, serviceRate)
	})
}

// AddParticipant appends a participant to the active bill and returns the new
// participant's ID (empty when there is no active bill).
func (r *Repository) AddParticipant(ctx context.Context, name string) (string, error) {
	var id string
	err := r.editActive(ctx, "add_participant", func(b models.Bill) (models.Bill, error) {
		out, newID, err := r.editor.AddParticipant(b, name)
		id = newID
		return out, err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// RemoveParticipant removes a participant and their assignments from the active bill.
func (r *Repository) RemoveParticipant(ctx context.Context, participantID string) error {
	return r.editActive(ctx, "remove_participant", func(b models.Bill) (models.Bill, error) {
		return r.editor.RemoveParticipant(b, participantID)
	})
}

// AddItem appends an item to the active bill and returns its ID (empty when
// there is no active bill).
func (r *Repository) AddItem(ctx context.Context, name string, price float64, quantity int) (string, error) {
	var id string
	err := r.editActive(ctx, "add_item", func(b models.Bill) (models.Bill, error) {
		out, newID, err := r.editor.AddItem(b, name, price, quantity)
		id = newID
		return out, err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateItem patches an item on the active bill.
func (r *Repository) UpdateItem(ctx context.Context, itemID string, patch ledger.ItemPatch) error {
	return r.editActive(ctx, "update_item", func(b models.Bill) (models.Bill, error) {
		return r.editor.UpdateItem(b, itemID, patch)
	})
}

// RemoveItem removes an item from the active bill.
func (r *Repository) RemoveItem(ctx context.Context, itemID string) error {
	return r.editActive(ctx, "remove_item", func(b models.Bill) (models.Bill, error) {
		return r.editor.RemoveItem(b, itemID), nil
	})
}

// ToggleAssignment flips whether the participant shares the item.
func (r *Repository) ToggleAssignment(ctx context.Context, itemID, participantID string) error {
	return r.editActive(ctx, "toggle_assignment", func(b models.Bill) (models.Bill, error) {
		return r.editor.ToggleAssignment(b, itemID, participantID), nil
	})
}

// ToggleAll assigns the item to everyone, or to no one.
func (r *Repository) ToggleAll(ctx context.Context, itemID string, selectAll bool) error {
	return r.editActive(ctx, "toggle_all", func(b models.Bill) (models.Bill, error) {
		return r.editor.ToggleAll(b, itemID, selectAll), nil
	})
}
