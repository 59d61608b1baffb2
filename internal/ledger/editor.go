package ledger

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mmynk/billsplit/internal/models"
)

// Editor applies structural edits to bills. The zero value is not usable;
// create one with NewEditor.
type Editor struct {
	ids IDGenerator
}

// NewEditor returns an Editor that draws new IDs from ids.
// A nil ids falls back to UUIDGenerator.
func NewEditor(ids IDGenerator) *Editor {
	if ids == nil {
		ids = UUIDGenerator
	}
	return &Editor{ids: ids}
}

// ItemPatch carries the fields to replace on an item. Nil fields are kept.
type ItemPatch struct {
	Name     *string
	Price    *float64
	Quantity *int
}

// NewBill returns an empty bill with a fresh ID and zero tax and service rates.
// When ownerName is not blank the bill starts with that person as its owner.
func (e *Editor) NewBill(createdAt time.Time, ownerName string) models.Bill {
	bill := models.Bill{
		ID:           e.ids.NewID(),
		CreatedAt:    createdAt,
		Participants: []models.Participant{},
		Items:        []models.LineItem{},
	}
	if name := strings.TrimSpace(ownerName); name != "" {
		bill.Participants = append(bill.Participants, models.Participant{
			ID:      e.ids.NewID(),
			Name:    name,
			IsOwner: true,
		})
	}
	return bill
}

// SetInfo replaces the title, tax rate and service rate.
func (e *Editor) SetInfo(bill models.Bill, title string, taxRate, serviceRate float64) (models.Bill, error) {
	if err := validateRate(taxRate); err != nil {
		return bill, fmt.Errorf("tax rate %v: %w", taxRate, err)
	}
	if err := validateRate(serviceRate); err != nil {
		return bill, fmt.Errorf("service rate %v: %w", serviceRate, err)
	}

	out := bill.Clone()
	out.Title = title
	out.TaxRate = taxRate
	out.ServiceRate = serviceRate
	return out, nil
}

// AddParticipant appends a new non-owner participant.
// It returns the new bill and the ID given to the participant.
func (e *Editor) AddParticipant(bill models.Bill, name string) (models.Bill, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return bill, "", ErrBlankName
	}

	out := bill.Clone()
	p := models.Participant{ID: e.ids.NewID(), Name: name}
	out.Participants = append(out.Participants, p)
	return out, p.ID, nil
}

// RemoveParticipant removes the participant and drops their ID from every
// item's assignments. The owner cannot be removed.
func (e *Editor) RemoveParticipant(bill models.Bill, participantID string) (models.Bill, error) {
	p, ok := bill.Participant(participantID)
	if !ok {
		return bill, nil
	}
	if p.IsOwner {
		return bill, fmt.Errorf("participant %s: %w", participantID, ErrOwnerProtected)
	}

	out := bill.Clone()
	participants := out.Participants[:0]
	for _, existing := range out.Participants {
		if existing.ID != participantID {
			participants = append(participants, existing)
		}
	}
	out.Participants = participants

	for i := range out.Items {
		out.Items[i].AssignedToParticipantIDs = without(out.Items[i].AssignedToParticipantIDs, participantID)
	}
	return out, nil
}

// AddItem appends a new unassigned item.
// It returns the new bill and the ID given to the item.
func (e *Editor) AddItem(bill models.Bill, name string, price float64, quantity int) (models.Bill, string, error) {
	name = strings.TrimSpace(name)
	if err := validateItem(name, price, quantity); err != nil {
		return bill, "", err
	}

	out := bill.Clone()
	item := models.LineItem{
		ID:                       e.ids.NewID(),
		Name:                     name,
		Price:                    price,
		Quantity:                 quantity,
		AssignedToParticipantIDs: []string{},
	}
	out.Items = append(out.Items, item)
	return out, item.ID, nil
}

// UpdateItem replaces the patched fields of an item. Assignments are kept.
func (e *Editor) UpdateItem(bill models.Bill, itemID string, patch ItemPatch) (models.Bill, error) {
	idx := bill.ItemIndex(itemID)
	if idx < 0 {
		return bill, nil
	}

	item := bill.Items[idx]
	if patch.Name != nil {
		item.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Price != nil {
		item.Price = *patch.Price
	}
	if patch.Quantity != nil {
		item.Quantity = *patch.Quantity
	}
	if err := validateItem(item.Name, item.Price, item.Quantity); err != nil {
		return bill, fmt.Errorf("item %s: %w", itemID, err)
	}

	out := bill.Clone()
	out.Items[idx].Name = item.Name
	out.Items[idx].Price = item.Price
	out.Items[idx].Quantity = item.Quantity
	return out, nil
}

// RemoveItem removes the item.
func (e *Editor) RemoveItem(bill models.Bill, itemID string) models.Bill {
	idx := bill.ItemIndex(itemID)
	if idx < 0 {
		return bill
	}

	out := bill.Clone()
	out.Items = append(out.Items[:idx], out.Items[idx+1:]...)
	return out
}

// ToggleAssignment adds the participant to the item's assignments, or removes
// them if already assigned. Calling it twice restores the original state.
func (e *Editor) ToggleAssignment(bill models.Bill, itemID, participantID string) models.Bill {
	idx := bill.ItemIndex(itemID)
	if idx < 0 {
		return bill
	}
	if _, ok := bill.Participant(participantID); !ok {
		return bill
	}

	out := bill.Clone()
	item := &out.Items[idx]
	if item.IsAssignedTo(participantID) {
		item.AssignedToParticipantIDs = without(item.AssignedToParticipantIDs, participantID)
	} else {
		item.AssignedToParticipantIDs = append(item.AssignedToParticipantIDs, participantID)
	}
	return out
}

// ToggleAll assigns the item to every current participant when selectAll is
// true and clears its assignments otherwise. Prior assignments are ignored.
func (e *Editor) ToggleAll(bill models.Bill, itemID string, selectAll bool) models.Bill {
	idx := bill.ItemIndex(itemID)
	if idx < 0 {
		return bill
	}

	out := bill.Clone()
	if selectAll {
		out.Items[idx].AssignedToParticipantIDs = out.ParticipantIDs()
	} else {
		out.Items[idx].AssignedToParticipantIDs = []string{}
	}
	return out
}

func validateRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return ErrNegativeRate
	}
	return nil
}

func validateItem(name string, price float64, quantity int) error {
	if name == "" {
		return ErrBlankName
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return ErrInvalidPrice
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}

// without returns ids minus every occurrence of id. The result is never nil.
func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
