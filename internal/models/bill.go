package models

import (
	"fmt"
	"slices"
	"time"
)

// Participant is one person on a bill.
type Participant struct {
	// ID is unique within the bill (UUID format).
	ID string `json:"id"`

	// Name is the display name entered for this person.
	Name string `json:"name"`

	// IsOwner marks the person who created the bill.
	// The owner cannot be removed from the bill.
	IsOwner bool `json:"isOwner"`
}

// LineItem is a single dish on a bill.
// Its cost is shared equally among the assigned participants.
type LineItem struct {
	// ID is unique within the bill (UUID format).
	ID string `json:"id"`

	// Name is the dish name (e.g., "Nasi Goreng").
	Name string `json:"name"`

	// Price is the unit price. Always > 0.
	Price float64 `json:"price"`

	// Quantity is the number of units ordered. Always >= 1.
	Quantity int `json:"quantity"`

	// AssignedToParticipantIDs holds the participants who ate this item,
	// in the order they were assigned. No duplicates.
	AssignedToParticipantIDs []string `json:"assignedToParticipantIds"`
}

// Total returns price multiplied by quantity.
func (i LineItem) Total() float64 {
	return i.Price * float64(i.Quantity)
}

// IsAssignedTo reports whether the participant is in the item's assignment set.
func (i LineItem) IsAssignedTo(participantID string) bool {
	for _, id := range i.AssignedToParticipantIDs {
		if id == participantID {
			return true
		}
	}
	return false
}

// Equal reports whether two items hold the same data, including assignment order.
func (i LineItem) Equal(other LineItem) bool {
	return i.ID == other.ID &&
		i.Name == other.Name &&
		i.Price == other.Price &&
		i.Quantity == other.Quantity &&
		slices.Equal(i.AssignedToParticipantIDs, other.AssignedToParticipantIDs)
}

// Bill is one shared-expense session.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string `json:"id"`

	// Title is the user-provided name. May be blank while drafting.
	Title string `json:"title"`

	// CreatedAt is when the bill was created.
	CreatedAt time.Time `json:"createdAt"`

	// TaxRate and ServiceRate are percentages (10 means 10%).
	TaxRate     float64 `json:"taxRate"`
	ServiceRate float64 `json:"serviceRate"`

	// Discount is reserved and not used by the calculator.
	Discount float64 `json:"discount"`

	Participants []Participant `json:"participants"`
	Items        []LineItem    `json:"items"`

	// IsClosed is kept for forward compatibility. Nothing sets it yet.
	IsClosed bool `json:"isClosed"`
}

// Clone returns a deep copy of the bill so that callers can mutate the copy
// without touching slices shared with the original.
func (b Bill) Clone() Bill {
	out := b
	if b.Participants != nil {
		out.Participants = make([]Participant, len(b.Participants))
		copy(out.Participants, b.Participants)
	}
	if b.Items != nil {
		out.Items = make([]LineItem, len(b.Items))
		for i, item := range b.Items {
			out.Items[i] = item
			if item.AssignedToParticipantIDs != nil {
				out.Items[i].AssignedToParticipantIDs = append([]string(nil), item.AssignedToParticipantIDs...)
			}
		}
	}
	return out
}

// Equal reports whether two bills hold the same data. Nil and empty slices
// compare equal.
func (b Bill) Equal(other Bill) bool {
	return b.ID == other.ID &&
		b.Title == other.Title &&
		b.CreatedAt.Equal(other.CreatedAt) &&
		b.TaxRate == other.TaxRate &&
		b.ServiceRate == other.ServiceRate &&
		b.Discount == other.Discount &&
		b.IsClosed == other.IsClosed &&
		slices.Equal(b.Participants, other.Participants) &&
		slices.EqualFunc(b.Items, other.Items, LineItem.Equal)
}

// IsEmpty reports whether the bill was never populated: blank title and no items.
func (b Bill) IsEmpty() bool {
	return isBlank(b.Title) && len(b.Items) == 0
}

// Participant returns the participant with the given ID.
func (b Bill) Participant(id string) (Participant, bool) {
	for _, p := range b.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// ParticipantIDs returns the IDs of all participants in bill order.
func (b Bill) ParticipantIDs() []string {
	ids := make([]string, len(b.Participants))
	for i, p := range b.Participants {
		ids[i] = p.ID
	}
	return ids
}

// ItemIndex returns the position of the item in Items, or -1.
func (b Bill) ItemIndex(id string) int {
	for i, item := range b.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// CheckInvariants verifies the structural invariants of a bill:
// participant and item IDs are unique, and every assignment references
// a participant of this bill exactly once.
func (b Bill) CheckInvariants() error {
	participants := make(map[string]bool, len(b.Participants))
	for _, p := range b.Participants {
		if participants[p.ID] {
			return fmt.Errorf("bill %s: duplicate participant id %s", b.ID, p.ID)
		}
		participants[p.ID] = true
	}

	items := make(map[string]bool, len(b.Items))
	for _, item := range b.Items {
		if items[item.ID] {
			return fmt.Errorf("bill %s: duplicate item id %s", b.ID, item.ID)
		}
		items[item.ID] = true

		seen := make(map[string]bool, len(item.AssignedToParticipantIDs))
		for _, pid := range item.AssignedToParticipantIDs {
			if !participants[pid] {
				return fmt.Errorf("bill %s: item %s assigned to unknown participant %s", b.ID, item.ID, pid)
			}
			if seen[pid] {
				return fmt.Errorf("bill %s: item %s assigned twice to participant %s", b.ID, item.ID, pid)
			}
			seen[pid] = true
		}
	}
	return nil
}
