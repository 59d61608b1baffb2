package service

import (
	"time"

	"github.com/mmynk/billsplit/internal/models"
)

// Empty is used by procedures without arguments or results.
type Empty struct{}

type CreateBillRequest struct {
	// OwnerName seeds the bill with its owner when not blank.
	OwnerName string `json:"ownerName"`
}

type BillIDRequest struct {
	BillID string `json:"billId"`
}

// BillView is a bill together with its freshly calculated summary.
type BillView struct {
	Bill    models.Bill        `json:"bill"`
	Summary models.BillSummary `json:"summary"`
}

// BillListEntry is the overview card for one bill.
type BillListEntry struct {
	BillID           string    `json:"billId"`
	Title            string    `json:"title"`
	CreatedAt        time.Time `json:"createdAt"`
	ParticipantCount int       `json:"participantCount"`
	ItemCount        int       `json:"itemCount"`
	GrandTotal       float64   `json:"grandTotal"`
}

type ListBillsResponse struct {
	Bills        []BillListEntry `json:"bills"`
	ActiveBillID string          `json:"activeBillId,omitempty"`
}

type CleanupEmptyBillsResponse struct {
	Removed int `json:"removed"`
}

type SetBillInfoRequest struct {
	Title       string  `json:"title"`
	TaxRate     float64 `json:"taxRate"`
	ServiceRate float64 `json:"serviceRate"`
}

type AddParticipantRequest struct {
	Name string `json:"name"`
}

type RemoveParticipantRequest struct {
	ParticipantID string `json:"participantId"`
}

type AddItemRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// UpdateItemRequest replaces only the fields that are set.
type UpdateItemRequest struct {
	ItemID   string   `json:"itemId"`
	Name     *string  `json:"name,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Quantity *int     `json:"quantity,omitempty"`
}

type RemoveItemRequest struct {
	ItemID string `json:"itemId"`
}

type ToggleAssignmentRequest struct {
	ItemID        string `json:"itemId"`
	ParticipantID string `json:"participantId"`
}

type ToggleAllAssignmentRequest struct {
	ItemID    string `json:"itemId"`
	SelectAll bool   `json:"selectAll"`
}

// EditResponse is returned by every procedure that edits the active bill.
type EditResponse struct {
	// CreatedID is the ID of the participant or item added, if any.
	CreatedID string   `json:"createdId,omitempty"`
	Active    BillView `json:"active"`
}
