package models

// ConsumedItem is one participant's portion of a line item.
type ConsumedItem struct {
	ItemName        string  `json:"itemName"`
	PortionPrice    float64 `json:"portionPrice"`
	PortionQuantity float64 `json:"portionQuantity"` // fractional when the item is shared
}

// ParticipantShare is one participant's calculated share of a bill.
// This is the output of the split calculation algorithm.
type ParticipantShare struct {
	ParticipantID   string `json:"participantId"`
	ParticipantName string `json:"participantName"`

	// Subtotal is the sum of this person's item portions (before tax and service).
	Subtotal float64 `json:"subtotal"`

	// TaxAmount is calculated as: subtotal × taxRate / 100
	TaxAmount float64 `json:"taxAmount"`

	// ServiceAmount is calculated as: subtotal × serviceRate / 100
	ServiceAmount float64 `json:"serviceAmount"`

	// TotalDue is subtotal + tax + service.
	TotalDue float64 `json:"totalDue"`

	// ItemsConsumed lists the portions in bill item order.
	ItemsConsumed []ConsumedItem `json:"itemsConsumed"`
}

// BillSummary is the full derived breakdown of a bill.
type BillSummary struct {
	BillID       string  `json:"billId"`
	Subtotal     float64 `json:"subtotal"` // includes unassigned items
	TotalTax     float64 `json:"totalTax"`
	TotalService float64 `json:"totalService"`
	GrandTotal   float64 `json:"grandTotal"`

	// Shares has one entry per participant, in bill participant order.
	Shares []ParticipantShare `json:"shares"`
}

// HistoryStats aggregates a collection of bills for an overview screen.
type HistoryStats struct {
	BillCount  int     `json:"billCount"`
	TotalSpent float64 `json:"totalSpent"`
}
