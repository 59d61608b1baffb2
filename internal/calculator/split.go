// Package calculator derives per-participant breakdowns from a bill.
package calculator

import (
	"github.com/mmynk/billsplit/internal/models"
)

// Calculate computes how much each participant owes including proportional
// tax and service.
//
// Algorithm:
//   - item_total = price × quantity, always added to the bill subtotal
//   - an assigned item is split equally: each assignee gets item_total / n
//     and quantity / n; an unassigned item is paid by nobody in particular
//   - person_tax = person_subtotal × tax_rate / 100 (service likewise)
//   - grand_total = bill_subtotal + Σ person_tax + Σ person_service
//
// Calculate is pure and accepts any structurally valid bill, including one
// with no participants or no items. No rounding is applied.
func Calculate(bill models.Bill) models.BillSummary {
	shares := make([]models.ParticipantShare, len(bill.Participants))
	index := make(map[string]int, len(bill.Participants))
	for i, p := range bill.Participants {
		shares[i] = models.ParticipantShare{
			ParticipantID:   p.ID,
			ParticipantName: p.Name,
			ItemsConsumed:   []models.ConsumedItem{},
		}
		index[p.ID] = i
	}

	var billSubtotal float64
	for _, item := range bill.Items {
		itemTotal := item.Total()
		billSubtotal += itemTotal

		n := len(item.AssignedToParticipantIDs)
		if n == 0 {
			continue
		}

		pricePerPerson := itemTotal / float64(n)
		quantityPerPerson := float64(item.Quantity) / float64(n)
		for _, pid := range item.AssignedToParticipantIDs {
			i, ok := index[pid]
			if !ok {
				continue
			}
			shares[i].Subtotal += pricePerPerson
			shares[i].ItemsConsumed = append(shares[i].ItemsConsumed, models.ConsumedItem{
				ItemName:        item.Name,
				PortionPrice:    pricePerPerson,
				PortionQuantity: quantityPerPerson,
			})
		}
	}

	taxMultiplier := bill.TaxRate / 100
	serviceMultiplier := bill.ServiceRate / 100

	var totalTax, totalService float64
	for i := range shares {
		share := &shares[i]
		share.TaxAmount = share.Subtotal * taxMultiplier
		share.ServiceAmount = share.Subtotal * serviceMultiplier
		share.TotalDue = share.Subtotal + share.TaxAmount + share.ServiceAmount

		totalTax += share.TaxAmount
		totalService += share.ServiceAmount
	}

	return models.BillSummary{
		BillID:       bill.ID,
		Subtotal:     billSubtotal,
		TotalTax:     totalTax,
		TotalService: totalService,
		GrandTotal:   billSubtotal + totalTax + totalService,
		Shares:       shares,
	}
}

// UnassignedSubtotal returns the cost of items nobody is assigned to.
// These amounts appear in the bill subtotal and grand total only.
func UnassignedSubtotal(bill models.Bill) float64 {
	var total float64
	for _, item := range bill.Items {
		if len(item.AssignedToParticipantIDs) == 0 {
			total += item.Total()
		}
	}
	return total
}
