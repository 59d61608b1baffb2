package calculator

import "github.com/mmynk/billsplit/internal/models"

// CalculateHistoryStats aggregates a bill collection for an overview:
// the number of bills and the sum of every bill's grand total.
func CalculateHistoryStats(bills []models.Bill) models.HistoryStats {
	stats := models.HistoryStats{BillCount: len(bills)}
	for _, bill := range bills {
		stats.TotalSpent += Calculate(bill).GrandTotal
	}
	return stats
}
