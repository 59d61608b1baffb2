package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/models"
)

func TestPrintSummary(t *testing.T) {
	bill := models.Bill{
		ID:          "b1",
		Title:       "Dinner",
		CreatedAt:   time.Date(2026, 1, 2, 19, 30, 0, 0, time.UTC),
		TaxRate:     10,
		ServiceRate: 5,
		Participants: []models.Participant{
			{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"},
		},
		Items: []models.LineItem{
			{ID: "i", Name: "Nasi Goreng", Price: 20000, Quantity: 2, AssignedToParticipantIDs: []string{"a", "b"}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printSummary(&buf, bill, calculator.Calculate(bill)))

	out := buf.String()
	assert.Contains(t, out, "Dinner")
	assert.Contains(t, out, "Jan 2, 2026 19:30")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "23000.00")
	assert.Contains(t, out, "46000.00")
}
