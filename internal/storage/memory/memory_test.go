package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billsplit/internal/models"
)

func TestStore_CopiesOnSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := New()

	empty, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Bills)
	assert.Empty(t, empty.ActiveBillID)

	snap := models.Snapshot{
		Bills: []models.Bill{{
			ID:           "b1",
			Title:        "Lunch",
			Participants: []models.Participant{{ID: "p1", Name: "Alice"}},
			Items:        []models.LineItem{{ID: "i1", Name: "Soup", Price: 3, Quantity: 1, AssignedToParticipantIDs: []string{"p1"}}},
		}},
		ActiveBillID: "b1",
	}
	require.NoError(t, s.SaveSnapshot(ctx, snap))

	snap.Bills[0].Items[0].AssignedToParticipantIDs[0] = "changed"

	loaded, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b1", loaded.ActiveBillID)
	assert.Equal(t, []string{"p1"}, loaded.Bills[0].Items[0].AssignedToParticipantIDs)
}
