package collection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billsplit/internal/ledger"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage/memory"
)

var fixedNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func sequentialIDs() ledger.IDGenerator {
	n := 0
	return ledger.IDFunc(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

func setupRepo(t *testing.T, opts ...Option) *Repository {
	t.Helper()
	opts = append([]Option{
		WithIDGenerator(sequentialIDs()),
		WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	repo, err := Open(context.Background(), opts...)
	require.NoError(t, err)
	return repo
}

// failingStore loads fine but refuses every save.
type failingStore struct{ memory.Store }

func (f *failingStore) SaveSnapshot(context.Context, models.Snapshot) error {
	return errors.New("disk full")
}

// countingStore counts successful saves.
type countingStore struct {
	memory.Store
	saves int
}

func (c *countingStore) SaveSnapshot(ctx context.Context, snap models.Snapshot) error {
	c.saves++
	return c.Store.SaveSnapshot(ctx, snap)
}

func TestCreateBill(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	first, err := repo.CreateBill(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, fixedNow, first.CreatedAt)
	assert.Empty(t, first.Participants)
	assert.Zero(t, first.TaxRate)
	assert.Zero(t, first.ServiceRate)

	second, err := repo.CreateBill(ctx, "Alice")
	require.NoError(t, err)
	require.Len(t, second.Participants, 1)
	assert.True(t, second.Participants[0].IsOwner)

	bills := repo.Bills()
	require.Len(t, bills, 2)
	assert.Equal(t, second.ID, bills[0].ID, "newest bill comes first")
	assert.Equal(t, second.ID, repo.ActiveBillID())
}

func TestDeleteBill(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	a, _ := repo.CreateBill(ctx, "")
	b, _ := repo.CreateBill(ctx, "")

	require.NoError(t, repo.DeleteBill(ctx, a.ID))
	assert.Equal(t, b.ID, repo.ActiveBillID(), "deleting an inactive bill keeps the selection")

	require.NoError(t, repo.DeleteBill(ctx, b.ID))
	assert.Empty(t, repo.ActiveBillID())
	assert.Empty(t, repo.Bills())

	assert.NoError(t, repo.DeleteBill(ctx, "missing"))
}

func TestSetActiveBill(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	a, _ := repo.CreateBill(ctx, "")
	_, _ = repo.CreateBill(ctx, "")

	require.NoError(t, repo.SetActiveBill(ctx, a.ID))
	active, ok := repo.ActiveBill()
	require.True(t, ok)
	assert.Equal(t, a.ID, active.ID)

	require.NoError(t, repo.SetActiveBill(ctx, "missing"))
	_, ok = repo.ActiveBill()
	assert.False(t, ok)
	_, ok = repo.ActiveSummary()
	assert.False(t, ok)
}

func TestActivateBill(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{}
	repo := setupRepo(t, WithStore(store))

	a, _ := repo.CreateBill(ctx, "")
	b, _ := repo.CreateBill(ctx, "")
	saves := store.saves

	_, ok, err := repo.ActivateBill(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, b.ID, repo.ActiveBillID(), "unknown bill keeps the selection")
	assert.Equal(t, saves, store.saves)

	got, ok, err := repo.ActivateBill(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, a.ID, repo.ActiveBillID())
	assert.Equal(t, saves+1, store.saves)
}

func TestCleanupEmptyBills(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	blank, _ := repo.CreateBill(ctx, "Alice")

	titled, _ := repo.CreateBill(ctx, "")
	require.NoError(t, repo.SetInfo(ctx, "Lunch", 0, 0))

	withItem, _ := repo.CreateBill(ctx, "")
	_, err := repo.AddItem(ctx, "Soup", 3, 1)
	require.NoError(t, err)

	whitespace, _ := repo.CreateBill(ctx, "")
	require.NoError(t, repo.SetInfo(ctx, "   ", 0, 0))

	removed, err := repo.CleanupEmptyBills(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	var ids []string
	for _, b := range repo.Bills() {
		ids = append(ids, b.ID)
	}
	assert.ElementsMatch(t, []string{titled.ID, withItem.ID}, ids)
	assert.NotContains(t, ids, blank.ID)
	assert.NotContains(t, ids, whitespace.ID)
	assert.Empty(t, repo.ActiveBillID(), "active bill was removed")

	removed, err = repo.CleanupEmptyBills(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestEditActiveBill_Scenario(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	_, err := repo.CreateBill(ctx, "A")
	require.NoError(t, err)
	bID, err := repo.AddParticipant(ctx, "B")
	require.NoError(t, err)
	require.NoError(t, repo.SetInfo(ctx, "Makan malam", 10, 5))

	itemID, err := repo.AddItem(ctx, "Nasi Goreng", 20000, 2)
	require.NoError(t, err)
	require.NoError(t, repo.ToggleAll(ctx, itemID, true))

	summary, ok := repo.ActiveSummary()
	require.True(t, ok)
	assert.InDelta(t, 40000, summary.Subtotal, 1e-9)
	assert.InDelta(t, 4000, summary.TotalTax, 1e-9)
	assert.InDelta(t, 2000, summary.TotalService, 1e-9)
	assert.InDelta(t, 46000, summary.GrandTotal, 1e-9)
	for _, share := range summary.Shares {
		assert.InDelta(t, 23000, share.TotalDue, 1e-9)
	}

	require.NoError(t, repo.RemoveParticipant(ctx, bID))
	bill, _ := repo.ActiveBill()
	assert.NotContains(t, bill.Items[0].AssignedToParticipantIDs, bID)

	err = repo.RemoveParticipant(ctx, bill.Participants[0].ID)
	assert.ErrorIs(t, err, ledger.ErrOwnerProtected)

	qty := 1
	require.NoError(t, repo.UpdateItem(ctx, itemID, ledger.ItemPatch{Quantity: &qty}))
	require.NoError(t, repo.ToggleAssignment(ctx, itemID, bill.Participants[0].ID))
	bill, _ = repo.ActiveBill()
	assert.Equal(t, 1, bill.Items[0].Quantity)
	assert.Empty(t, bill.Items[0].AssignedToParticipantIDs)

	require.NoError(t, repo.RemoveItem(ctx, itemID))
	bill, _ = repo.ActiveBill()
	assert.Empty(t, bill.Items)

	stats := repo.Stats()
	assert.Equal(t, 1, stats.BillCount)
	assert.Zero(t, stats.TotalSpent)
}

func TestEdit_WithoutActiveBillIsNoop(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	id, err := repo.AddParticipant(ctx, "Alice")
	assert.NoError(t, err)
	assert.Empty(t, id)
	assert.NoError(t, repo.SetInfo(ctx, "x", 1, 1))
	assert.Empty(t, repo.Bills())
}

func TestRepository_ValidationLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	_, _ = repo.CreateBill(ctx, "")
	before := repo.Snapshot()

	_, err := repo.AddItem(ctx, "Soup", -3, 1)
	assert.ErrorIs(t, err, ledger.ErrInvalidPrice)
	assert.ErrorIs(t, repo.SetInfo(ctx, "x", -10, 0), ledger.ErrNegativeRate)
	assert.Equal(t, before, repo.Snapshot())
}

func TestRepository_PersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repo := setupRepo(t, WithStore(store))

	bill, err := repo.CreateBill(ctx, "Alice")
	require.NoError(t, err)
	_, err = repo.AddItem(ctx, "Soup", 3, 2)
	require.NoError(t, err)

	reopened, err := Open(ctx, WithStore(store))
	require.NoError(t, err)
	assert.Equal(t, bill.ID, reopened.ActiveBillID())
	active, ok := reopened.ActiveBill()
	require.True(t, ok)
	assert.Len(t, active.Items, 1)
}

func TestRepository_FailedSaveKeepsState(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t, WithStore(&failingStore{}))

	_, err := repo.CreateBill(ctx, "")
	assert.ErrorContains(t, err, "disk full")
	assert.Empty(t, repo.Bills())
}

func TestRepository_OpenRejectsInconsistentStore(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.SaveSnapshot(ctx, models.Snapshot{Bills: []models.Bill{{
		ID:    "b1",
		Items: []models.LineItem{{ID: "i1", Name: "Soup", Price: 1, Quantity: 1, AssignedToParticipantIDs: []string{"ghost"}}},
	}}}))

	_, err := Open(ctx, WithStore(store))
	assert.Error(t, err)
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	var got []models.Snapshot
	unsubscribe := repo.Subscribe(func(s models.Snapshot) {
		got = append(got, s)
		// Observers may read the repository without deadlocking.
		_ = repo.ActiveBillID()
	})

	bill, _ := repo.CreateBill(ctx, "")
	require.NoError(t, repo.SetInfo(ctx, "Dinner", 0, 0))
	require.Len(t, got, 2)
	assert.Equal(t, bill.ID, got[0].ActiveBillID)
	assert.Equal(t, "Dinner", got[1].Bills[0].Title)

	unsubscribe()
	require.NoError(t, repo.DeleteBill(ctx, bill.ID))
	assert.Len(t, got, 2)
}

func TestEdit_UnchangedBillSkipsCommit(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{}
	repo := setupRepo(t, WithStore(store))

	_, err := repo.CreateBill(ctx, "Alice")
	require.NoError(t, err)
	require.Equal(t, 1, store.saves)

	published := 0
	repo.Subscribe(func(models.Snapshot) { published++ })

	require.NoError(t, repo.RemoveItem(ctx, "missing"))
	require.NoError(t, repo.ToggleAssignment(ctx, "missing", "missing"))
	require.NoError(t, repo.ToggleAll(ctx, "missing", true))
	require.NoError(t, repo.RemoveParticipant(ctx, "missing"))
	require.NoError(t, repo.UpdateItem(ctx, "missing", ledger.ItemPatch{}))
	require.NoError(t, repo.SetInfo(ctx, "", 0, 0))

	assert.Equal(t, 1, store.saves, "no-op edits are not saved")
	assert.Zero(t, published, "no-op edits are not published")

	require.NoError(t, repo.SetInfo(ctx, "Dinner", 0, 0))
	assert.Equal(t, 2, store.saves)
	assert.Equal(t, 1, published)
}

func TestSubscribe_DeliversInCommitOrder(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	var (
		mu    sync.Mutex
		sizes []int
	)
	repo.Subscribe(func(s models.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		sizes = append(sizes, len(s.Bills))
	})

	const n = 50
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.CreateBill(ctx, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, sizes)
	assert.IsIncreasing(t, sizes, "observers never see an older snapshot after a newer one")
	assert.Equal(t, n, sizes[len(sizes)-1], "observers end on the latest state")
}

func TestSubscribe_ObserverMayMutate(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	var titles []string
	repo.Subscribe(func(s models.Snapshot) {
		titles = append(titles, s.Bills[0].Title)
		if s.Bills[0].Title == "" {
			require.NoError(t, repo.SetInfo(ctx, "Auto", 0, 0))
		}
	})

	_, err := repo.CreateBill(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"", "Auto"}, titles)
	bill, _ := repo.ActiveBill()
	assert.Equal(t, "Auto", bill.Title)
}
