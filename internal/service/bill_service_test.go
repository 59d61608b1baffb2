package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billsplit/internal/collection"
	"github.com/mmynk/billsplit/internal/metrics"
	"github.com/mmynk/billsplit/internal/middleware"
	"github.com/mmynk/billsplit/internal/storage/sqlite"
)

// setupTestServer creates a test server backed by a temporary SQLite database.
func setupTestServer(t *testing.T) *BillServiceClient {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m := metrics.New(prometheus.NewRegistry())
	repo, err := collection.Open(context.Background(), collection.WithStore(store), collection.WithMetrics(m))
	require.NoError(t, err)

	interceptors := connect.WithInterceptors(middleware.LoggingInterceptor(), middleware.MetricsInterceptor(m))
	path, handler := NewBillServiceHandler(NewBillService(repo), interceptors)

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return NewBillServiceClient(http.DefaultClient, server.URL)
}

func TestBillService_Scenario(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()

	created, err := client.CreateBill(ctx, &CreateBillRequest{OwnerName: "A"})
	require.NoError(t, err)
	require.Len(t, created.Bill.Participants, 1)
	ownerID := created.Bill.Participants[0].ID

	added, err := client.AddParticipant(ctx, &AddParticipantRequest{Name: "B"})
	require.NoError(t, err)
	require.NotEmpty(t, added.CreatedID)

	_, err = client.SetBillInfo(ctx, &SetBillInfoRequest{Title: "Dinner", TaxRate: 10, ServiceRate: 5})
	require.NoError(t, err)

	item, err := client.AddItem(ctx, &AddItemRequest{Name: "Nasi Goreng", Price: 20000, Quantity: 2})
	require.NoError(t, err)

	_, err = client.ToggleAssignment(ctx, &ToggleAssignmentRequest{ItemID: item.CreatedID, ParticipantID: ownerID})
	require.NoError(t, err)
	resp, err := client.ToggleAssignment(ctx, &ToggleAssignmentRequest{ItemID: item.CreatedID, ParticipantID: added.CreatedID})
	require.NoError(t, err)

	summary := resp.Active.Summary
	assert.InDelta(t, 40000, summary.Subtotal, 1e-9)
	assert.InDelta(t, 4000, summary.TotalTax, 1e-9)
	assert.InDelta(t, 2000, summary.TotalService, 1e-9)
	assert.InDelta(t, 46000, summary.GrandTotal, 1e-9)
	require.Len(t, summary.Shares, 2)
	for _, share := range summary.Shares {
		assert.InDelta(t, 20000, share.Subtotal, 1e-9)
		assert.InDelta(t, 23000, share.TotalDue, 1e-9)
		require.Len(t, share.ItemsConsumed, 1)
		assert.InDelta(t, 1, share.ItemsConsumed[0].PortionQuantity, 1e-9)
	}

	cleared, err := client.ToggleAllAssignment(ctx, &ToggleAllAssignmentRequest{ItemID: item.CreatedID, SelectAll: false})
	require.NoError(t, err)
	assert.InDelta(t, 40000, cleared.Active.Summary.GrandTotal, 1e-9)

	list, err := client.ListBills(ctx)
	require.NoError(t, err)
	require.Len(t, list.Bills, 1)
	assert.Equal(t, "Dinner", list.Bills[0].Title)
	assert.Equal(t, 2, list.Bills[0].ParticipantCount)
	assert.Equal(t, 1, list.Bills[0].ItemCount)
	assert.Equal(t, created.Bill.ID, list.ActiveBillID)

	stats, err := client.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.BillCount)
	assert.InDelta(t, 40000, stats.TotalSpent, 1e-9)
}

func TestBillService_Errors(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()

	_, err := client.GetActiveBill(ctx)
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = client.AddItem(ctx, &AddItemRequest{Name: "Soup", Price: 1, Quantity: 1})
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

	created, err := client.CreateBill(ctx, &CreateBillRequest{OwnerName: "Alice"})
	require.NoError(t, err)

	_, err = client.AddItem(ctx, &AddItemRequest{Name: "Soup", Price: 0, Quantity: 1})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = client.AddParticipant(ctx, &AddParticipantRequest{Name: "  "})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = client.RemoveParticipant(ctx, &RemoveParticipantRequest{ParticipantID: created.Bill.Participants[0].ID})
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

	// Unknown IDs are no-ops.
	resp, err := client.RemoveItem(ctx, &RemoveItemRequest{ItemID: "missing"})
	require.NoError(t, err)
	assert.Equal(t, created.Bill.ID, resp.Active.Bill.ID)

	_, err = client.DeleteBill(ctx, &BillIDRequest{})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = client.SetActiveBill(ctx, &BillIDRequest{BillID: "missing"})
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	// A failed selection keeps the previous active bill.
	active, err := client.GetActiveBill(ctx)
	require.NoError(t, err)
	assert.Equal(t, created.Bill.ID, active.Bill.ID)
	list, err := client.ListBills(ctx)
	require.NoError(t, err)
	assert.Equal(t, created.Bill.ID, list.ActiveBillID)
}

func TestBillService_Lifecycle(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()

	first, err := client.CreateBill(ctx, &CreateBillRequest{})
	require.NoError(t, err)
	_, err = client.SetBillInfo(ctx, &SetBillInfoRequest{Title: "Kept"})
	require.NoError(t, err)

	draft, err := client.CreateBill(ctx, &CreateBillRequest{})
	require.NoError(t, err)

	active, err := client.SetActiveBill(ctx, &BillIDRequest{BillID: first.Bill.ID})
	require.NoError(t, err)
	assert.Equal(t, "Kept", active.Bill.Title)

	cleanup, err := client.CleanupEmptyBills(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cleanup.Removed)

	list, err := client.ListBills(ctx)
	require.NoError(t, err)
	require.Len(t, list.Bills, 1)
	assert.NotEqual(t, draft.Bill.ID, list.Bills[0].BillID)

	_, err = client.DeleteBill(ctx, &BillIDRequest{BillID: first.Bill.ID})
	require.NoError(t, err)
	_, err = client.GetActiveBill(ctx)
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}
