// Package service exposes the bill collection over Connect RPC.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/collection"
	"github.com/mmynk/billsplit/internal/ledger"
	"github.com/mmynk/billsplit/internal/models"
)

var errNoActiveBill = errors.New("no active bill")

// BillService implements the billsplit.v1.BillService procedures.
type BillService struct {
	repo *collection.Repository
}

// NewBillService creates a BillService backed by repo.
func NewBillService(repo *collection.Repository) *BillService {
	return &BillService{repo: repo}
}

// toConnectError maps a refused owner removal to FailedPrecondition, other
// validation failures to InvalidArgument and anything else to Internal.
func toConnectError(err error) error {
	if errors.Is(err, ledger.ErrOwnerProtected) {
		return connect.NewError(connect.CodeFailedPrecondition, err)
	}
	if ledger.IsValidation(err) {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

func viewOf(bill models.Bill) BillView {
	return BillView{Bill: bill, Summary: calculator.Calculate(bill)}
}

// CreateBill creates a new bill and makes it active.
func (s *BillService) CreateBill(ctx context.Context, req *connect.Request[CreateBillRequest]) (*connect.Response[BillView], error) {
	bill, err := s.repo.CreateBill(ctx, req.Msg.OwnerName)
	if err != nil {
		slog.Error("CreateBill failed", "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(ptr(viewOf(bill))), nil
}

// DeleteBill removes a bill. Unknown IDs succeed without effect.
func (s *BillService) DeleteBill(ctx context.Context, req *connect.Request[BillIDRequest]) (*connect.Response[Empty], error) {
	if req.Msg.BillID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("bill_id required"))
	}
	if err := s.repo.DeleteBill(ctx, req.Msg.BillID); err != nil {
		slog.Error("DeleteBill failed", "bill_id", req.Msg.BillID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

// SetActiveBill selects the bill to edit and returns it. An unknown bill is
// reported as NotFound and the current selection is kept.
func (s *BillService) SetActiveBill(ctx context.Context, req *connect.Request[BillIDRequest]) (*connect.Response[BillView], error) {
	bill, ok, err := s.repo.ActivateBill(ctx, req.Msg.BillID)
	if err != nil {
		slog.Error("SetActiveBill failed", "bill_id", req.Msg.BillID, "error", err)
		return nil, toConnectError(err)
	}
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("bill not found: %s", req.Msg.BillID))
	}
	return connect.NewResponse(ptr(viewOf(bill))), nil
}

// ListBills returns an overview entry per bill, newest first.
func (s *BillService) ListBills(_ context.Context, _ *connect.Request[Empty]) (*connect.Response[ListBillsResponse], error) {
	snap := s.repo.Snapshot()

	entries := make([]BillListEntry, len(snap.Bills))
	for i, bill := range snap.Bills {
		entries[i] = BillListEntry{
			BillID:           bill.ID,
			Title:            bill.Title,
			CreatedAt:        bill.CreatedAt,
			ParticipantCount: len(bill.Participants),
			ItemCount:        len(bill.Items),
			GrandTotal:       calculator.Calculate(bill).GrandTotal,
		}
	}

	return connect.NewResponse(&ListBillsResponse{
		Bills:        entries,
		ActiveBillID: snap.ActiveBillID,
	}), nil
}

// GetActiveBill returns the active bill with its summary.
func (s *BillService) GetActiveBill(_ context.Context, _ *connect.Request[Empty]) (*connect.Response[BillView], error) {
	bill, ok := s.repo.ActiveBill()
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, errNoActiveBill)
	}
	return connect.NewResponse(ptr(viewOf(bill))), nil
}

// CleanupEmptyBills drops abandoned drafts.
func (s *BillService) CleanupEmptyBills(ctx context.Context, _ *connect.Request[Empty]) (*connect.Response[CleanupEmptyBillsResponse], error) {
	removed, err := s.repo.CleanupEmptyBills(ctx)
	if err != nil {
		slog.Error("CleanupEmptyBills failed", "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&CleanupEmptyBillsResponse{Removed: removed}), nil
}

// GetStats returns the history totals.
func (s *BillService) GetStats(_ context.Context, _ *connect.Request[Empty]) (*connect.Response[models.HistoryStats], error) {
	stats := s.repo.Stats()
	return connect.NewResponse(&stats), nil
}

// edit runs fn against the active bill and returns the updated view.
func (s *BillService) edit(op string, fn func() (string, error)) (*connect.Response[EditResponse], error) {
	if _, ok := s.repo.ActiveBill(); !ok {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errNoActiveBill)
	}

	createdID, err := fn()
	if err != nil {
		if ledger.IsValidation(err) {
			slog.Warn(op+" rejected", "error", err)
		} else {
			slog.Error(op+" failed", "error", err)
		}
		return nil, toConnectError(err)
	}

	bill, ok := s.repo.ActiveBill()
	if !ok {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errNoActiveBill)
	}
	slog.Debug(op+" applied", "bill_id", bill.ID, "created_id", createdID)
	return connect.NewResponse(&EditResponse{CreatedID: createdID, Active: viewOf(bill)}), nil
}

// SetBillInfo updates the active bill's title and rates.
func (s *BillService) SetBillInfo(ctx context.Context, req *connect.Request[SetBillInfoRequest]) (*connect.Response[EditResponse], error) {
	return s.edit("SetBillInfo", func() (string, error) {
		return "", s.repo.SetInfo(ctx, req.Msg.Title, req.Msg.TaxRate, req.Msg.ServiceRate)
	})
}

// AddParticipant adds a person to the active bill.
func (s *BillService) AddParticipant(ctx context.Context, req *connect.Request[AddParticipantRequest]) (*connect.Response[EditResponse], error) {
	return s.edit("AddParticipant", func() (string, error) {
		return s.repo.AddParticipant(ctx, req.Msg.Name)
	})
}

// RemoveParticipant removes a person and their assignments from the active bill.
func (s *BillService) RemoveParticipant(ctx context.Context, req *connect.Request[RemoveParticipantRequest]) (*connect.Response[EditResponse], error) {
	return s.edit("RemoveParticipant", func() (string, error) {
		return "", s.repo.RemoveParticipant(ctx, req.Msg.ParticipantID)
	})
}

// AddItem adds an unassigned item to the active bill.
func (s *BillService) AddItem(ctx context.Context, req *connect.Request[AddItemRequest]) (*connect.Response[EditResponse], error) {
	return s.edit("AddItem", func() (string, error) {
		return s.repo.AddItem(ctx, req.Msg.Name, req.Msg.Price, req.Msg.Quantity)
	})
}

// UpdateItem patches an item on the active bill.
func (s *BillService) UpdateItem(ctx context.Context, req *connect.Request[UpdateItemRequest]) (*connect.Response[EditResponse], error) {
	return s.edit("UpdateItem", func() (string, error) {
		return "", s.repo.UpdateItem(ctx, req.Msg.ItemID, ledger.ItemPatch{
			Name:     req.Msg.Name,
			Price:    req.Msg.Price,
			Quantity: req.Msg.Quantity,
		})
	})
}

// RemoveItem removes an item from the active bill.
func (s *BillService) RemoveItem(ctx context.Context, req *connect.Request[RemoveItemRequest]) (*connect.Response[EditResponse], error) {
	return s.edit("RemoveItem", func() (string, error) {
		return "", s.repo.RemoveItem(ctx, req.Msg.ItemID)
	})
}

// ToggleAssignment flips one participant's share of an item.
func (s *BillService) ToggleAssignment(ctx context.Context, req *connect.Request[ToggleAssignmentRequest]) (*connect.Response[EditResponse], error) {
	return s.edit("ToggleAssignment", func() (string, error) {
		return "", s.repo.ToggleAssignment(ctx, req.Msg.ItemID, req.Msg.ParticipantID)
	})
}

// ToggleAllAssignment assigns an item to everyone or to no one.
func (s *BillService) ToggleAllAssignment(ctx context.Context, req *connect.Request[ToggleAllAssignmentRequest]) (*connect.Response[EditResponse], error) {
	return s.edit("ToggleAllAssignment", func() (string, error) {
		return "", s.repo.ToggleAll(ctx, req.Msg.ItemID, req.Msg.SelectAll)
	})
}

func ptr[T any](v T) *T { return &v }
