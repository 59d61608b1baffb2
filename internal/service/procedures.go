package service

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/billsplit/internal/models"
)

// BillServiceName is the fully-qualified name of the bill service.
const BillServiceName = "billsplit.v1.BillService"

// Procedure paths served by BillService.
const (
	CreateBillProcedure          = "/" + BillServiceName + "/CreateBill"
	DeleteBillProcedure          = "/" + BillServiceName + "/DeleteBill"
	SetActiveBillProcedure       = "/" + BillServiceName + "/SetActiveBill"
	ListBillsProcedure           = "/" + BillServiceName + "/ListBills"
	GetActiveBillProcedure       = "/" + BillServiceName + "/GetActiveBill"
	CleanupEmptyBillsProcedure   = "/" + BillServiceName + "/CleanupEmptyBills"
	GetStatsProcedure            = "/" + BillServiceName + "/GetStats"
	SetBillInfoProcedure         = "/" + BillServiceName + "/SetBillInfo"
	AddParticipantProcedure      = "/" + BillServiceName + "/AddParticipant"
	RemoveParticipantProcedure   = "/" + BillServiceName + "/RemoveParticipant"
	AddItemProcedure             = "/" + BillServiceName + "/AddItem"
	UpdateItemProcedure          = "/" + BillServiceName + "/UpdateItem"
	RemoveItemProcedure          = "/" + BillServiceName + "/RemoveItem"
	ToggleAssignmentProcedure    = "/" + BillServiceName + "/ToggleAssignment"
	ToggleAllAssignmentProcedure = "/" + BillServiceName + "/ToggleAllAssignment"
)

// NewBillServiceHandler builds an HTTP handler serving every BillService
// procedure. It returns the path prefix to mount the handler on.
func NewBillServiceHandler(svc *BillService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(CreateBillProcedure, connect.NewUnaryHandler(CreateBillProcedure, svc.CreateBill, opts...))
	mux.Handle(DeleteBillProcedure, connect.NewUnaryHandler(DeleteBillProcedure, svc.DeleteBill, opts...))
	mux.Handle(SetActiveBillProcedure, connect.NewUnaryHandler(SetActiveBillProcedure, svc.SetActiveBill, opts...))
	mux.Handle(ListBillsProcedure, connect.NewUnaryHandler(ListBillsProcedure, svc.ListBills, opts...))
	mux.Handle(GetActiveBillProcedure, connect.NewUnaryHandler(GetActiveBillProcedure, svc.GetActiveBill, opts...))
	mux.Handle(CleanupEmptyBillsProcedure, connect.NewUnaryHandler(CleanupEmptyBillsProcedure, svc.CleanupEmptyBills, opts...))
	mux.Handle(GetStatsProcedure, connect.NewUnaryHandler(GetStatsProcedure, svc.GetStats, opts...))
	mux.Handle(SetBillInfoProcedure, connect.NewUnaryHandler(SetBillInfoProcedure, svc.SetBillInfo, opts...))
	mux.Handle(AddParticipantProcedure, connect.NewUnaryHandler(AddParticipantProcedure, svc.AddParticipant, opts...))
	mux.Handle(RemoveParticipantProcedure, connect.NewUnaryHandler(RemoveParticipantProcedure, svc.RemoveParticipant, opts...))
	mux.Handle(AddItemProcedure, connect.NewUnaryHandler(AddItemProcedure, svc.AddItem, opts...))
	mux.Handle(UpdateItemProcedure, connect.NewUnaryHandler(UpdateItemProcedure, svc.UpdateItem, opts...))
	mux.Handle(RemoveItemProcedure, connect.NewUnaryHandler(RemoveItemProcedure, svc.RemoveItem, opts...))
	mux.Handle(ToggleAssignmentProcedure, connect.NewUnaryHandler(ToggleAssignmentProcedure, svc.ToggleAssignment, opts...))
	mux.Handle(ToggleAllAssignmentProcedure, connect.NewUnaryHandler(ToggleAllAssignmentProcedure, svc.ToggleAllAssignment, opts...))

	return "/" + BillServiceName + "/", mux
}

// BillServiceClient calls BillService over Connect with the JSON codec.
type BillServiceClient struct {
	createBill          *connect.Client[CreateBillRequest, BillView]
	deleteBill          *connect.Client[BillIDRequest, Empty]
	setActiveBill       *connect.Client[BillIDRequest, BillView]
	listBills           *connect.Client[Empty, ListBillsResponse]
	getActiveBill       *connect.Client[Empty, BillView]
	cleanupEmptyBills   *connect.Client[Empty, CleanupEmptyBillsResponse]
	getStats            *connect.Client[Empty, models.HistoryStats]
	setBillInfo         *connect.Client[SetBillInfoRequest, EditResponse]
	addParticipant      *connect.Client[AddParticipantRequest, EditResponse]
	removeParticipant   *connect.Client[RemoveParticipantRequest, EditResponse]
	addItem             *connect.Client[AddItemRequest, EditResponse]
	updateItem          *connect.Client[UpdateItemRequest, EditResponse]
	removeItem          *connect.Client[RemoveItemRequest, EditResponse]
	toggleAssignment    *connect.Client[ToggleAssignmentRequest, EditResponse]
	toggleAllAssignment *connect.Client[ToggleAllAssignmentRequest, EditResponse]
}

// NewBillServiceClient creates a client for the server at baseURL.
func NewBillServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BillServiceClient {
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &BillServiceClient{
		createBill:          connect.NewClient[CreateBillRequest, BillView](httpClient, baseURL+CreateBillProcedure, opts...),
		deleteBill:          connect.NewClient[BillIDRequest, Empty](httpClient, baseURL+DeleteBillProcedure, opts...),
		setActiveBill:       connect.NewClient[BillIDRequest, BillView](httpClient, baseURL+SetActiveBillProcedure, opts...),
		listBills:           connect.NewClient[Empty, ListBillsResponse](httpClient, baseURL+ListBillsProcedure, opts...),
		getActiveBill:       connect.NewClient[Empty, BillView](httpClient, baseURL+GetActiveBillProcedure, opts...),
		cleanupEmptyBills:   connect.NewClient[Empty, CleanupEmptyBillsResponse](httpClient, baseURL+CleanupEmptyBillsProcedure, opts...),
		getStats:            connect.NewClient[Empty, models.HistoryStats](httpClient, baseURL+GetStatsProcedure, opts...),
		setBillInfo:         connect.NewClient[SetBillInfoRequest, EditResponse](httpClient, baseURL+SetBillInfoProcedure, opts...),
		addParticipant:      connect.NewClient[AddParticipantRequest, EditResponse](httpClient, baseURL+AddParticipantProcedure, opts...),
		removeParticipant:   connect.NewClient[RemoveParticipantRequest, EditResponse](httpClient, baseURL+RemoveParticipantProcedure, opts...),
		addItem:             connect.NewClient[AddItemRequest, EditResponse](httpClient, baseURL+AddItemProcedure, opts...),
		updateItem:          connect.NewClient[UpdateItemRequest, EditResponse](httpClient, baseURL+UpdateItemProcedure, opts...),
		removeItem:          connect.NewClient[RemoveItemRequest, EditResponse](httpClient, baseURL+RemoveItemProcedure, opts...),
		toggleAssignment:    connect.NewClient[ToggleAssignmentRequest, EditResponse](httpClient, baseURL+ToggleAssignmentProcedure, opts...),
		toggleAllAssignment: connect.NewClient[ToggleAllAssignmentRequest, EditResponse](httpClient, baseURL+ToggleAllAssignmentProcedure, opts...),
	}
}

func call[Req, Res any](ctx context.Context, c *connect.Client[Req, Res], req *Req) (*Res, error) {
	resp, err := c.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *BillServiceClient) CreateBill(ctx context.Context, req *CreateBillRequest) (*BillView, error) {
	return call(ctx, c.createBill, req)
}

func (c *BillServiceClient) DeleteBill(ctx context.Context, req *BillIDRequest) (*Empty, error) {
	return call(ctx, c.deleteBill, req)
}

func (c *BillServiceClient) SetActiveBill(ctx context.Context, req *BillIDRequest) (*BillView, error) {
	return call(ctx, c.setActiveBill, req)
}

func (c *BillServiceClient) ListBills(ctx context.Context) (*ListBillsResponse, error) {
	return call(ctx, c.listBills, &Empty{})
}

func (c *BillServiceClient) GetActiveBill(ctx context.Context) (*BillView, error) {
	return call(ctx, c.getActiveBill, &Empty{})
}

func (c *BillServiceClient) CleanupEmptyBills(ctx context.Context) (*CleanupEmptyBillsResponse, error) {
	return call(ctx, c.cleanupEmptyBills, &Empty{})
}

func (c *BillServiceClient) GetStats(ctx context.Context) (*models.HistoryStats, error) {
	return call(ctx, c.getStats, &Empty{})
}

func (c *BillServiceClient) SetBillInfo(ctx context.Context, req *SetBillInfoRequest) (*EditResponse, error) {
	return call(ctx, c.setBillInfo, req)
}

func (c *BillServiceClient) AddParticipant(ctx context.Context, req *AddParticipantRequest) (*EditResponse, error) {
	return call(ctx, c.addParticipant, req)
}

func (c *BillServiceClient) RemoveParticipant(ctx context.Context, req *RemoveParticipantRequest) (*EditResponse, error) {
	return call(ctx, c.removeParticipant, req)
}

func (c *BillServiceClient) AddItem(ctx context.Context, req *AddItemRequest) (*EditResponse, error) {
	return call(ctx, c.addItem, req)
}

func (c *BillServiceClient) UpdateItem(ctx context.Context, req *UpdateItemRequest) (*EditResponse, error) {
	return call(ctx, c.updateItem, req)
}

func (c *BillServiceClient) RemoveItem(ctx context.Context, req *RemoveItemRequest) (*EditResponse, error) {
	return call(ctx, c.removeItem, req)
}

func (c *BillServiceClient) ToggleAssignment(ctx context.Context, req *ToggleAssignmentRequest) (*EditResponse, error) {
	return call(ctx, c.toggleAssignment, req)
}

func (c *BillServiceClient) ToggleAllAssignment(ctx context.Context, req *ToggleAllAssignmentRequest) (*EditResponse, error) {
	return call(ctx, c.toggleAllAssignment, req)
}
