package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	ordersvc "github.com/localmarket-hq/localmarket-backend/internal/orders"
	shippingsvc "github.com/localmarket-hq/localmarket-backend/internal/shipping"
	"github.com/localmarket-hq/localmarket-backend/pkg/enums"
	pkgerrors "github.com/localmarket-hq/localmarket-backend/pkg/errors"
)

type stubShippingService struct {
	label   *shippingsvc.Label
	err     error
	orderID uuid.UUID
	calls   int
}

func (s *stubShippingService) PurchaseLabel(ctx context.Context, orderID uuid.UUID) (*shippingsvc.Label, error) {
	s.calls++
	s.orderID = orderID
	return s.label, s.err
}

type stubLabelOrdersService struct {
	shipped *ordersvc.OrderDTO
	err     error

	shippedID    uuid.UUID
	shippedCalls int
}

func (s *stubLabelOrdersService) GetOrder(ctx context.Context, orderID uuid.UUID) (*ordersvc.OrderDTO, error) {
	panic("unimplemented")
}

func (s *stubLabelOrdersService) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID) ([]ordersvc.OrderDTO, error) {
	panic("unimplemented")
}

func (s *stubLabelOrdersService) ListSupplierOrders(ctx context.Context, supplierID uuid.UUID) ([]ordersvc.OrderDTO, error) {
	panic("unimplemented")
}

func (s *stubLabelOrdersService) UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*ordersvc.OrderDTO, error) {
	panic("unimplemented")
}

func (s *stubLabelOrdersService) MarkShipped(ctx context.Context, orderID uuid.UUID) (*ordersvc.OrderDTO, error) {
	s.shippedCalls++
	s.shippedID = orderID
	return s.shipped, s.err
}

func TestCreateLabelSuccessMarksOrderShipped(t *testing.T) {
	t.Parallel()

	orderID := uuid.New()
	svc := &stubShippingService{
		label: &shippingsvc.Label{
			OrderID:        orderID,
			LabelURL:       "https://labels.example.com/abc.pdf",
			TrackingNumber: "TRK123",
			Provider:       "usps",
			ServiceLevel:   "usps_priority",
			Amount:         "8.45",
			Currency:       "USD",
		},
	}
	orders := &stubLabelOrdersService{
		shipped: &ordersvc.OrderDTO{ID: orderID, Status: string(enums.OrderStatusShipped)},
	}
	handler := CreateLabel(svc, orders, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/create-label", strings.NewReader(`{"order_id":"`+orderID.String()+`"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data createLabelResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Label == nil || envelope.Data.Label.TrackingNumber != "TRK123" {
		t.Fatalf("unexpected label payload: %+v", envelope.Data.Label)
	}
	if envelope.Data.OrderStatus != "shipped" {
		t.Fatalf("expected order marked shipped, got %q", envelope.Data.OrderStatus)
	}
	if svc.orderID != orderID {
		t.Fatalf("unexpected order id passed to shipping service: %s", svc.orderID)
	}
	if orders.shippedCalls != 1 || orders.shippedID != orderID {
		t.Fatalf("expected one shipped transition for %s, got %d for %s", orderID, orders.shippedCalls, orders.shippedID)
	}
}

func TestCreateLabelPurchaseFailureSkipsTransition(t *testing.T) {
	t.Parallel()

	svc := &stubShippingService{
		err: pkgerrors.New(pkgerrors.CodeDependency, "no shipping rates available"),
	}
	orders := &stubLabelOrdersService{}
	handler := CreateLabel(svc, orders, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/create-label", strings.NewReader(`{"order_id":"`+uuid.NewString()+`"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	if orders.shippedCalls != 0 {
		t.Fatalf("order must not transition when no label was purchased")
	}
}

func TestCreateLabelTransitionFailureStillReturnsLabel(t *testing.T) {
	t.Parallel()

	orderID := uuid.New()
	svc := &stubShippingService{
		label: &shippingsvc.Label{OrderID: orderID, LabelURL: "https://labels.example.com/x.pdf", TrackingNumber: "TRK9"},
	}
	orders := &stubLabelOrdersService{
		err: pkgerrors.New(pkgerrors.CodeStateConflict, "cannot move order from delivered to shipped"),
	}
	handler := CreateLabel(svc, orders, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/create-label", strings.NewReader(`{"order_id":"`+orderID.String()+`"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data createLabelResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Label == nil || envelope.Data.Label.TrackingNumber != "TRK9" {
		t.Fatalf("label must be returned even when the transition fails: %+v", envelope.Data.Label)
	}
	if envelope.Data.OrderStatus != "" {
		t.Fatalf("order status should be omitted when the transition failed, got %q", envelope.Data.OrderStatus)
	}
}

func TestCreateLabelMissingOrderID(t *testing.T) {
	t.Parallel()

	svc := &stubShippingService{}
	handler := CreateLabel(svc, &stubLabelOrdersService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/create-label", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.calls != 0 {
		t.Fatalf("shipping service should not be called without an order id")
	}
}

func TestCreateLabelIncompleteAddress(t *testing.T) {
	t.Parallel()

	svc := &stubShippingService{
		err: pkgerrors.New(pkgerrors.CodeValidation, "supplier address incomplete").
			WithDetails(map[string]any{"missing_fields": []string{"postal_code"}}),
	}
	handler := CreateLabel(svc, &stubLabelOrdersService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/create-label", strings.NewReader(`{"order_id":"`+uuid.NewString()+`"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "postal_code") {
		t.Fatalf("expected missing field details, got %s", resp.Body.String())
	}
}
