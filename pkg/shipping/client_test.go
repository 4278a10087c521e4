package shipping

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClientRequiresToken(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected error for blank token")
	}
}

func TestCreateShipmentParsesRates(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/shipments/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ShipmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Async {
			t.Error("expected synchronous shipment creation")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object_id": "shp_1",
			"status":    "SUCCESS",
			"rates": []map[string]any{
				{
					"object_id":      "rate_expensive",
					"amount":         "18.40",
					"currency":       "USD",
					"provider":       "UPS",
					"servicelevel":   map[string]any{"name": "Ground"},
					"estimated_days": 4,
				},
				{
					"object_id":      "rate_cheap",
					"amount":         "7.25",
					"currency":       "USD",
					"provider":       "USPS",
					"servicelevel":   map[string]any{"name": "Priority"},
					"estimated_days": 2,
				},
			},
		})
	}))
	defer server.Close()

	client, err := NewClient("shippo_test_token", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("client setup: %v", err)
	}

	rates, err := client.CreateShipment(context.Background(), ShipmentRequest{
		AddressFrom: ShipmentAddress{Street1: "1 Supplier Way", City: "Oakland", State: "CA", Zip: "94607", Country: "US"},
		AddressTo:   ShipmentAddress{Street1: "2 Buyer St", City: "Berkeley", State: "CA", Zip: "94704", Country: "US"},
		Parcels:     []Parcel{{Length: "10", Width: "8", Height: "4", DistanceUnit: "in", Weight: "2", MassUnit: "lb"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "ShippoToken shippo_test_token" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if len(rates) != 2 {
		t.Fatalf("expected 2 rates, got %d", len(rates))
	}
	if rates[1].Amount.String() != "7.25" {
		t.Fatalf("amount parsed wrong: %s", rates[1].Amount)
	}
	if rates[1].ServiceLevel != "Priority" {
		t.Fatalf("service level parsed wrong: %s", rates[1].ServiceLevel)
	}
}

func TestCreateShipmentRequiresParcel(t *testing.T) {
	client, err := NewClient("shippo_test_token")
	if err != nil {
		t.Fatalf("client setup: %v", err)
	}
	if _, err := client.CreateShipment(context.Background(), ShipmentRequest{}); err == nil {
		t.Fatal("expected error for empty parcels")
	}
}

func TestPurchaseLabelSurfacesMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transactions/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object_id": "txn_1",
			"status":    "ERROR",
			"messages":  []map[string]any{{"text": "rate expired"}},
		})
	}))
	defer server.Close()

	client, err := NewClient("shippo_test_token", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("client setup: %v", err)
	}

	txn, err := client.PurchaseLabel(context.Background(), "rate_cheap")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn.Succeeded() {
		t.Fatal("expected failed transaction")
	}
	if len(txn.Messages) != 1 || txn.Messages[0] != "rate expired" {
		t.Fatalf("messages not surfaced: %v", txn.Messages)
	}
}

func TestPurchaseLabelSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object_id":       "txn_2",
			"status":          "SUCCESS",
			"label_url":       "https://labels.example.com/txn_2.pdf",
			"tracking_number": "9400111899223344556677",
		})
	}))
	defer server.Close()

	client, err := NewClient("shippo_test_token", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("client setup: %v", err)
	}

	txn, err := client.PurchaseLabel(context.Background(), "rate_cheap")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !txn.Succeeded() {
		t.Fatalf("expected success, got %q", txn.Status)
	}
	if txn.TrackingNumber == "" || txn.LabelURL == "" {
		t.Fatal("label fields missing")
	}
}

func TestProviderErrorIncludesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"invalid token"}`))
	}))
	defer server.Close()

	client, err := NewClient("bad_token", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("client setup: %v", err)
	}

	_, err = client.PurchaseLabel(context.Background(), "rate_cheap")
	if err == nil {
		t.Fatal("expected error")
	}
}
