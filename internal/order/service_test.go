package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/shopgate/internal/apiclient"
)

func newBackendClient(backend *httptest.Server) *apiclient.Client {
	return apiclient.NewClient(apiclient.ClientConfig{
		BaseURL: backend.URL,
		Timeout: 5 * time.Second,
	})
}

func TestCreate_SendsShippingAddress(t *testing.T) {
	var gotBody map[string]string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orders" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/api/orders")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"isSuccess": true,
			"result":    map[string]any{"id": 77, "shippingAddress": gotBody["shippingAddress"]},
		})
	}))
	defer backend.Close()

	svc := NewService(newBackendClient(backend))
	created, err := svc.Create(context.Background(), "1 Main, Springfield, US")
	if err != nil {
		t.Fatalf("Create() がエラーを返した: %v", err)
	}

	if gotBody["shippingAddress"] != "1 Main, Springfield, US" {
		t.Errorf("shippingAddress = %q, want %q", gotBody["shippingAddress"], "1 Main, Springfield, US")
	}
	if created.ID != 77 {
		t.Errorf("order id = %d, want 77", created.ID)
	}
}

func TestCreate_MissingOrderIDIsRejected(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"isSuccess": true,
			"result":    map[string]any{"shippingAddress": "somewhere"},
		})
	}))
	defer backend.Close()

	svc := NewService(newBackendClient(backend))
	if _, err := svc.Create(context.Background(), "somewhere"); err == nil {
		t.Fatal("注文IDなしの成功レスポンスでエラーが返らなかった")
	}
}

func TestCreate_RejectedEnvelopeReturnsError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"isSuccess":    false,
			"errorMessage": "cart is empty",
		})
	}))
	defer backend.Close()

	svc := NewService(newBackendClient(backend))
	if _, err := svc.Create(context.Background(), "somewhere"); err == nil {
		t.Fatal("isSuccess=falseでエラーが返らなかった")
	}
}

func TestGet_ReturnsOrder(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orders/77" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/api/orders/77")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"isSuccess": true,
			"result":    map[string]any{"id": 77, "status": "Pending"},
		})
	}))
	defer backend.Close()

	svc := NewService(newBackendClient(backend))
	got, err := svc.Get(context.Background(), 77)
	if err != nil {
		t.Fatalf("Get() がエラーを返した: %v", err)
	}
	if got.Status != "Pending" {
		t.Errorf("status = %q, want %q", got.Status, "Pending")
	}
}
