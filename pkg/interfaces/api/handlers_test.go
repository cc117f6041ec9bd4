package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmops/inputplan/pkg/application/dto"
	"github.com/farmops/inputplan/pkg/application/services/landedcost"
	"github.com/farmops/inputplan/pkg/application/services/readiness"
	testinghelpers "github.com/farmops/inputplan/pkg/application/services/testing"
	"github.com/farmops/inputplan/pkg/infrastructure/repositories/memory"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestServer(t *testing.T, pingErr error) *httptest.Server {
	t.Helper()
	f := testinghelpers.BuildSpringPlanFixture()
	h := NewHandler(
		readiness.NewService(f.Plans, f.Products, f.Inventory, f.Orders),
		landedcost.NewService(nil, memory.NewPriceHistoryRepository()),
		stubPinger{err: pingErr},
	)
	srv := httptest.NewServer(NewRouter(h, nil))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	resp, err := http.Get(newTestServer(t, nil).URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(newTestServer(t, errors.New("closed")).URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestGetReadiness(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/readiness?explain=true")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	summary := report["summary"].(map[string]any)
	assert.EqualValues(t, 3, summary["total"])
	assert.EqualValues(t, 1, summary["blocking"])

	items := report["items"].([]any)
	first := items[0].(map[string]any)
	assert.Equal(t, "GLY", first["product_id"])
	assert.Equal(t, "READY", first["status"])
	assert.NotNil(t, first["explain"])
}

func TestGetReadiness_StatusFilter(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/readiness?status=blocking")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	items := report["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "UREA", item["product_id"])
	assert.Equal(t, "50", item["short_qty"])
	assert.Nil(t, item["explain"])

	bad, err := http.Get(srv.URL + "/api/readiness?status=maybe")
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestComputeReadiness(t *testing.T) {
	srv := newTestServer(t, nil)

	body := map[string]any{
		"plan_usage": []map[string]any{
			{"product_id": "GLY", "total_needed": "100", "unit": "gal"},
		},
		"inventory": []map[string]any{
			{"product_id": "GLY", "quantity": "40"},
		},
		"orders": []map[string]any{
			{"id": "PO-1", "status": "ordered", "lines": []map[string]any{
				{"product_id": "GLY", "ordered_qty": "80", "unit": "gal"},
			}},
		},
	}

	resp := postJSON(t, srv.URL+"/api/readiness/compute", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	report := decode[map[string]any](t, resp)
	item := report["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "ON_ORDER", item["status"])
	explain := item["explain"].(map[string]any)
	assert.Len(t, explain["order_lines"], 1)
}

func TestComputeReadiness_BadRequests(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name string
		body any
	}{
		{"unknown field", map[string]any{"plans": []string{}}},
		{"negative inventory", map[string]any{"inventory": []map[string]any{{"product_id": "GLY", "quantity": "-5"}}}},
		{"bad order status", map[string]any{"orders": []map[string]any{{"id": "PO", "status": "shipped"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/readiness/compute", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			errResp := decode[ErrorResponse](t, resp)
			assert.NotEmpty(t, errResp.Error)
		})
	}
}

func TestAllocateFreight(t *testing.T) {
	srv := newTestServer(t, nil)

	body := map[string]any{
		"lines": []map[string]any{
			{"product_id": "AMS", "product_name": "AMS", "quantity": "15", "unit": "ton", "unit_price": "415"},
			{"product_id": "UREA", "product_name": "Urea", "quantity": "12", "unit": "ton", "unit_price": "510"},
		},
		"freight_charge": "450",
		"other_charges":  "50",
	}

	resp := postJSON(t, srv.URL+"/api/freight/allocate", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	view := decode[dto.FreightAllocationView](t, resp)
	require.Len(t, view.Lines, 2)
	assert.Equal(t, "277.78", view.Lines[0].AllocatedFreight.StringFixed(2))
	assert.Equal(t, "433.52", view.Lines[0].LandedUnitCost.StringFixed(2))
	assert.Equal(t, "500.00", view.Lines[0].AllocatedFreight.Add(view.Lines[1].AllocatedFreight).StringFixed(2))
}

func TestAllocateFreight_NegativeCharges(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/api/freight/allocate", map[string]any{"freight_charge": "-1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAllocateFreight_InvalidLines(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name string
		line map[string]any
	}{
		{"negative quantity", map[string]any{"product_id": "AMS", "quantity": "-15", "unit": "ton", "unit_price": "415"}},
		{"empty product id", map[string]any{"product_id": "", "quantity": "15", "unit": "ton", "unit_price": "415"}},
		{"negative unit price", map[string]any{"product_id": "AMS", "quantity": "15", "unit": "ton", "unit_price": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := map[string]any{"lines": []map[string]any{tt.line}, "freight_charge": "500"}

			preview := postJSON(t, srv.URL+"/api/freight/allocate", body)
			assert.Equal(t, http.StatusBadRequest, preview.StatusCode)
			assert.NotEmpty(t, decode[ErrorResponse](t, preview).Details)

			body["id"] = "INV-BAD"
			settle := postJSON(t, srv.URL+"/api/invoices/settle", body)
			assert.Equal(t, http.StatusBadRequest, settle.StatusCode)
		})
	}
}

func TestSettleInvoiceAndPriceHistory(t *testing.T) {
	srv := newTestServer(t, nil)

	body := map[string]any{
		"id":           "INV-1",
		"vendor_name":  "Valley Coop",
		"invoice_date": "2026-03-14T00:00:00Z",
		"lines": []map[string]any{
			{"product_id": "AMS", "product_name": "AMS", "quantity": "15", "unit": "ton", "unit_price": "415"},
			{"product_id": "UREA", "product_name": "Urea", "quantity": "12", "unit": "ton", "unit_price": "510"},
		},
		"freight_charge": "500",
	}

	resp := postJSON(t, srv.URL+"/api/invoices/settle", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	settlement := decode[dto.SettlementView](t, resp)
	assert.Equal(t, "INV-1", settlement.Allocation.InvoiceID)
	assert.Len(t, settlement.Recorded, 2)

	hist, err := http.Get(srv.URL + "/api/products/UREA/price-history")
	require.NoError(t, err)
	defer hist.Body.Close()
	require.Equal(t, http.StatusOK, hist.StatusCode)

	entries := decode[[]dto.PriceHistoryView](t, hist)
	require.Len(t, entries, 1)
	assert.Equal(t, "528.52", entries[0].LandedUnitCost.StringFixed(2))
	assert.Equal(t, "Valley Coop", entries[0].VendorName)
}

func TestSettleInvoice_EmptyInvoice(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/api/invoices/settle", map[string]any{"id": "INV-2", "lines": []any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetPriceHistory_UnknownProductIsEmpty(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/products/NOPE/price-history")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]dto.PriceHistoryView](t, resp))
}
