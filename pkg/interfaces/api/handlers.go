package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/farmops/inputplan/pkg/application/dto"
	"github.com/farmops/inputplan/pkg/application/services/landedcost"
	"github.com/farmops/inputplan/pkg/application/services/readiness"
	"github.com/farmops/inputplan/pkg/domain/entities"
	"github.com/farmops/inputplan/pkg/infrastructure/logger"
)

// ReadinessRunner is satisfied by readiness.Service and readiness.EventDrivenService
type ReadinessRunner interface {
	Run(ctx context.Context) (entities.ReadinessResult, error)
	Compute(ctx context.Context, in readiness.Input) entities.ReadinessResult
}

// Pinger reports store health
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers
type Handler struct {
	Readiness  ReadinessRunner
	LandedCost *landedcost.Service
	Store      Pinger
	now        func() time.Time
}

func NewHandler(readinessRunner ReadinessRunner, landedCost *landedcost.Service, store Pinger) *Handler {
	return &Handler{
		Readiness:  readinessRunner,
		LandedCost: landedCost,
		Store:      store,
		now:        time.Now,
	}
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.Store != nil {
		if err := h.Store.Ping(r.Context()); err != nil {
			writeError(w, r, http.StatusServiceUnavailable, "store unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetReadiness runs readiness over stored data. Query parameters:
// explain=true includes the trace, status=BLOCKING filters items.
func (h *Handler) GetReadiness(w http.ResponseWriter, r *http.Request) {
	var filter *entities.ReadinessStatus
	if s := r.URL.Query().Get("status"); s != "" {
		var status entities.ReadinessStatus
		if err := status.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid status filter", err)
			return
		}
		filter = &status
	}

	result, err := h.Readiness.Run(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to compute readiness", err)
		return
	}
	if filter != nil {
		result = entities.ReadinessResult{Items: result.ByStatus(*filter)}
	}

	writeJSON(w, http.StatusOK, dto.NewReadinessReport(result, h.now().UTC(), r.URL.Query().Get("explain") == "true"))
}

// ComputeReadiness runs readiness over the snapshot in the request body.
// The explain trace is always included.
func (h *Handler) ComputeReadiness(w http.ResponseWriter, r *http.Request) {
	var req dto.ComputeReadinessRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	products, plan, inventory, orders, err := req.Snapshot()
	if err != nil {
		writeDomainError(w, r, "invalid readiness snapshot", err)
		return
	}

	result := h.Readiness.Compute(r.Context(), readiness.Input{
		Products:  products,
		PlanUsage: plan,
		Inventory: inventory,
		Orders:    orders,
	})
	writeJSON(w, http.StatusOK, dto.NewReadinessReport(result, h.now().UTC(), true))
}

func (h *Handler) AllocateFreight(w http.ResponseWriter, r *http.Request) {
	var req dto.FreightAllocationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.TotalCharges().IsNegative() {
		writeError(w, r, http.StatusBadRequest, "total charges cannot be negative", nil)
		return
	}
	inputs := req.LineInputs()
	if err := entities.ValidateFreightLines(inputs); err != nil {
		writeDomainError(w, r, "invalid freight lines", err)
		return
	}

	lines := h.LandedCost.Allocate(r.Context(), inputs, req.TotalCharges())
	writeJSON(w, http.StatusOK, dto.NewFreightAllocationView("", lines, req.TotalCharges()))
}

func (h *Handler) SettleInvoice(w http.ResponseWriter, r *http.Request) {
	var req dto.InvoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	settlement, err := h.LandedCost.Settle(r.Context(), req.ToInvoice())
	if err != nil {
		writeDomainError(w, r, "failed to settle invoice", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.SettlementView{
		Allocation: dto.NewFreightAllocationView(settlement.Invoice.ID, settlement.Lines, settlement.Invoice.TotalCharges()),
		Recorded:   dto.NewPriceHistoryViews(settlement.Entries),
	})
}

func (h *Handler) GetPriceHistory(w http.ResponseWriter, r *http.Request) {
	productID := entities.ProductID(chi.URLParam(r, "id"))

	entries, err := h.LandedCost.PriceHistory(r.Context(), productID)
	if err != nil {
		writeDomainError(w, r, "failed to load price history", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewPriceHistoryViews(entries))
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", err)
		return false
	}
	return true
}

func writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	var verr *entities.ValidationError
	switch {
	case errors.As(err, &verr), entities.IsClientError(err):
		writeError(w, r, http.StatusBadRequest, message, err)
	case entities.IsNotFound(err):
		writeError(w, r, http.StatusNotFound, message, err)
	default:
		writeError(w, r, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
		if status >= http.StatusInternalServerError {
			logger.ErrorWithErr(r.Context(), message, err, "path", r.URL.Path)
		}
	}
	writeJSON(w, status, resp)
}
