/*
server.go - HTTP router and middleware configuration

ROUTES:
  GET  /healthz                          Store connectivity check
  GET  /api/readiness                    Readiness over stored plan, inventory and orders
  POST /api/readiness/compute            Readiness over a snapshot in the request body
  POST /api/freight/allocate             Freight allocation preview
  POST /api/invoices/settle              Settle an invoice and record landed costs
  GET  /api/products/{id}/price-history  Recorded landed costs for a product

MIDDLEWARE STACK:
  RequestID, structured request logging, panic recovery, CORS.
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/farmops/inputplan/pkg/infrastructure/logger"
)

// NewRouter creates a router with all routes configured. An empty
// allowedOrigins list allows any origin.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/readiness", func(r chi.Router) {
			r.Get("/", h.GetReadiness)
			r.Post("/compute", h.ComputeReadiness)
		})

		r.Post("/freight/allocate", h.AllocateFreight)
		r.Post("/invoices/settle", h.SettleInvoice)
		r.Get("/products/{id}/price-history", h.GetPriceHistory)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := logger.StartSpan(r.Context(), r.Method+" "+r.URL.Path)
		defer span.End()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.Info(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(ctx))
	})
}
