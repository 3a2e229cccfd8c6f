package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/apexrecon/internal/http/auth"
	"github.com/MrJamesThe3rd/apexrecon/internal/http/bank"
	"github.com/MrJamesThe3rd/apexrecon/internal/http/invoice"
	"github.com/MrJamesThe3rd/apexrecon/internal/http/matching"
	"github.com/MrJamesThe3rd/apexrecon/internal/http/reconciliation"
	"github.com/MrJamesThe3rd/apexrecon/internal/http/report"
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	Timeout        time.Duration
}

func New(
	opts Options,
	invoicesV1 *invoice.Handler,
	bankV1 *bank.Handler,
	reconciliationV1 *reconciliation.Handler,
	matchingV1 *matching.Handler,
	reportsV1 *report.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(opts.JWTSecret))

		r.Route("/invoices", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			invoicesV1.Routes(r)
		})

		r.Route("/bank-connections", bankV1.ConnectionRoutes)
		r.Route("/bank-transactions", bankV1.TransactionRoutes)

		r.Route("/payments", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			reconciliationV1.PaymentRoutes(r)
		})

		r.Route("/invoice-ledgers", reconciliationV1.InvoiceLedgerRoutes)
		r.Route("/bank-ledgers", reconciliationV1.BankLedgerRoutes)

		r.Route("/matching", func(r chi.Router) {
			matchingV1.Routes(r)
		})

		r.Route("/reports", reportsV1.Routes)
	})

	return router
}
