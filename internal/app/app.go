// Package app assembles the services shared by the API server and reconctl.
package app

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/apexrecon/internal/bank"
	bankStore "github.com/MrJamesThe3rd/apexrecon/internal/bank/store"
	"github.com/MrJamesThe3rd/apexrecon/internal/clock"
	"github.com/MrJamesThe3rd/apexrecon/internal/config"
	"github.com/MrJamesThe3rd/apexrecon/internal/event"
	"github.com/MrJamesThe3rd/apexrecon/internal/identity"
	"github.com/MrJamesThe3rd/apexrecon/internal/importer"
	"github.com/MrJamesThe3rd/apexrecon/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/apexrecon/internal/invoice/store"
	"github.com/MrJamesThe3rd/apexrecon/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/apexrecon/internal/ledger/store"
	"github.com/MrJamesThe3rd/apexrecon/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/apexrecon/internal/matching/store"
	"github.com/MrJamesThe3rd/apexrecon/internal/outbox"
	"github.com/MrJamesThe3rd/apexrecon/internal/outbox/rabbitmq"
	outboxStore "github.com/MrJamesThe3rd/apexrecon/internal/outbox/store"
	"github.com/MrJamesThe3rd/apexrecon/internal/reconciliation"
	reconStore "github.com/MrJamesThe3rd/apexrecon/internal/reconciliation/store"
	"github.com/MrJamesThe3rd/apexrecon/internal/report"
)

type Services struct {
	Invoices       *invoice.Service
	Bank           *bank.Service
	Ledgers        *ledger.Service
	Reconciliation *reconciliation.Service
	Matching       *matching.Service
	Reports        *report.Service
	Importer       *importer.Service
}

func New(db *sql.DB) *Services {
	var (
		clk = clock.System{}
		ids = identity.V7{}

		reconRepo = reconStore.New(db)
		ledgerSvc = ledger.NewService(ledgerStore.New(db))
	)

	return &Services{
		Invoices:       invoice.NewService(invoiceStore.New(db), clk, ids),
		Bank:           bank.NewService(bankStore.New(db), clk, ids),
		Ledgers:        ledgerSvc,
		Reconciliation: reconciliation.NewService(reconRepo, clk, ids),
		Matching:       matching.NewService(matchingStore.New(db), ledgerSvc),
		Reports:        report.NewService(ledgerSvc, reconRepo, clk),
		Importer:       importer.NewService(),
	}
}

// Dispatcher builds the outbox dispatcher. Invoice status follows
// allocations; every notification also goes to RabbitMQ when AMQP is
// configured. The returned close func releases the broker connection.
func (s *Services) Dispatcher(db *sql.DB, cfg *config.Config) (*outbox.Dispatcher, func(), error) {
	d := outbox.NewDispatcher(outboxStore.New(db), clock.System{}, outbox.Config{
		BatchSize:   cfg.Outbox.BatchSize,
		MaxAttempts: cfg.Outbox.MaxAttempts,
		Interval:    cfg.Outbox.Interval,
	})

	d.Register(event.TypeAllocationApplied, s.Invoices.HandleAllocationApplied)

	if cfg.AMQP.URL == "" {
		slog.Warn("AMQP_URL not set, notifications are not published to a broker")
		return d, func() {}, nil
	}

	pub, err := rabbitmq.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting publisher: %w", err)
	}

	d.RegisterAll(pub.Publish)

	return d, func() {
		if err := pub.Close(); err != nil {
			slog.Error("failed to close publisher", "error", err)
		}
	}, nil
}
