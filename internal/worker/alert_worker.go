// Package worker consumes ledger change events and raises budget alerts.
package worker

import (
	"context"
	"log/slog"
	"sync"

	"budget/internal/amqp"
	"budget/internal/ledger"
	"budget/internal/log"
	"budget/internal/metrics"
)

// Level classifies a ledger state.
type Level string

const (
	LevelOK      Level = "ok"
	LevelLow     Level = "low_savings"
	LevelDeficit Level = "deficit"
	LevelInvalid Level = "invalid"
)

const lowSavingsPct = 20.0

// Classify grades totals the same way the ledger analysis grades savings.
func Classify(msg *amqp.LedgerChanged) Level {
	switch {
	case msg.Balance < 0:
		return LevelDeficit
	case ledger.SavingsRate(msg.TotalIncome, msg.TotalExpenses) < lowSavingsPct:
		return LevelLow
	default:
		return LevelOK
	}
}

// AlertWorker logs an alert for every event whose totals need attention,
// and a transition message when the balance crosses zero.
type AlertWorker struct {
	logger *log.Logger

	mu          sync.Mutex
	seen        bool
	lastBalance float64
}

func NewAlertWorker(logger *log.Logger) *AlertWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &AlertWorker{logger: logger.WithComponent(log.ComponentWorker)}
}

// HandleLedgerChanged never fails: a message it cannot use is logged and
// acknowledged so the queue does not redeliver it forever.
func (w *AlertWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChanged) error {
	if msg == nil || msg.Operation == "" {
		metrics.EventsConsumed.WithLabelValues(string(LevelInvalid)).Inc()
		w.logger.WarnContext(ctx, "Discarding ledger event without operation")
		return nil
	}

	level := Classify(msg)
	metrics.EventsConsumed.WithLabelValues(string(level)).Inc()

	attrs := []any{
		log.FieldOperation, msg.Operation,
		log.FieldBalance, msg.Balance,
		"total_income", msg.TotalIncome,
		"total_expenses", msg.TotalExpenses,
		"savings_rate", ledger.SavingsRate(msg.TotalIncome, msg.TotalExpenses),
		"event_time", msg.Timestamp,
	}

	switch level {
	case LevelDeficit:
		w.logger.ErrorContext(ctx, "Budget alert: expenses exceed income", attrs...)
	case LevelLow:
		w.logger.WarnContext(ctx, "Budget alert: savings rate below 20%", attrs...)
	default:
		w.logger.DebugContext(ctx, "Ledger event processed", attrs...)
	}

	w.trackBalance(ctx, msg.Balance)
	return nil
}

func (w *AlertWorker) trackBalance(ctx context.Context, balance float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.seen {
		switch {
		case w.lastBalance >= 0 && balance < 0:
			w.logger.Log(ctx, slog.LevelError, "Balance turned negative", log.FieldBalance, balance, "previous_balance", w.lastBalance)
		case w.lastBalance < 0 && balance >= 0:
			w.logger.InfoContext(ctx, "Balance recovered", log.FieldBalance, balance, "previous_balance", w.lastBalance)
		}
	}
	w.seen = true
	w.lastBalance = balance
}
