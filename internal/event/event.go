package event

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"
)

type Name string

const (
	TransactionAdded  Name = "transaction_added"
	RecurringExecuted Name = "recurring_executed"
	BalanceAdjusted   Name = "balance_adjusted"
	LowBalance        Name = "low_balance"
	PlanCreated       Name = "plan_created"
	PlanUpdated       Name = "plan_updated"
	PlanRemoved       Name = "plan_removed"
	AccountRemoved    Name = "account_removed"
)

// Event is a named notification with a payload struct from this package.
type Event struct {
	Name Name      `json:"event"`
	Data any       `json:"data"`
	At   time.Time `json:"at"`
}

type TransactionAddedData struct {
	Account string  `json:"account"`
	Amount  float64 `json:"amount"`
	Note    string  `json:"note"`
	Type    string  `json:"type"`
}

type RecurringExecutedData struct {
	Account string  `json:"account"`
	PlanID  string  `json:"plan_id"`
	Title   string  `json:"title"`
	Amount  float64 `json:"amount"`
}

type BalanceAdjustedData struct {
	Account    string  `json:"account"`
	OldBalance float64 `json:"old_balance"`
	NewBalance float64 `json:"new_balance"`
	Diff       float64 `json:"diff"`
}

type LowBalanceData struct {
	Account   string  `json:"account"`
	Balance   float64 `json:"balance"`
	Threshold float64 `json:"threshold"`
}

// PlanData is the payload of plan_created, plan_updated and plan_removed.
type PlanData struct {
	Account string `json:"account"`
	PlanID  string `json:"plan_id"`
	Title   string `json:"title"`
}

type AccountRemovedData struct {
	Account string `json:"account"`
}

// Handler receives published events. It runs on the publisher's goroutine
// and must not block.
type Handler func(ctx context.Context, e Event)

// Publisher is what producers of events depend on.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Bus fans events out to subscribers synchronously, in subscription order.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers []subscription
}

type subscription struct {
	id int
	fn Handler
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers = append(b.handlers, subscription{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		b.handlers = slices.DeleteFunc(b.handlers, func(s subscription) bool { return s.id == id })
	}
}

func (b *Bus) Publish(ctx context.Context, e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	b.mu.RLock()
	handlers := slices.Clone(b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h.fn(ctx, e)
	}
}

// LogHandler writes every event to the default slog logger.
func LogHandler(ctx context.Context, e Event) {
	slog.InfoContext(ctx, "event published", "event", e.Name, "data", e.Data)
}
