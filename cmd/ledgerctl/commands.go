package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/WOOWTECH/ha-finance/internal/bootstrap"
	"github.com/WOOWTECH/ha-finance/internal/clock"
	"github.com/WOOWTECH/ha-finance/internal/config"
	"github.com/WOOWTECH/ha-finance/internal/event"
	"github.com/WOOWTECH/ha-finance/internal/finance"
	"github.com/WOOWTECH/ha-finance/internal/ledger"
	"github.com/WOOWTECH/ha-finance/internal/recurring"
	"github.com/WOOWTECH/ha-finance/internal/storage"
	"github.com/WOOWTECH/ha-finance/internal/storage/memory"
)

type accountRow struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
	Low     bool    `json:"low"`
}

func runAccounts(ctx context.Context, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("accounts", pflag.ContinueOnError)
	threshold := fs.Float64("threshold", 0, "balance below which an account is flagged low (default LEDGER_LOW_BALANCE_THRESHOLD)")
	lowOnly := fs.Bool("low", false, "only list accounts below the threshold")
	asJSON := fs.Bool("json", false, "print JSON instead of a table")

	if done, err := parseFlags(fs, args, out); done || err != nil {
		return err
	}

	svc, _, closeFn, err := openService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeFn()

	if !fs.Changed("threshold") {
		*threshold = svc.Threshold()
	}

	summaries, err := svc.Accounts(ctx)
	if err != nil {
		return err
	}

	rows := make([]accountRow, 0, len(summaries))

	for _, s := range summaries {
		row := accountRow{ID: s.ID, Name: s.Name, Balance: s.Balance, Low: s.Balance < *threshold}
		if *lowOnly && !row.Low {
			continue
		}

		rows = append(rows, row)
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(rows)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBALANCE\tSTATUS")

	for _, r := range rows {
		status := "ok"
		if r.Low {
			status = "low"
		}

		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\n", r.ID, r.Name, r.Balance, status)
	}

	return tw.Flush()
}

func runSweep(ctx context.Context, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("sweep", pflag.ContinueOnError)
	at := fs.String("at", "", "sweep as of this time (RFC 3339, or YYYY-MM-DD for midnight in LEDGER_TIMEZONE; default now)")
	dryRun := fs.Bool("dry-run", false, "report what would run without saving")
	catchUp := fs.Bool("catch-up", false, "apply every missed occurrence instead of one per plan")

	if done, err := parseFlags(fs, args, out); done || err != nil {
		return err
	}

	svc, cfg, closeFn, err := openService(ctx, func(cfg *config.Config, g *storage.Gateway) (finance.Store, error) {
		if *catchUp {
			cfg.Ledger.CatchUp = true
		}

		if *dryRun {
			copied, err := detach(ctx, g, cfg.Storage.Key)
			if err != nil {
				return nil, err
			}

			return copied, nil
		}

		return g, nil
	})
	if err != nil {
		return err
	}
	defer closeFn()

	now := time.Now()

	if *at != "" {
		loc, err := cfg.Location()
		if err != nil {
			return err
		}

		if now, err = parseAt(*at, loc); err != nil {
			return fmt.Errorf("parsing --at: %w", err)
		}
	}

	reports, err := svc.Sweep(ctx, now)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACCOUNT\tPLAN\tTITLE\tAMOUNT")

	var executed, initialized int

	for _, r := range reports {
		initialized += r.Initialized

		for _, e := range r.Executed {
			executed++
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\n", r.Account, e.PlanID, e.Title, e.Amount)
		}
	}

	if flushErr := tw.Flush(); flushErr != nil {
		return flushErr
	}

	suffix := ""
	if *dryRun {
		suffix = " (dry run, nothing saved)"
	}

	fmt.Fprintf(out, "%d executed, %d initialised%s\n", executed, initialized, suffix)

	return err
}

func runNextDue(_ context.Context, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("next-due", pflag.ContinueOnError)
	frequency := fs.String("frequency", string(ledger.FrequencyMonthly), "daily, weekly, monthly or yearly")
	day := fs.Int("day", 1, "weekday 1-7 (Mon-Sun) for weekly, day of month 1-28 otherwise")
	month := fs.Int("month", 1, "month 1-12, yearly only")
	from := fs.String("from", "", "reference date YYYY-MM-DD (default today)")
	count := fs.IntP("count", "n", 1, "number of consecutive due dates to print")

	if done, err := parseFlags(fs, args, out); done || err != nil {
		return err
	}

	plan := &ledger.RecurringPlan{Frequency: ledger.Frequency(*frequency), Day: *day, Month: *month}
	if err := plan.Validate(); err != nil {
		return err
	}

	date := ledger.DateOf(time.Now())

	if *from != "" {
		t, err := time.Parse(time.DateOnly, *from)
		if err != nil {
			return fmt.Errorf("parsing --from: %w", err)
		}

		date = t
	}

	for range max(*count, 1) {
		date = recurring.NextDueDate(plan, date)
		fmt.Fprintln(out, date.Format(time.DateOnly))
		date = date.AddDate(0, 0, 1)
	}

	return nil
}

// parseAt reads --at. A bare date is midnight in loc.
func parseAt(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, nil
	}

	return ledger.ParseTimestamp(s)
}

func runReset(ctx context.Context, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("reset", pflag.ContinueOnError)
	yes := fs.Bool("yes", false, "confirm deleting the stored ledger")

	if done, err := parseFlags(fs, args, out); done || err != nil {
		return err
	}

	if !*yes {
		return errors.New("reset deletes every account, pass --yes to confirm")
	}

	cfg, gateway, closeFn, err := openGateway(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := gateway.Remove(ctx); err != nil {
		return err
	}

	fmt.Fprintf(out, "removed %s from %s storage\n", cfg.Storage.Key, cfg.Storage.Backend)

	return nil
}

type storeFunc func(cfg *config.Config, g *storage.Gateway) (finance.Store, error)

func openGateway(ctx context.Context) (*config.Config, *storage.Gateway, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	gateway, closeStore, err := bootstrap.OpenGateway(ctx, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening storage: %w", err)
	}

	return cfg, gateway, func() { _ = closeStore() }, nil
}

func openService(ctx context.Context, wrap storeFunc) (*finance.Service, *config.Config, func(), error) {
	cfg, gateway, closeFn, err := openGateway(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	var store finance.Store = gateway

	if wrap != nil {
		if store, err = wrap(cfg, gateway); err != nil {
			closeFn()
			return nil, nil, nil, err
		}
	}

	bus := event.NewBus()
	bus.Subscribe(event.LogHandler)

	svc, err := bootstrap.NewService(cfg, store, bus, clock.Real())
	if err != nil {
		closeFn()
		return nil, nil, nil, err
	}

	return svc, cfg, closeFn, nil
}

// detach copies the current snapshot into an in-memory gateway so that
// mutations never reach the real backend.
func detach(ctx context.Context, g *storage.Gateway, key string) (*storage.Gateway, error) {
	var snapshot ledger.Snapshot

	err := g.View(ctx, func(d *ledger.FinanceData) error {
		snapshot = d.Snapshot()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	raw, err := storage.JSON{}.Marshal(storage.Document{Version: storage.Version, Key: key, Data: snapshot})
	if err != nil {
		return nil, fmt.Errorf("copying snapshot: %w", err)
	}

	return storage.NewGateway(memory.Seed(raw), storage.JSON{}, key), nil
}
