package finance

import (
	"context"
	"fmt"
	"strings"

	"github.com/WOOWTECH/ha-finance/internal/event"
	"github.com/WOOWTECH/ha-finance/internal/ledger"
	"github.com/WOOWTECH/ha-finance/internal/recurring"
)

type PlanParams struct {
	Title     string
	Amount    float64
	Frequency ledger.Frequency
	Day       int
	// Month defaults to 1.
	Month int
	// Active defaults to true.
	Active *bool
}

// PlanUpdate lists the mutable fields of a plan. Nil fields are left untouched.
type PlanUpdate struct {
	Title     *string
	Amount    *float64
	Frequency *ledger.Frequency
	Day       *int
	Month     *int
	Active    *bool
}

// reschedules reports whether the update changes when the plan runs.
func (u PlanUpdate) reschedules() bool {
	return u.Frequency != nil || u.Day != nil || u.Month != nil
}

func (u PlanUpdate) apply(p *ledger.RecurringPlan) {
	if u.Title != nil {
		p.Title = strings.TrimSpace(*u.Title)
	}

	if u.Amount != nil {
		p.Amount = *u.Amount
	}

	if u.Frequency != nil {
		p.Frequency = *u.Frequency
	}

	if u.Day != nil {
		p.Day = *u.Day
	}

	if u.Month != nil {
		p.Month = *u.Month
	}

	if u.Active != nil {
		p.Active = *u.Active
	}
}

// AddPlan creates a plan and schedules its first run from today.
func (s *Service) AddPlan(ctx context.Context, accountID string, params PlanParams) (*ledger.RecurringPlan, error) {
	plan := &ledger.RecurringPlan{
		ID:        ledger.NewPlanID(),
		Title:     strings.TrimSpace(params.Title),
		Amount:    params.Amount,
		Frequency: params.Frequency,
		Day:       params.Day,
		Month:     params.Month,
		Active:    true,
	}

	if plan.Month == 0 {
		plan.Month = 1
	}

	if params.Active != nil {
		plan.Active = *params.Active
	}

	if err := validatePlan(plan); err != nil {
		return nil, fmt.Errorf("adding plan: %w", err)
	}

	var out *ledger.RecurringPlan

	err := s.update(ctx, func(d *ledger.FinanceData, events *outbox) error {
		a, err := d.Account(accountID)
		if err != nil {
			return err
		}

		plan.NextDate = new(recurring.NextDueDate(plan, s.today(s.clock.Now())))
		a.AddPlan(plan)
		out = plan.Clone()

		events.add(event.PlanCreated, event.PlanData{Account: a.ID, PlanID: plan.ID, Title: plan.Title})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("adding plan: %w", err)
	}

	return out, nil
}

// UpdatePlan applies upd after validating the merged plan. Changing the
// frequency, day or month recomputes the next date from today.
func (s *Service) UpdatePlan(ctx context.Context, accountID, planID string, upd PlanUpdate) (*ledger.RecurringPlan, error) {
	var out *ledger.RecurringPlan

	err := s.update(ctx, func(d *ledger.FinanceData, events *outbox) error {
		a, err := d.Account(accountID)
		if err != nil {
			return err
		}

		plan, err := a.Plan(planID)
		if err != nil {
			return err
		}

		merged := plan.Clone()
		upd.apply(merged)

		if err := validatePlan(merged); err != nil {
			return err
		}

		if upd.reschedules() {
			merged.NextDate = new(recurring.NextDueDate(merged, s.today(s.clock.Now())))
		}

		*plan = *merged
		out = plan.Clone()

		events.add(event.PlanUpdated, event.PlanData{Account: a.ID, PlanID: plan.ID, Title: plan.Title})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating plan: %w", err)
	}

	return out, nil
}

func (s *Service) SetPlanActive(ctx context.Context, accountID, planID string, active bool) (*ledger.RecurringPlan, error) {
	return s.UpdatePlan(ctx, accountID, planID, PlanUpdate{Active: &active})
}

// RemovePlan deletes a plan. Subscribers of plan_removed clean up anything
// they keyed by the plan id.
func (s *Service) RemovePlan(ctx context.Context, accountID, planID string) error {
	err := s.update(ctx, func(d *ledger.FinanceData, events *outbox) error {
		a, err := d.Account(accountID)
		if err != nil {
			return err
		}

		plan, err := a.Plan(planID)
		if err != nil {
			return err
		}

		a.RemovePlan(planID)

		events.add(event.PlanRemoved, event.PlanData{Account: a.ID, PlanID: planID, Title: plan.Title})

		return nil
	})
	if err != nil {
		return fmt.Errorf("removing plan: %w", err)
	}

	return nil
}

func validatePlan(p *ledger.RecurringPlan) error {
	if p.Title == "" {
		return ledger.ValidationError{Field: "title", Message: "cannot be empty"}
	}

	return p.Validate()
}
