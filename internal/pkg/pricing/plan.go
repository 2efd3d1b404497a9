package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidPlan is returned when a subscription plan id is unrecognized.
var ErrInvalidPlan = errors.New("invalid plan id")

// Plan is a fixed subscription offering. Activating a plan credits the
// ledger with Amount * (1 + BonusPercentage/100).
type Plan struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Amount          decimal.Decimal `json:"price"`
	BonusPercentage int             `json:"bonus_percentage"`
	Description     string          `json:"description"`
}

var plans = []Plan{
	{
		ID:              "basic",
		Name:            "Basic",
		Amount:          decimal.RequireFromString("10.00"),
		BonusPercentage: 5,
		Description:     "Basic subscription with 5% bonus credit",
	},
	{
		ID:              "standard",
		Name:            "Standard",
		Amount:          decimal.RequireFromString("25.00"),
		BonusPercentage: 10,
		Description:     "Standard subscription with 10% bonus credit",
	},
	{
		ID:              "premium",
		Name:            "Premium",
		Amount:          decimal.RequireFromString("50.00"),
		BonusPercentage: 20,
		Description:     "Premium subscription with 20% bonus credit",
	},
}

// Plans returns the available subscription plans in display order.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// PlanByID resolves a plan id; unknown ids return ErrInvalidPlan.
func PlanByID(id string) (Plan, error) {
	for _, p := range plans {
		if p.ID == id {
			return p, nil
		}
	}
	return Plan{}, ErrInvalidPlan
}

// Credit returns the ledger credit granted when the plan activates.
func (p Plan) Credit() decimal.Decimal {
	factor := decimal.NewFromInt(100 + int64(p.BonusPercentage)).Div(decimal.NewFromInt(100))
	return p.Amount.Mul(factor).Round(2)
}
