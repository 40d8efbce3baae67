// Package scenario evaluates what-if variations of a batch form.
package scenario

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Simplici0/seacost/internal/calc"
)

var (
	// ErrUnknownField is returned for a variation on a field that is not a numeric form field.
	ErrUnknownField = errors.New("unknown numeric field")
	// ErrInvalidVariation is returned when a variation sets both or neither of percent and value.
	ErrInvalidVariation = errors.New("variation needs exactly one of percent or value")
)

// Calculator runs one calculation. The server passes one backed by its
// calculation hosts; Inline runs the engine on the calling goroutine.
type Calculator func(ctx context.Context, form calc.FormData) (calc.Results, error)

// Inline is a Calculator that calls calc.Calculate directly.
func Inline(_ context.Context, form calc.FormData) (calc.Results, error) {
	return calc.Calculate(form), nil
}

// Variation changes one numeric field of the base form. Percent scales the
// base value (10 means +10%); Value replaces it.
type Variation struct {
	Name    string   `json:"name"`
	Field   string   `json:"field"`
	Percent *float64 `json:"percent,omitempty"`
	Value   *float64 `json:"value,omitempty"`
}

// Outcome is the result of one variation next to the base result.
type Outcome struct {
	Name              string       `json:"name"`
	Field             string       `json:"field"`
	Input             float64      `json:"input"`
	Results           calc.Results `json:"results"`
	CostPerKgDelta    float64      `json:"costPerKgDelta"`
	SellingPriceDelta float64      `json:"sellingPriceDelta"`
}

// Report holds the base result and one outcome per variation, in input order.
type Report struct {
	Base     calc.Results `json:"base"`
	Outcomes []Outcome    `json:"outcomes"`
}

// Run evaluates base and every variation with calculate, at most limit
// calculations at once. A limit of zero or less means no limit; a nil
// calculate means Inline. Variations are checked up front so a bad one fails
// the whole run before any work starts.
func Run(ctx context.Context, calculate Calculator, base calc.FormData, variations []Variation, limit int) (Report, error) {
	for i, v := range variations {
		if err := v.check(); err != nil {
			return Report{}, fmt.Errorf("variation %d (%s): %w", i, v.Name, err)
		}
	}

	if calculate == nil {
		calculate = Inline
	}
	baseResults, err := calculate(ctx, base)
	if err != nil {
		return Report{}, fmt.Errorf("calculate base: %w", err)
	}
	report := Report{
		Base:     baseResults,
		Outcomes: make([]Outcome, len(variations)),
	}

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, v := range variations {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := v.evaluate(ctx, calculate, base, report.Base)
			if err != nil {
				return fmt.Errorf("variation %d (%s): %w", i, v.Name, err)
			}
			report.Outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("run scenarios: %w", err)
	}
	return report, nil
}

// Sensitivity builds one percentage variation of field per step.
func Sensitivity(field string, steps []float64) []Variation {
	out := make([]Variation, 0, len(steps))
	for _, step := range steps {
		pct := step
		out = append(out, Variation{
			Name:    fmt.Sprintf("%s %+g%%", field, step),
			Field:   field,
			Percent: &pct,
		})
	}
	return out
}

func (v Variation) check() error {
	var probe calc.FormData
	if fieldPtr(&probe, v.Field) == nil {
		return fmt.Errorf("%w %q", ErrUnknownField, v.Field)
	}
	if (v.Percent == nil) == (v.Value == nil) {
		return ErrInvalidVariation
	}
	return nil
}

func (v Variation) evaluate(ctx context.Context, calculate Calculator, base calc.FormData, baseResults calc.Results) (Outcome, error) {
	form := base
	p := fieldPtr(&form, v.Field)
	if v.Percent != nil {
		*p *= 1 + *v.Percent/100
	} else {
		*p = *v.Value
	}

	r, err := calculate(ctx, form)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Name:              v.Name,
		Field:             v.Field,
		Input:             *p,
		Results:           r,
		CostPerKgDelta:    r.CostPerKg - baseResults.CostPerKg,
		SellingPriceDelta: r.SellingPrice - baseResults.SellingPrice,
	}, nil
}

// fieldPtr returns the address of the numeric field named key, or nil.
func fieldPtr(f *calc.FormData, key string) *float64 {
	switch key {
	case "purchasePrice":
		return &f.PurchasePrice
	case "quantity":
		return &f.Quantity
	case "waste":
		return &f.Waste
	case "glazingPercent":
		return &f.GlazingPercent
	case "boxCost":
		return &f.BoxCost
	case "bagCost":
		return &f.BagCost
	case "distance":
		return &f.Distance
	case "fuelCost":
		return &f.FuelCost
	case "tolls":
		return &f.Tolls
	case "parkingCost":
		return &f.ParkingCost
	case "driverSalary":
		return &f.DriverSalary
	case "electricityCost":
		return &f.ElectricityCost
	case "equipmentCost":
		return &f.EquipmentCost
	case "insuranceCost":
		return &f.InsuranceCost
	case "rentCost":
		return &f.RentCost
	case "communicationCost":
		return &f.CommunicationCost
	case "otherCosts":
		return &f.OtherCosts
	case "profitMargin":
		return &f.ProfitMargin
	case "targetSellingPrice":
		return &f.TargetSellingPrice
	case "minimumMargin":
		return &f.MinimumMargin
	case "competitor1":
		return &f.Competitor1
	case "competitor2":
		return &f.Competitor2
	case "vatPercent":
		return &f.VATPercent
	case "seasonalMultiplier":
		return &f.SeasonalMultiplier
	}
	return nil
}
