package calc

import (
	"fmt"
	"strings"
)

// Validation is the advisory outcome of Validate.
// Errors lists field identifiers in form order; Valid ignores non-fatal flags.
type Validation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validate checks a form for completeness and sanity. It never blocks Calculate.
func Validate(form FormData) Validation {
	v := Validation{Valid: true, Errors: []string{}}

	// Flagged so the user is told, but a nameless batch still calculates fine.
	if strings.TrimSpace(form.ProductName) == "" {
		v.Errors = append(v.Errors, "productName")
	}

	fatal := func(field string) {
		v.Valid = false
		v.Errors = append(v.Errors, field)
	}

	if !(form.PurchasePrice > 0) {
		fatal("purchasePrice")
	}
	if !(form.Quantity > 0) {
		fatal("quantity")
	}
	if !inRange(form.Waste, 0, 100) {
		fatal("waste")
	}
	if !(form.GlazingPercent >= 0) {
		fatal("glazingPercent")
	}

	for i, w := range form.Workers {
		if !(w.HourlyRate >= 0) {
			fatal(fmt.Sprintf("workers[%d].hourlyRate", i))
		}
		if !(w.Hours >= 0) {
			fatal(fmt.Sprintf("workers[%d].hours", i))
		}
	}

	for _, f := range []struct {
		key   string
		value float64
	}{
		{"boxCost", form.BoxCost},
		{"bagCost", form.BagCost},
		{"distance", form.Distance},
		{"fuelCost", form.FuelCost},
		{"tolls", form.Tolls},
		{"parkingCost", form.ParkingCost},
		{"driverSalary", form.DriverSalary},
		{"electricityCost", form.ElectricityCost},
		{"equipmentCost", form.EquipmentCost},
		{"insuranceCost", form.InsuranceCost},
		{"rentCost", form.RentCost},
		{"communicationCost", form.CommunicationCost},
		{"otherCosts", form.OtherCosts},
		{"profitMargin", form.ProfitMargin},
		{"targetSellingPrice", form.TargetSellingPrice},
		{"minimumMargin", form.MinimumMargin},
		{"competitor1", form.Competitor1},
		{"competitor2", form.Competitor2},
	} {
		if !(f.value >= 0) {
			fatal(f.key)
		}
	}

	if !inRange(form.VATPercent, 0, 100) {
		fatal("vatPercent")
	}

	for i, p := range form.ProcessingPhases {
		if !inRange(p.WastePercentage, 0, 100) {
			fatal(fmt.Sprintf("processingPhases[%d].wastePercentage", i))
		}
		if !(p.AddedWeight >= 0) {
			fatal(fmt.Sprintf("processingPhases[%d].addedWeight", i))
		}
	}

	if !(form.SeasonalMultiplier >= 0) {
		fatal("seasonalMultiplier")
	}

	return v
}

// inRange is false for NaN.
func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
