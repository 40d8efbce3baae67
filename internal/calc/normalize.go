package calc

import "math"

// normalize returns a copy of form that is safe to compute with.
func normalize(form FormData) FormData {
	in := form
	limit := Engine().MaxAmount

	for _, p := range []*float64{
		&in.PurchasePrice, &in.Quantity, &in.GlazingPercent,
		&in.BoxCost, &in.BagCost,
		&in.Distance, &in.FuelCost, &in.Tolls, &in.ParkingCost, &in.DriverSalary,
		&in.ElectricityCost, &in.EquipmentCost, &in.InsuranceCost,
		&in.RentCost, &in.CommunicationCost, &in.OtherCosts,
		&in.ProfitMargin, &in.TargetSellingPrice, &in.MinimumMargin,
		&in.Competitor1, &in.Competitor2,
		&in.VATPercent, &in.SeasonalMultiplier,
	} {
		*p = amount(*p, limit)
	}
	in.Waste = percent(in.Waste)

	if len(form.Workers) == 0 {
		in.Workers = []Worker{Engine().DefaultWorker}
	} else {
		in.Workers = make([]Worker, len(form.Workers))
		for i, w := range form.Workers {
			in.Workers[i] = Worker{HourlyRate: amount(w.HourlyRate, limit), Hours: amount(w.Hours, limit)}
		}
	}

	if len(form.ProcessingPhases) > 0 {
		in.ProcessingPhases = make([]ProcessingPhase, len(form.ProcessingPhases))
		for i, p := range form.ProcessingPhases {
			p.WastePercentage = percent(p.WastePercentage)
			p.AddedWeight = amount(p.AddedWeight, limit)
			in.ProcessingPhases[i] = p
		}
	}

	return in
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// amount is nonNegative capped at limit.
func amount(v, limit float64) float64 {
	return math.Min(nonNegative(v), limit)
}

func percent(v float64) float64 {
	return math.Min(nonNegative(v), 100)
}
