// Package calc is the batch cost and pricing engine.
//
// Calculate is pure: it reads a FormData value, never mutates it, and returns a
// freshly allocated Results. Invalid or missing numbers are treated as zero so
// that a user always gets a figure back; Validate reports what looked wrong.
package calc

import "math"

// Calculate computes the full cost and pricing result set for one batch.
func Calculate(form FormData) Results {
	in := normalize(form)
	settings := Engine()

	netWeight := netWeight(in, settings.MinNetWeight, settings.MaxAmount)

	purchaseCost := in.PurchasePrice * in.Quantity
	var laborCost float64
	for _, w := range in.Workers {
		laborCost += w.HourlyRate * w.Hours
	}
	packagingCost := in.BoxCost + in.BagCost
	transportCost := in.FuelCost + in.Tolls + in.ParkingCost + in.DriverSalary
	additionalCosts := in.ElectricityCost + in.EquipmentCost + in.InsuranceCost +
		in.RentCost + in.CommunicationCost + in.OtherCosts

	totalCost := purchaseCost + laborCost + packagingCost + transportCost + additionalCosts
	vatAmount := totalCost * in.VATPercent / 100
	totalCostWithVAT := totalCost + vatAmount

	costPerKg := totalCostWithVAT / netWeight
	sellingPrice := costPerKg * (1 + in.ProfitMargin/100)
	profitPerKg := sellingPrice - costPerKg

	return finiteResults(Results{
		NetWeight: netWeight,

		PurchaseCost:    purchaseCost,
		LaborCost:       laborCost,
		PackagingCost:   packagingCost,
		TransportCost:   transportCost,
		AdditionalCosts: additionalCosts,

		TotalCost:        totalCost,
		TotalCostWithVAT: totalCostWithVAT,
		VATAmount:        vatAmount,

		CostPerKg:               costPerKg,
		SellingPrice:            sellingPrice,
		RecommendedSellingPrice: recommendedPrice(costPerKg, in.TargetSellingPrice, in.MinimumMargin),
		ProfitPerKg:             profitPerKg,
		ProfitMargin:            in.ProfitMargin,

		CostBreakdown: breakdown(totalCost, []CostItem{
			{Category: CategoryPurchase, Value: purchaseCost},
			{Category: CategoryLabor, Value: laborCost},
			{Category: CategoryPackaging, Value: packagingCost},
			{Category: CategoryTransport, Value: transportCost},
			{Category: CategoryAdditional, Value: additionalCosts},
		}),
		CompetitorAnalysis: competitors(sellingPrice, in.Competitor1, in.Competitor2, settings.MarketGapPercent),
		ProfitAnalysis: ProfitAnalysis{
			BreakEvenPrice:       costPerKg,
			MarginAtCurrentPrice: in.ProfitMargin,
			RecommendedMargin:    math.Max(in.MinimumMargin, in.ProfitMargin),
			TotalRevenue:         sellingPrice * netWeight,
			TotalProfit:          profitPerKg * netWeight,
		},
	})
}

// netWeight runs the weight chain: waste, each processing phase in order, then
// glazing. The running weight never exceeds ceiling.
func netWeight(in FormData, floor, ceiling float64) float64 {
	w := in.Quantity * (1 - in.Waste/100)
	for _, p := range in.ProcessingPhases {
		w -= w * p.WastePercentage / 100
		w = math.Min(w+w*p.AddedWeight/100, ceiling)
	}
	w = math.Min(w*(1+in.GlazingPercent/100), ceiling)
	if w < floor {
		return floor
	}
	return w
}

// recommendedPrice never implies a margin below minimumMargin.
func recommendedPrice(costPerKg, target, minimumMargin float64) float64 {
	floor := costPerKg * (1 + minimumMargin/100)
	if target > 0 && target >= floor {
		return target
	}
	return floor
}

func breakdown(total float64, items []CostItem) []CostItem {
	if total <= 0 {
		return items
	}
	for i := range items {
		items[i].Percentage = items[i].Value / total * 100
	}
	return items
}

func competitors(price, c1, c2, gapPercent float64) CompetitorAnalysis {
	a := CompetitorAnalysis{OurPrice: price, MarketPosition: PositionCompetitive}

	var supplied []float64
	if c1 > 0 {
		d := price - c1
		a.Competitor1Diff = &d
		supplied = append(supplied, c1)
	}
	if c2 > 0 {
		d := price - c2
		a.Competitor2Diff = &d
		supplied = append(supplied, c2)
	}
	if len(supplied) == 0 {
		return a
	}

	above, below := true, true
	for _, c := range supplied {
		if price <= c*(1+gapPercent/100) {
			above = false
		}
		if price >= c*(1-gapPercent/100) {
			below = false
		}
	}
	switch {
	case above:
		a.MarketPosition = PositionPremium
	case below:
		a.MarketPosition = PositionBudget
	}
	return a
}

// finiteResults zeroes any figure that is NaN or infinite. Capped inputs keep
// every figure finite; this holds the JSON contract if a cap is ever raised.
func finiteResults(r Results) Results {
	for _, p := range []*float64{
		&r.NetWeight, &r.PurchaseCost, &r.LaborCost, &r.PackagingCost, &r.TransportCost,
		&r.AdditionalCosts, &r.TotalCost, &r.TotalCostWithVAT, &r.VATAmount,
		&r.CostPerKg, &r.SellingPrice, &r.RecommendedSellingPrice, &r.ProfitPerKg, &r.ProfitMargin,
		&r.CompetitorAnalysis.OurPrice,
		&r.ProfitAnalysis.BreakEvenPrice, &r.ProfitAnalysis.MarginAtCurrentPrice,
		&r.ProfitAnalysis.RecommendedMargin, &r.ProfitAnalysis.TotalRevenue, &r.ProfitAnalysis.TotalProfit,
	} {
		*p = finite(*p)
	}
	for _, p := range []*float64{r.CompetitorAnalysis.Competitor1Diff, r.CompetitorAnalysis.Competitor2Diff} {
		if p != nil {
			*p = finite(*p)
		}
	}
	for i := range r.CostBreakdown {
		r.CostBreakdown[i].Value = finite(r.CostBreakdown[i].Value)
		r.CostBreakdown[i].Percentage = finite(r.CostBreakdown[i].Percentage)
	}
	return r
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
