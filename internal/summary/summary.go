// Package summary renders a stored batch as plain text.
package summary

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/seacost/internal/calc"
)

// Text renders form and its results. It never recalculates, so a stored
// snapshot prints exactly the figures that were saved.
func Text(form calc.FormData, r calc.Results) string {
	var b strings.Builder

	name := strings.TrimSpace(form.ProductName)
	if name == "" {
		name = "(unnamed batch)"
	}
	if form.ProductType != "" {
		fmt.Fprintf(&b, "%s (%s)\n", name, form.ProductType)
	} else {
		fmt.Fprintf(&b, "%s\n", name)
	}
	if form.BatchNumber != "" {
		fmt.Fprintf(&b, "Batch %s\n", form.BatchNumber)
	}
	if form.SupplierName != "" {
		fmt.Fprintf(&b, "Supplier %s\n", form.SupplierName)
	}
	b.WriteString("\n")

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	row := func(label, value, suffix string) {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", label, value, suffix)
	}
	row("Net weight", fixed(r.NetWeight, 3), "kg")
	row("Total cost", money(r.TotalCost), "")
	row("VAT", money(r.VATAmount), "")
	row("Total cost with VAT", money(r.TotalCostWithVAT), "")
	row("Cost per kg", money(r.CostPerKg), "/kg")
	row("Selling price", money(r.SellingPrice), "/kg")
	row("Recommended price", money(r.RecommendedSellingPrice), "/kg")
	row("Profit per kg", money(r.ProfitPerKg), "/kg")
	row("Margin", fixed(r.ProfitMargin, 1), "%")
	row("Total revenue", money(r.ProfitAnalysis.TotalRevenue), "")
	row("Total profit", money(r.ProfitAnalysis.TotalProfit), "")
	tw.Flush()

	b.WriteString("\nCost breakdown\n")
	tw = tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, item := range r.CostBreakdown {
		fmt.Fprintf(tw, "%s\t%s\t%s%%\t\n", item.Category, money(item.Value), fixed(item.Percentage, 1))
	}
	tw.Flush()

	ca := r.CompetitorAnalysis
	fmt.Fprintf(&b, "\nMarket position: %s\n", ca.MarketPosition)
	if ca.Competitor1Diff != nil {
		fmt.Fprintf(&b, "vs competitor 1: %s\n", signedMoney(*ca.Competitor1Diff))
	}
	if ca.Competitor2Diff != nil {
		fmt.Fprintf(&b, "vs competitor 2: %s\n", signedMoney(*ca.Competitor2Diff))
	}

	return b.String()
}

func money(v float64) string {
	return fixed(v, 2)
}

func signedMoney(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}
