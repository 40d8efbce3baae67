package calc

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestDecodeForm_ReadsWellFormedBody(t *testing.T) {
	body := `{
		"productName": "Octopus",
		"productType": "cephalopods",
		"purchasePrice": 5,
		"quantity": 10,
		"waste": 20,
		"glazingPercent": 15,
		"workers": [{"hourlyRate": 4.5, "hours": 1}],
		"vatPercent": 24,
		"profitMargin": 20,
		"processingPhases": [{"name": "cleaning", "description": "gut and rinse", "wastePercentage": 20, "addedWeight": 0}],
		"certifications": ["MSC", "ASC"]
	}`

	form, err := DecodeForm(strings.NewReader(body))
	if err != nil {
		t.Fatalf("DecodeForm: %v", err)
	}

	if form.ProductName != "Octopus" || form.ProductType != ProductCephalopods {
		t.Fatalf("identity = %q/%q", form.ProductName, form.ProductType)
	}
	if form.PurchasePrice != 5 || form.Quantity != 10 || form.Waste != 20 || form.GlazingPercent != 15 {
		t.Fatalf("quantity chain = %+v", form)
	}
	if !reflect.DeepEqual(form.Workers, []Worker{{HourlyRate: 4.5, Hours: 1}}) {
		t.Fatalf("workers = %+v", form.Workers)
	}
	want := []ProcessingPhase{{Name: "cleaning", Description: "gut and rinse", WastePercentage: 20}}
	if !reflect.DeepEqual(form.ProcessingPhases, want) {
		t.Fatalf("phases = %+v, want %+v", form.ProcessingPhases, want)
	}
	if !reflect.DeepEqual(form.Certifications, []string{"MSC", "ASC"}) {
		t.Fatalf("certifications = %v", form.Certifications)
	}
}

func TestDecodeForm_DefaultsBadShapesToZero(t *testing.T) {
	body := `{
		"productName": 42,
		"purchasePrice": "5,5",
		"quantity": " 12.5 ",
		"waste": "lots",
		"glazingPercent": null,
		"vatPercent": true,
		"boxCost": {"value": 3},
		"fuelCost": "NaN",
		"workers": [{"hourlyRate": "7", "hours": "x"}, "nobody", 3],
		"processingPhases": {"name": "not a list"},
		"certifications": ["MSC", "MSC", " ", 7],
		"somethingElse": 99
	}`

	form, err := DecodeForm(strings.NewReader(body))
	if err != nil {
		t.Fatalf("DecodeForm: %v", err)
	}

	if form.ProductName != "42" {
		t.Fatalf("productName = %q, want %q", form.ProductName, "42")
	}
	if form.PurchasePrice != 5.5 {
		t.Fatalf("purchasePrice = %v, want 5.5", form.PurchasePrice)
	}
	if form.Quantity != 12.5 {
		t.Fatalf("quantity = %v, want 12.5", form.Quantity)
	}
	for name, v := range map[string]float64{
		"waste":          form.Waste,
		"glazingPercent": form.GlazingPercent,
		"vatPercent":     form.VATPercent,
		"boxCost":        form.BoxCost,
		"fuelCost":       form.FuelCost,
	} {
		if v != 0 {
			t.Fatalf("%s = %v, want 0", name, v)
		}
	}
	if !reflect.DeepEqual(form.Workers, []Worker{{HourlyRate: 7}}) {
		t.Fatalf("workers = %+v", form.Workers)
	}
	if form.ProcessingPhases != nil {
		t.Fatalf("processingPhases = %+v, want nil", form.ProcessingPhases)
	}
	if !reflect.DeepEqual(form.Certifications, []string{"MSC", "7"}) {
		t.Fatalf("certifications = %v", form.Certifications)
	}
}

func TestDecodeForm_RejectsNonObjects(t *testing.T) {
	for _, body := range []string{`[1,2]`, `"form"`, `not json`, ``} {
		if _, err := DecodeForm(strings.NewReader(body)); err == nil {
			t.Fatalf("DecodeForm(%q): expected error", body)
		}
	}

	_, err := DecodeForm(strings.NewReader(`null`))
	if !errors.Is(err, ErrNotObject) {
		t.Fatalf("DecodeForm(null) err = %v, want ErrNotObject", err)
	}
}

func TestDecodeForm_FeedsCalculate(t *testing.T) {
	form, err := DecodeForm(strings.NewReader(`{"purchasePrice":"5","quantity":"10","waste":"20","glazingPercent":"15","vatPercent":"24","profitMargin":"20"}`))
	if err != nil {
		t.Fatalf("DecodeForm: %v", err)
	}

	r := Calculate(form)

	nearlyEqual(t, "netWeight", r.NetWeight, 9.2)
	nearlyEqual(t, "totalCost", r.TotalCost, 54.5)
}

func TestToNumber_CommaIsDecimalSeparatorOnly(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"5,5", 5.5, true},
		{"1,25", 1.25, true},
		{"12,3456", 12.3456, true},
		{" 7 ", 7, true},
		{"1.234", 1.234, true},
		{"1,234", 0, false},
		{"12,500", 0, false},
		{"1.234,56", 0, false},
		{"1,2,3", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := toNumber(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("toNumber(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			nearlyEqual(t, tt.in, got, tt.want)
		})
	}
}

func TestDecodeForm_AmbiguousThousandsSeparatorIsFlagged(t *testing.T) {
	form, err := DecodeForm(strings.NewReader(`{"productName":"Hake","purchasePrice":"1,234","quantity":"2,5"}`))
	if err != nil {
		t.Fatalf("DecodeForm: %v", err)
	}

	nearlyEqual(t, "purchasePrice", form.PurchasePrice, 0)
	nearlyEqual(t, "quantity", form.Quantity, 2.5)

	v := Validate(form)
	if v.Valid || len(v.Errors) != 1 || v.Errors[0] != "purchasePrice" {
		t.Fatalf("validation = %+v, want purchasePrice flagged", v)
	}
}
