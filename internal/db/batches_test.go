package db

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Simplici0/seacost/internal/calc"
	"github.com/Simplici0/seacost/internal/migrations"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	database, err := Open(filepath.Join(t.TempDir(), "batches-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return NewStore(database)
}

func form(name, batch, supplier string) calc.FormData {
	return calc.FormData{
		ProductName:   name,
		ProductType:   calc.ProductFish,
		BatchNumber:   batch,
		SupplierName:  supplier,
		PurchasePrice: 5,
		Quantity:      10,
		Waste:         20,
		VATPercent:    24,
		ProfitMargin:  20,
		Competitor1:   7,
	}
}

func TestSaveAndGetBatch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	f := form("Sea bream", "L-001", "Lonja Norte")
	r := calc.Calculate(f)

	saved, err := store.SaveBatch(ctx, f, r)
	if err != nil {
		t.Fatalf("save batch: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("expected generated id")
	}

	snap, err := store.GetBatch(ctx, saved.ID)
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if snap.ProductName != "Sea bream" || snap.BatchNumber != "L-001" || snap.SupplierName != "Lonja Norte" {
		t.Fatalf("unexpected batch header: %+v", snap.Batch)
	}
	if snap.ProductType != calc.ProductFish {
		t.Fatalf("product type = %q", snap.ProductType)
	}
	if !snap.CreatedAt.Equal(saved.CreatedAt) {
		t.Fatalf("createdAt = %v, want %v", snap.CreatedAt, saved.CreatedAt)
	}
	if snap.CostPerKg != r.CostPerKg {
		t.Fatalf("costPerKg = %v, want %v", snap.CostPerKg, r.CostPerKg)
	}

	wantResults, _ := json.Marshal(r)
	if string(snap.Results) != string(wantResults) {
		t.Fatalf("stored results differ:\n got %s\nwant %s", snap.Results, wantResults)
	}

	gotForm, gotResults, err := DecodeSnapshot(snap)
	if err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if gotForm.ProductName != f.ProductName || gotForm.Quantity != f.Quantity {
		t.Fatalf("decoded form = %+v", gotForm)
	}
	if !reflect.DeepEqual(gotResults, r) {
		t.Fatalf("decoded results differ from saved")
	}
}

func TestGetBatchNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetBatch(context.Background(), "missing")
	if !errors.Is(err, ErrBatchNotFound) {
		t.Fatalf("expected ErrBatchNotFound, got %v", err)
	}
}

func TestListBatchesNewestFirstAndSearch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var ids []string
	for _, f := range []calc.FormData{
		form("Sea bream", "L-001", "Lonja Norte"),
		form("Octopus", "PULPO_7", "Galicia Mar"),
		form("Tiger prawn", "100%-fresh", "Lonja Sur"),
	} {
		b, err := store.SaveBatch(ctx, f, calc.Calculate(f))
		if err != nil {
			t.Fatalf("save batch: %v", err)
		}
		ids = append(ids, b.ID)
	}

	all, err := store.ListBatches(ctx, "")
	if err != nil {
		t.Fatalf("list batches: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(all))
	}
	for i, b := range all {
		if want := ids[len(ids)-1-i]; b.ID != want {
			t.Fatalf("position %d: id %s, want %s (newest first)", i, b.ID, want)
		}
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"lonja", []string{"Tiger prawn", "Sea bream"}},
		{"OCTO", []string{"Octopus"}},
		{"l-001", []string{"Sea bream"}},
		{"%", []string{"Tiger prawn"}},
		{"_", []string{"Octopus"}},
		{"salmon", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := store.ListBatches(ctx, tt.query)
			if err != nil {
				t.Fatalf("list batches: %v", err)
			}
			var names []string
			for _, b := range got {
				names = append(names, b.ProductName)
			}
			if !reflect.DeepEqual(names, tt.want) {
				t.Fatalf("query %q: got %v, want %v", tt.query, names, tt.want)
			}
		})
	}
}

func TestDeleteBatch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	f := form("Sea bream", "L-001", "Lonja Norte")
	b, err := store.SaveBatch(ctx, f, calc.Calculate(f))
	if err != nil {
		t.Fatalf("save batch: %v", err)
	}

	if err := store.DeleteBatch(ctx, b.ID); err != nil {
		t.Fatalf("delete batch: %v", err)
	}
	if _, err := store.GetBatch(ctx, b.ID); !errors.Is(err, ErrBatchNotFound) {
		t.Fatalf("expected deleted batch to be gone, got %v", err)
	}
	if err := store.DeleteBatch(ctx, b.ID); !errors.Is(err, ErrBatchNotFound) {
		t.Fatalf("expected ErrBatchNotFound on second delete, got %v", err)
	}
}

func TestListProductTypesEmptyBeforeSeed(t *testing.T) {
	store := openTestStore(t)

	rows, err := store.ListProductTypes(context.Background())
	if err != nil {
		t.Fatalf("list product types: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty table, got %d rows", len(rows))
	}
}
