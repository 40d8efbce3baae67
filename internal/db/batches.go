package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/seacost/internal/calc"
)

// ErrBatchNotFound is returned when no snapshot has the requested id.
var ErrBatchNotFound = errors.New("batch not found")

// createdAtLayout sorts lexically in time order.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

// Batch is the listing view of a stored snapshot.
type Batch struct {
	ID               string           `json:"id"`
	CreatedAt        time.Time        `json:"createdAt"`
	ProductName      string           `json:"productName"`
	ProductType      calc.ProductType `json:"productType"`
	BatchNumber      string           `json:"batchNumber"`
	SupplierName     string           `json:"supplierName"`
	NetWeight        float64          `json:"netWeight"`
	TotalCostWithVAT float64          `json:"totalCostWithVat"`
	CostPerKg        float64          `json:"costPerKg"`
	SellingPrice     float64          `json:"sellingPrice"`
}

// Snapshot is a stored batch with the form and results exactly as saved.
type Snapshot struct {
	Batch
	Form    json.RawMessage `json:"form"`
	Results json.RawMessage `json:"results"`
}

// SaveBatch stores form and its results under a new id.
func (s *Store) SaveBatch(ctx context.Context, form calc.FormData, results calc.Results) (Batch, error) {
	formJSON, err := json.Marshal(form)
	if err != nil {
		return Batch{}, fmt.Errorf("encode batch form: %w", err)
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return Batch{}, fmt.Errorf("encode batch results: %w", err)
	}

	b := Batch{
		ID:               uuid.NewString(),
		CreatedAt:        time.Now().UTC(),
		ProductName:      strings.TrimSpace(form.ProductName),
		ProductType:      form.ProductType,
		BatchNumber:      strings.TrimSpace(form.BatchNumber),
		SupplierName:     strings.TrimSpace(form.SupplierName),
		NetWeight:        results.NetWeight,
		TotalCostWithVAT: results.TotalCostWithVAT,
		CostPerKg:        results.CostPerKg,
		SellingPrice:     results.SellingPrice,
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO batches (
			id, created_at, product_name, product_type, batch_number, supplier_name,
			net_weight, total_cost_with_vat, cost_per_kg, selling_price,
			form_json, results_json
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		b.ID, b.CreatedAt.Format(createdAtLayout), b.ProductName, string(b.ProductType), b.BatchNumber, b.SupplierName,
		b.NetWeight, b.TotalCostWithVAT, b.CostPerKg, b.SellingPrice,
		string(formJSON), string(resultsJSON),
	); err != nil {
		return Batch{}, fmt.Errorf("insert batch: %w", err)
	}
	return b, nil
}

const batchColumns = `id, created_at, product_name, product_type, batch_number, supplier_name,
	net_weight, total_cost_with_vat, cost_per_kg, selling_price`

// ListBatches returns stored batches newest first. A non-empty query keeps
// batches whose product name, batch number or supplier contains it, ignoring case.
func (s *Store) ListBatches(ctx context.Context, query string) ([]Batch, error) {
	q := `SELECT ` + batchColumns + ` FROM batches`
	var args []any
	if query = strings.TrimSpace(query); query != "" {
		pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
		q += ` WHERE lower(product_name) LIKE ? ESCAPE '\'
			OR lower(batch_number) LIKE ? ESCAPE '\'
			OR lower(supplier_name) LIKE ? ESCAPE '\'`
		args = append(args, pattern, pattern, pattern)
	}
	q += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	batches := []Batch{}
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return batches, nil
}

// GetBatch returns the snapshot stored under id.
func (s *Store) GetBatch(ctx context.Context, id string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+batchColumns+`, form_json, results_json FROM batches WHERE id = ?`, id)

	var snap Snapshot
	var createdAt, productType, formJSON, resultsJSON string
	err := row.Scan(
		&snap.ID, &createdAt, &snap.ProductName, &productType, &snap.BatchNumber, &snap.SupplierName,
		&snap.NetWeight, &snap.TotalCostWithVAT, &snap.CostPerKg, &snap.SellingPrice,
		&formJSON, &resultsJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrBatchNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("query batch %s: %w", id, err)
	}

	if snap.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
		return Snapshot{}, fmt.Errorf("parse batch created_at: %w", err)
	}
	snap.ProductType = calc.ProductType(productType)
	snap.Form = json.RawMessage(formJSON)
	snap.Results = json.RawMessage(resultsJSON)
	return snap, nil
}

// DecodeSnapshot unmarshals the stored form and results.
func DecodeSnapshot(snap Snapshot) (calc.FormData, calc.Results, error) {
	var form calc.FormData
	if err := json.Unmarshal(snap.Form, &form); err != nil {
		return calc.FormData{}, calc.Results{}, fmt.Errorf("decode stored form: %w", err)
	}
	var results calc.Results
	if err := json.Unmarshal(snap.Results, &results); err != nil {
		return calc.FormData{}, calc.Results{}, fmt.Errorf("decode stored results: %w", err)
	}
	return form, results, nil
}

// DeleteBatch removes the snapshot stored under id.
func (s *Store) DeleteBatch(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete batch %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete batch %s: %w", id, err)
	}
	if n == 0 {
		return ErrBatchNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (Batch, error) {
	var b Batch
	var createdAt, productType string
	if err := row.Scan(
		&b.ID, &createdAt, &b.ProductName, &productType, &b.BatchNumber, &b.SupplierName,
		&b.NetWeight, &b.TotalCostWithVAT, &b.CostPerKg, &b.SellingPrice,
	); err != nil {
		return Batch{}, fmt.Errorf("scan batch: %w", err)
	}
	t, err := time.Parse(createdAtLayout, createdAt)
	if err != nil {
		return Batch{}, fmt.Errorf("parse batch created_at: %w", err)
	}
	b.CreatedAt = t
	b.ProductType = calc.ProductType(productType)
	return b, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
