package db

import (
	"context"
	"fmt"

	"github.com/Simplici0/seacost/internal/calc"
)

// ProductTypeRow is one entry of the product type reference table.
type ProductTypeRow struct {
	Code     calc.ProductType `json:"code"`
	Label    string           `json:"label"`
	Position int              `json:"position"`
}

// ListProductTypes returns the reference table in display order.
func (s *Store) ListProductTypes(ctx context.Context) ([]ProductTypeRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, label, position FROM product_types ORDER BY position, code`)
	if err != nil {
		return nil, fmt.Errorf("query product types: %w", err)
	}
	defer rows.Close()

	out := []ProductTypeRow{}
	for rows.Next() {
		var r ProductTypeRow
		var code string
		if err := rows.Scan(&code, &r.Label, &r.Position); err != nil {
			return nil, fmt.Errorf("scan product type: %w", err)
		}
		r.Code = calc.ProductType(code)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product types: %w", err)
	}
	return out, nil
}
