package seed

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Simplici0/seacost/internal/calc"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	for i, pt := range calc.ProductTypes() {
		if err := ensureProductType(tx, pt, i+1, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureProductType(tx *sql.Tx, pt calc.ProductType, position int, stats *Stats) error {
	label := productTypeLabel(pt)

	var gotLabel string
	var gotPosition int
	err := tx.QueryRow(`SELECT label, position FROM product_types WHERE code = ?`, string(pt)).Scan(&gotLabel, &gotPosition)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.Exec(`
			INSERT INTO product_types (code, label, position)
			VALUES (?, ?, ?)
		`, string(pt), label, position); err != nil {
			return fmt.Errorf("insert product type %s: %w", pt, err)
		}
		stats.Inserts++
		return nil
	case err != nil:
		return fmt.Errorf("check product type %s: %w", pt, err)
	}

	if gotLabel == label && gotPosition == position {
		return nil
	}
	if _, err := tx.Exec(`UPDATE product_types SET label = ?, position = ? WHERE code = ?`, label, position, string(pt)); err != nil {
		return fmt.Errorf("update product type %s: %w", pt, err)
	}
	stats.Updates++
	return nil
}

func productTypeLabel(pt calc.ProductType) string {
	s := string(pt)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
