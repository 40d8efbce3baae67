package seed

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/Simplici0/seacost/internal/calc"
	"github.com/Simplici0/seacost/internal/db"
	"github.com/Simplici0/seacost/internal/migrations"
)

func openSeedDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "seed-test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return database
}

func TestRunIsIdempotent(t *testing.T) {
	database := openSeedDB(t)
	want := len(calc.ProductTypes())

	for i := 0; i < 10; i++ {
		stats, err := Run(database)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != want {
				t.Fatalf("expected %d inserts in first run, got %d", want, stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 || stats.Updates != 0 {
			t.Fatalf("expected no changes in iteration %d, got %+v", i, stats)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM product_types`, want)

	rows, err := db.NewStore(database).ListProductTypes(context.Background())
	if err != nil {
		t.Fatalf("list product types: %v", err)
	}
	for i, pt := range calc.ProductTypes() {
		if rows[i].Code != pt || rows[i].Position != i+1 {
			t.Fatalf("row %d = %+v, want code %s", i, rows[i], pt)
		}
	}
	if rows[0].Label != "Fish" {
		t.Fatalf("expected label Fish, got %q", rows[0].Label)
	}
}

func TestRunRepairsEditedRows(t *testing.T) {
	database := openSeedDB(t)

	if _, err := Run(database); err != nil {
		t.Fatalf("run seed: %v", err)
	}
	if _, err := database.Exec(`UPDATE product_types SET label = 'Pescado', position = 99 WHERE code = 'fish'`); err != nil {
		t.Fatalf("edit product type: %v", err)
	}

	stats, err := Run(database)
	if err != nil {
		t.Fatalf("run seed: %v", err)
	}
	if stats.Updates != 1 || stats.Inserts != 0 {
		t.Fatalf("expected a single update, got %+v", stats)
	}
	assertCount(t, database, `SELECT COUNT(*) FROM product_types WHERE code = 'fish' AND label = 'Fish' AND position = 1`, 1)
}

func assertCount(t *testing.T, database *sql.DB, query string, expected int) {
	t.Helper()

	var count int
	if err := database.QueryRow(query).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
