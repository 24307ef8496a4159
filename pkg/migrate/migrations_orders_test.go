package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_orders_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no orders migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE TABLE IF NOT EXISTS order_products",
		"CREATE TABLE IF NOT EXISTS payments",
		"CREATE TABLE IF NOT EXISTS pending_orders",
		"CREATE UNIQUE INDEX IF NOT EXISTS uniq_order_variant",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_order_id",
		"CHECK (quantity > 0)",
		"DROP TABLE IF EXISTS orders",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestStockAndVoucherMigrationsGuardCounters(t *testing.T) {
	products, err := filepath.Glob(filepath.Join("migrations", "*_create_products_table.sql"))
	if err != nil || len(products) == 0 {
		t.Fatalf("no products migration file found: %v", err)
	}
	data, err := os.ReadFile(products[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	if !strings.Contains(string(data), "CHECK (stock >= 0)") {
		t.Errorf("variants table missing non-negative stock check")
	}

	vouchers, err := filepath.Glob(filepath.Join("migrations", "*_create_vouchers_table.sql"))
	if err != nil || len(vouchers) == 0 {
		t.Fatalf("no vouchers migration file found: %v", err)
	}
	data, err = os.ReadFile(vouchers[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	if !strings.Contains(string(data), "CHECK (used_count <= usage_limit)") {
		t.Errorf("vouchers table missing usage budget check")
	}
}
