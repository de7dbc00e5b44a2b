package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var schemaSQL string

// TenantTables lists every table guarded by the tenant isolation policy.
var TenantTables = []string{
	"dining_tables",
	"tabs",
	"line_items",
	"products",
	"recipe_lines",
	"stock_levels",
	"stock_movements",
	"kitchen_tickets",
	"reservations",
	"loyalty_accounts",
	"loyalty_entries",
	"audit_log",
}

// EnsureSchema creates the tables and (re)installs the row-level security
// policies. Safe to run on every start.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	for _, table := range TenantTables {
		statements := []string{
			fmt.Sprintf("ALTER TABLE %s ENABLE ROW LEVEL SECURITY", table),
			fmt.Sprintf("ALTER TABLE %s FORCE ROW LEVEL SECURITY", table),
			fmt.Sprintf("DROP POLICY IF EXISTS tenant_isolation ON %s", table),
			fmt.Sprintf(`CREATE POLICY tenant_isolation ON %s
				USING (tenant_id = current_setting('app.tenant_id', true))
				WITH CHECK (tenant_id = current_setting('app.tenant_id', true))`, table),
		}
		for _, stmt := range statements {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("ensure schema `%s`: %w", stmt, err)
			}
		}
	}
	return nil
}
