// Command seed loads development fixtures: one user per role, a small
// product catalog, sample transactions, and support content. Safe to
// rerun; every insert is idempotent.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		log.Fatal("PG_DSN must be set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	fmt.Println("→ Seeding users...")
	if err := seedUsers(ctx, pool); err != nil {
		log.Fatalf("seed users: %v", err)
	}
	fmt.Println("→ Seeding products...")
	if err := seedProducts(ctx, pool); err != nil {
		log.Fatalf("seed products: %v", err)
	}
	fmt.Println("→ Seeding transactions...")
	if err := seedTransactions(ctx, pool); err != nil {
		log.Fatalf("seed transactions: %v", err)
	}
	fmt.Println("→ Seeding support content...")
	if err := seedSupport(ctx, pool); err != nil {
		log.Fatalf("seed support: %v", err)
	}

	fmt.Println("✓ Seed complete at", time.Now().Format(time.RFC3339))
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool) error {
	users := []struct {
		name     string
		email    string
		password string
		role     string
	}{
		{"Avery Admin", "admin@vantage.local", "admin123", "admin"},
		{"Frankie Finance", "finance@vantage.local", "finance123", "finance"},
		{"Indy Inventory", "inventory@vantage.local", "inventory123", "inventory"},
		{"Uma User", "user@vantage.local", "user1234", "user"},
	}

	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		_, err = pool.Exec(ctx, `
			INSERT INTO users (name, email, password_hash, role, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, TRUE, NOW(), NOW())
			ON CONFLICT (email) DO NOTHING`, u.name, u.email, string(hash), u.role)
		if err != nil {
			return err
		}
	}
	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool) error {
	products := []struct {
		sku      string
		name     string
		category string
		supplier string
		location string
		qty      int
		cost     float64
		reorder  int
	}{
		{"LPT-001", "14in Business Laptop", "Hardware", "Northwind Supply", "A1", 42, 899.00, 15},
		{"MON-002", "27in Monitor", "Hardware", "Northwind Supply", "A2", 8, 249.50, 12},
		{"KEY-003", "Mechanical Keyboard", "Accessories", "Keystone Traders", "B1", 120, 79.99, 30},
		{"MSE-004", "Wireless Mouse", "Accessories", "Keystone Traders", "B1", 18, 24.99, 25},
		{"DCK-005", "USB-C Dock", "Accessories", "Harbor Imports", "B3", 4, 159.00, 10},
		{"CHR-006", "Ergonomic Chair", "Furniture", "Atlas Office", "C2", 31, 320.00, 8},
		{"HDS-007", "Noise-Cancelling Headset", "Audio", "Harbor Imports", "A4", 64, 129.00, 20},
		{"CAM-008", "1080p Webcam", "Audio", "Harbor Imports", "A4", 11, 59.00, 15},
	}

	for _, p := range products {
		_, err := pool.Exec(ctx, `
			INSERT INTO products
				(sku, name, category, supplier, location, quantity_on_hand, unit_cost, reorder_level, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, NOW(), NOW())
			ON CONFLICT (sku) DO NOTHING`,
			p.sku, p.name, p.category, p.supplier, p.location, p.qty, p.cost, p.reorder)
		if err != nil {
			return err
		}
	}
	return nil
}

func seedTransactions(ctx context.Context, pool *pgxpool.Pool) error {
	var createdBy int64
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", "finance@vantage.local").Scan(&createdBy)
	if err != nil {
		return err
	}

	transactions := []struct {
		vendor   string
		amount   float64
		status   string
		category string
		invoice  string
		method   string
	}{
		{"Acme Corp", 12500.00, "completed", "Revenue", "INV-2026-001", "bank_transfer"},
		{"Globex Ltd", 7300.00, "pending", "Revenue", "INV-2026-002", "bank_transfer"},
		{"Northwind Supply", 4200.00, "completed", "Expense", "INV-2026-003", "credit"},
		{"Atlas Office", 960.00, "completed", "Expense", "INV-2026-004", "check"},
		{"City Bank", 25000.00, "completed", "Asset", "INV-2026-005", "bank_transfer"},
		{"City Bank", 8000.00, "completed", "Liability", "INV-2026-006", "bank_transfer"},
	}

	for _, t := range transactions {
		_, err := pool.Exec(ctx, `
			INSERT INTO transactions
				(date, vendor, amount, status, category, invoice_number, payment_method, created_by, created_at, updated_at)
			VALUES (NOW(), $1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
			ON CONFLICT (invoice_number) WHERE invoice_number IS NOT NULL DO NOTHING`,
			t.vendor, t.amount, t.status, t.category, t.invoice, t.method, createdBy)
		if err != nil {
			return err
		}
	}
	return nil
}

func seedSupport(ctx context.Context, pool *pgxpool.Pool) error {
	var authorID int64
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", "admin@vantage.local").Scan(&authorID)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO announcements (title, content, author_id, importance, target_roles, published, created_at)
		SELECT 'Welcome to Vantage', 'The business dashboard is live. Report issues through the feedback form.',
			$1, 'high', ARRAY['user', 'admin', 'finance', 'inventory'], TRUE, NOW()
		WHERE NOT EXISTS (SELECT 1 FROM announcements WHERE title = 'Welcome to Vantage')`, authorID)
	if err != nil {
		return err
	}

	topics := []struct {
		title    string
		content  string
		category string
		order    int
	}{
		{"Getting started", "Sign in, then use the sidebar to reach your dashboards.", "basics", 1},
		{"Reading stock levels", "Products at or below their reorder level appear in the low-stock report.", "inventory", 2},
		{"Recording a transaction", "Finance users can record revenue and expenses from the finance dashboard.", "finance", 3},
	}
	for _, t := range topics {
		_, err := pool.Exec(ctx, `
			INSERT INTO help_topics (title, content, category, published, sort_order, created_at)
			SELECT $1, $2, $3, TRUE, $4, NOW()
			WHERE NOT EXISTS (SELECT 1 FROM help_topics WHERE title = $1)`,
			t.title, t.content, t.category, t.order)
		if err != nil {
			return err
		}
	}

	faqs := []struct {
		question string
		answer   string
		category string
		order    int
	}{
		{"How do I request a new role?", "Open your profile and submit a role request. An administrator reviews it.", "account", 1},
		{"Why can't I see the finance dashboard?", "Finance dashboards require the finance or admin role.", "account", 2},
		{"What does the demand forecast show?", "A 30-day projection of stock depletion based on recent restocking pace.", "inventory", 3},
	}
	for _, f := range faqs {
		_, err := pool.Exec(ctx, `
			INSERT INTO faqs (question, answer, category, published, sort_order, created_at)
			SELECT $1, $2, $3, TRUE, $4, NOW()
			WHERE NOT EXISTS (SELECT 1 FROM faqs WHERE question = $1)`,
			f.question, f.answer, f.category, f.order)
		if err != nil {
			return err
		}
	}
	return nil
}
