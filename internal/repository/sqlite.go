package repository

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"ecobazaarx/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLitePersister guarda el snapshot en un archivo SQLite
type SQLitePersister struct {
	DB     *sql.DB
	logger *slog.Logger
}

// NewSQLitePersister abre la base y aplica las migraciones pendientes
func NewSQLitePersister(ctx context.Context, dataSourceName string, logger *slog.Logger) (*SQLitePersister, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLitePersister{DB: db, logger: logger}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close cierra la base
func (s *SQLitePersister) Close() error {
	return s.DB.Close()
}

// Migrate ejecuta en orden los .sql embebidos que aún no se aplicaron
func (s *SQLitePersister) Migrate(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		version := strings.TrimPrefix(file, "migrations/")
		if s.isApplied(ctx, version) {
			continue
		}

		s.logger.Info("Applying migration", "file", version)
		content, err := migrationsFS.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", version, err)
		}

		tx, err := s.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %s: %w", version, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLitePersister) isApplied(ctx context.Context, version string) bool {
	var exists int
	err := s.DB.QueryRowContext(ctx, `SELECT 1 FROM schema_migrations WHERE version = ?`, version).Scan(&exists)
	return err == nil
}

// Save reescribe todas las tablas dentro de una transacción
func (s *SQLitePersister) Save(ctx context.Context, snap *models.Snapshot) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"users", "products", "orders", "sequences"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, u := range snap.Users {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, name, email, password_hash, role, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), string(u.Status), formatTime(u.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert user %d: %w", u.ID, err)
		}
	}

	for _, p := range snap.Products {
		trail, err := json.Marshal(p.AuditTrail)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO products (id, name, category, description, seller_id, seller_name, price, weight, material,
				shipping_mode, carbon_footprint, footprint_verified, eco_score, inventory, image, status, audit_trail,
				created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Category, p.Description, p.SellerID, p.SellerName, p.Price, p.Weight, p.Material,
			p.ShippingMode, p.CarbonFootprint, p.FootprintVerified, p.EcoScore, p.Inventory, p.Image, string(p.Status),
			string(trail), formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert product %d: %w", p.ID, err)
		}
	}

	for _, o := range snap.Orders {
		product, err := json.Marshal(o.Product)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO orders (id, checkout_id, product, buyer_user_id, buyer_name, buyer_email, quantity, total, footprint, date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.CheckoutID, string(product), o.Buyer.UserID, o.Buyer.Name, o.Buyer.Email, o.Quantity, o.Total,
			o.Footprint, formatTime(o.Date))
		if err != nil {
			return fmt.Errorf("insert order %d: %w", o.ID, err)
		}
	}

	seqs := map[string]int64{
		"user":    snap.Sequences.User,
		"product": snap.Sequences.Product,
		"order":   snap.Sequences.Order,
	}
	for name, value := range seqs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO sequences (name, value) VALUES (?, ?)`, name, value); err != nil {
			return fmt.Errorf("insert sequence %s: %w", name, err)
		}
	}

	return tx.Commit()
}

// Load lee el snapshot completo; devuelve nil si la base está vacía
func (s *SQLitePersister) Load(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{}

	if err := s.loadUsers(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadProducts(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadOrders(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadSequences(ctx, snap); err != nil {
		return nil, err
	}

	if snap.Empty() && snap.Sequences == (models.Sequences{}) {
		return nil, nil
	}
	return snap, nil
}

func (s *SQLitePersister) loadUsers(ctx context.Context, snap *models.Snapshot) error {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, email, password_hash, role, status, created_at FROM users ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			u       models.User
			role    string
			status  string
			created string
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &status, &created); err != nil {
			return err
		}
		u.Role = models.Role(role)
		u.Status = models.UserStatus(status)
		if u.CreatedAt, err = parseTime(created); err != nil {
			return err
		}
		snap.Users = append(snap.Users, u)
	}
	return rows.Err()
}

func (s *SQLitePersister) loadProducts(ctx context.Context, snap *models.Snapshot) error {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, COALESCE(category, ''), COALESCE(description, ''), COALESCE(seller_id, 0),
			COALESCE(seller_name, ''), price, weight, COALESCE(material, ''), COALESCE(shipping_mode, ''),
			carbon_footprint, footprint_verified, eco_score, inventory, COALESCE(image, ''), status, audit_trail,
			created_at, updated_at
		FROM products ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p                models.Product
			status           string
			trail            string
			created, updated string
		)
		err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Description, &p.SellerID, &p.SellerName, &p.Price,
			&p.Weight, &p.Material, &p.ShippingMode, &p.CarbonFootprint, &p.FootprintVerified, &p.EcoScore,
			&p.Inventory, &p.Image, &status, &trail, &created, &updated)
		if err != nil {
			return err
		}
		p.Status = models.ProductStatus(status)
		if err := json.Unmarshal([]byte(trail), &p.AuditTrail); err != nil {
			return fmt.Errorf("decode audit trail of product %d: %w", p.ID, err)
		}
		if p.CreatedAt, err = parseTime(created); err != nil {
			return err
		}
		if p.UpdatedAt, err = parseTime(updated); err != nil {
			return err
		}
		snap.Products = append(snap.Products, p)
	}
	return rows.Err()
}

func (s *SQLitePersister) loadOrders(ctx context.Context, snap *models.Snapshot) error {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, checkout_id, product, COALESCE(buyer_user_id, 0), buyer_name, buyer_email, quantity, total, footprint, date
		FROM orders ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			o       models.Order
			product string
			date    string
		)
		err := rows.Scan(&o.ID, &o.CheckoutID, &product, &o.Buyer.UserID, &o.Buyer.Name, &o.Buyer.Email,
			&o.Quantity, &o.Total, &o.Footprint, &date)
		if err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(product), &o.Product); err != nil {
			return fmt.Errorf("decode product snapshot of order %d: %w", o.ID, err)
		}
		if o.Date, err = parseTime(date); err != nil {
			return err
		}
		snap.Orders = append(snap.Orders, o)
	}
	return rows.Err()
}

func (s *SQLitePersister) loadSequences(ctx context.Context, snap *models.Snapshot) error {
	rows, err := s.DB.QueryContext(ctx, `SELECT name, value FROM sequences`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name  string
			value int64
		)
		if err := rows.Scan(&name, &value); err != nil {
			return err
		}
		switch name {
		case "user":
			snap.Sequences.User = value
		case "product":
			snap.Sequences.Product = value
		case "order":
			snap.Sequences.Order = value
		}
	}
	return rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", v, err)
	}
	return t, nil
}
