package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"pdv/m/internal/database"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		open_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		login_method TEXT NOT NULL DEFAULT 'password',
		role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		last_signed_in DATETIME NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS customers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL,
		cpf TEXT NOT NULL UNIQUE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		description TEXT,
		price INTEGER NOT NULL CHECK (price >= 0),
		image_url TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS sales (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		customer_id INTEGER NOT NULL,
		total_amount INTEGER NOT NULL CHECK (total_amount >= 0),
		payment_method TEXT NOT NULL CHECK (payment_method IN ('pix', 'cartao', 'dinheiro')),
		installments INTEGER NOT NULL DEFAULT 1 CHECK (installments >= 1),
		amount_received INTEGER,
		change_returned INTEGER,
		status TEXT NOT NULL DEFAULT 'completed' CHECK (status IN ('pending', 'completed', 'cancelled')),
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS sale_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sale_id INTEGER NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
		product_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 1),
		unit_price INTEGER NOT NULL CHECK (unit_price >= 0),
		total_price INTEGER NOT NULL CHECK (total_price >= 0),
		created_at DATETIME NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_sales_user_created ON sales (user_id, created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items (sale_id);`,
	`CREATE INDEX IF NOT EXISTS idx_customers_user ON customers (user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_products_user ON products (user_id);`,
}

var postgresSchema = []string{
	`DO $$ BEGIN
		CREATE TYPE role AS ENUM ('user', 'admin');
	EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
	`DO $$ BEGIN
		CREATE TYPE payment_method AS ENUM ('pix', 'cartao', 'dinheiro');
	EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
	`DO $$ BEGIN
		CREATE TYPE sale_status AS ENUM ('pending', 'completed', 'cancelled');
	EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		open_id VARCHAR(64) NOT NULL UNIQUE,
		name TEXT NOT NULL,
		email VARCHAR(320) NOT NULL UNIQUE,
		password TEXT NOT NULL,
		login_method VARCHAR(64) NOT NULL DEFAULT 'password',
		role role NOT NULL DEFAULT 'user',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		last_signed_in TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS customers (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		name VARCHAR(255) NOT NULL,
		email VARCHAR(320) NOT NULL,
		phone VARCHAR(20) NOT NULL,
		cpf VARCHAR(11) NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		name VARCHAR(255) NOT NULL,
		description TEXT,
		price BIGINT NOT NULL CHECK (price >= 0),
		image_url TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS sales (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		customer_id BIGINT NOT NULL,
		total_amount BIGINT NOT NULL CHECK (total_amount >= 0),
		payment_method payment_method NOT NULL,
		installments INTEGER NOT NULL DEFAULT 1 CHECK (installments >= 1),
		amount_received BIGINT,
		change_returned BIGINT,
		status sale_status NOT NULL DEFAULT 'completed',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS sale_items (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		sale_id BIGINT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
		product_id BIGINT NOT NULL,
		quantity BIGINT NOT NULL CHECK (quantity >= 1),
		unit_price BIGINT NOT NULL CHECK (unit_price >= 0),
		total_price BIGINT NOT NULL CHECK (total_price >= 0),
		created_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_sales_user_created ON sales (user_id, created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items (sale_id);`,
	`CREATE INDEX IF NOT EXISTS idx_customers_user ON customers (user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_products_user ON products (user_id);`,
}

// Run creates the database schema required for the PDV backend.
func Run(db *sqlx.DB) error {
	schema := sqliteSchema
	if db.DriverName() == database.DriverPostgres {
		schema = postgresSchema
	}

	for i, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
