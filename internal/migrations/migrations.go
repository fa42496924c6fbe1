package migrations

import (
	"log"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema required for the POS backend.
func Run(db *sqlx.DB) {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS clients (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            phone TEXT,
            email TEXT,
            address TEXT,
            store_credit NUMERIC(12,2) NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS products (
            id SERIAL PRIMARY KEY,
            sku TEXT NOT NULL,
            name TEXT NOT NULL,
            category TEXT,
            unit_price NUMERIC(12,2) NOT NULL,
            quantity INTEGER NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ DEFAULT NOW(),
            updated_at TIMESTAMPTZ DEFAULT NOW(),
            UNIQUE(sku)
        );`,
		`CREATE TABLE IF NOT EXISTS sales (
            id SERIAL PRIMARY KEY,
            client_id INTEGER REFERENCES clients(id),
            user_id INTEGER REFERENCES users(id),
            sale_date DATE NOT NULL DEFAULT CURRENT_DATE,
            status TEXT NOT NULL DEFAULT 'completed',
            discount_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
            discount_type TEXT,
            notes TEXT,
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS sale_items (
			id SERIAL PRIMARY KEY,
			sale_id INTEGER NOT NULL REFERENCES sales(id),
			product_id INTEGER NOT NULL REFERENCES products(id),
			quantity INTEGER NOT NULL,
			unit_price NUMERIC(12,2) NOT NULL,
			total_price NUMERIC(12,2) NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS payments (
			id SERIAL PRIMARY KEY,
			sale_id INTEGER NOT NULL REFERENCES sales(id),
			method TEXT NOT NULL,
			amount NUMERIC(12,2) NOT NULL,
			payment_date DATE NOT NULL DEFAULT CURRENT_DATE,
			reference_number TEXT,
			notes TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS sale_returns (
			id SERIAL PRIMARY KEY,
			original_sale_id INTEGER NOT NULL REFERENCES sales(id),
			client_id INTEGER REFERENCES clients(id),
			return_date DATE NOT NULL DEFAULT CURRENT_DATE,
			status TEXT NOT NULL DEFAULT 'completed',
			credit_action TEXT NOT NULL,
			refunded_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS sale_return_items (
			id SERIAL PRIMARY KEY,
			sale_return_id INTEGER NOT NULL REFERENCES sale_returns(id),
			original_sale_item_id INTEGER NOT NULL REFERENCES sale_items(id),
			product_id INTEGER NOT NULL REFERENCES products(id),
			quantity_returned INTEGER NOT NULL,
			condition TEXT
		);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}
}
