package seed

import (
	"encoding/csv"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

// LoadProducts ingests the CSV into the products table, ignoring duplicates.
// Expected columns: sku, name, category, unit_price, quantity.
func LoadProducts(db *sqlx.DB, csvPath string) {
	file, err := os.Open(csvPath)
	if err != nil {
		log.Printf("unable to load product catalog %s: %v", csvPath, err)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Printf("unable to read product header: %v", err)
		return
	}

	tx, err := db.Beginx()
	if err != nil {
		log.Printf("unable to start product transaction: %v", err)
		return
	}
	stmt, err := tx.Preparex(`INSERT INTO products (sku, name, category, unit_price, quantity) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (sku) DO NOTHING`)
	if err != nil {
		log.Printf("unable to prepare product insert: %v", err)
		_ = tx.Rollback()
		return
	}
	defer stmt.Close()

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("unable to read product row: %v", err)
			continue
		}
		if len(record) < 4 {
			continue
		}
		sku := strings.TrimSpace(record[0])
		name := strings.TrimSpace(record[1])
		category := strings.TrimSpace(record[2])
		unitPrice := strings.TrimSpace(record[3])

		quantity := 0
		if len(record) > 4 {
			quantity, _ = strconv.Atoi(strings.TrimSpace(record[4]))
		}

		if sku == "" || name == "" {
			continue
		}

		if _, err := stmt.Exec(sku, name, category, unitPrice, quantity); err != nil {
			log.Printf("unable to insert product %s: %v", sku, err)
		} else {
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("unable to commit product seed: %v", err)
	} else {
		log.Printf("seeded product catalog with %d rows", rows)
	}
}
