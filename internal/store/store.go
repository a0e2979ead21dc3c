package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sales-notifier/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// TableNames carries the configurable names of the three watched tables.
type TableNames struct {
	LedgerSales string
	Sales       string
	Payments    string
}

// DefaultTables returns the standard table names.
func DefaultTables() TableNames {
	return TableNames{
		LedgerSales: "ledger_sales",
		Sales:       "sales",
		Payments:    "payments",
	}
}

type Store struct {
	db     *sqlx.DB
	tables TableNames
}

// NewStore creates a new database store
func NewStore(databaseURL string, tables TableNames) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db, tables: tables}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetCustomerByID retrieves a customer by ID. A missing customer is
// nil, not an error: rows referencing unknown customers are skipped.
func (s *Store) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.GetContext(ctx, &customer,
		"SELECT id, name, phone FROM customers WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// ListCustomersWithContact retrieves all customers that have a phone
// number on file, the only ones eligible for notifications.
func (s *Store) ListCustomersWithContact(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	err := s.db.SelectContext(ctx, &customers,
		"SELECT id, name, phone FROM customers WHERE phone IS NOT NULL AND phone <> '' ORDER BY id")
	return customers, err
}
