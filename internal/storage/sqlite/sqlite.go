// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/nbbang/dutchpay/internal/models"
	"github.com/nbbang/dutchpay/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateBill persists a new bill to the database.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	bill.UpdatedAt = bill.CreatedAt
	if bill.Title == "" {
		bill.Title = generateTitle(bill.Participants)
	}

	doc, err := json.Marshal(bill)
	if err != nil {
		return fmt.Errorf("failed to marshal bill: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO bills (id, title, status, currency, document, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		bill.ID, bill.Title, string(bill.Status), bill.Settings.Currency, string(doc), bill.CreatedAt, bill.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}
	return nil
}

// GetBill retrieves a bill by ID. The JSON document is authoritative;
// the indexed columns exist only for listing.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		"SELECT document FROM bills WHERE id = ?",
		billID,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	bill := &models.Bill{}
	if err := json.Unmarshal([]byte(doc), bill); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bill %s: %w", billID, err)
	}
	return bill, nil
}

// SaveBill overwrites an existing bill's document and indexed columns.
func (s *SQLiteStore) SaveBill(ctx context.Context, bill *models.Bill) error {
	bill.UpdatedAt = time.Now().Unix()

	doc, err := json.Marshal(bill)
	if err != nil {
		return fmt.Errorf("failed to marshal bill: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE bills SET title = ?, status = ?, currency = ?, document = ?, updated_at = ? WHERE id = ?",
		bill.Title, string(bill.Status), bill.Settings.Currency, string(doc), bill.UpdatedAt, bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("bill %s: %w", bill.ID, storage.ErrNotFound)
	}
	return nil
}

// ListBills returns catalog rows, most recently updated first.
func (s *SQLiteStore) ListBills(ctx context.Context) ([]storage.BillInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, status, updated_at FROM bills ORDER BY updated_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var infos []storage.BillInfo
	for rows.Next() {
		var info storage.BillInfo
		var status string
		if err := rows.Scan(&info.ID, &info.Title, &status, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bill row: %w", err)
		}
		info.Status = models.BillStatus(status)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return infos, nil
}

// DeleteBill removes a bill permanently.
func (s *SQLiteStore) DeleteBill(ctx context.Context, billID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	return nil
}

// generateTitle creates an auto-generated title from participants.
func generateTitle(participants []models.Participant) string {
	names := make([]string, 0, len(participants))
	for i := range participants {
		names = append(names, participants[i].Name)
	}
	if len(names) == 0 {
		return fmt.Sprintf("Bill - %s", time.Now().Format("Jan 2, 2006"))
	}
	if len(names) <= 3 {
		return fmt.Sprintf("Split with %s", strings.Join(names, ", "))
	}
	return fmt.Sprintf("Split with %s and %d others",
		strings.Join(names[:2], ", "),
		len(names)-2,
	)
}
