// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/nbbang/dutchpay/internal/models"
)

// ErrNotFound is returned when the requested bill or member does not
// exist. Callers test it with errors.Is.
var ErrNotFound = errors.New("not found")

// BillInfo is a catalog row for listing bills without loading their
// documents.
type BillInfo struct {
	ID        string
	Title     string
	Status    models.BillStatus
	UpdatedAt int64
}

// Store defines the interface for bill and roster persistence.
// This abstraction allows swapping storage backends (SQLite,
// PostgreSQL, etc.) without changing the service layer.
//
// The store is a single-writer boundary: the engine mutates one
// in-memory Bill at a time and saves are last-writer-wins. Concurrent
// editors are a documented limitation, not something the store guards
// against.
type Store interface {
	// CreateBill persists a new bill. Missing ID, title, and CreatedAt
	// are populated by the store.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a bill by its ID.
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// SaveBill overwrites an existing bill and bumps UpdatedAt.
	SaveBill(ctx context.Context, bill *models.Bill) error

	// ListBills returns catalog rows for all bills, most recently
	// updated first.
	ListBills(ctx context.Context) ([]BillInfo, error)

	// DeleteBill removes a bill permanently.
	DeleteBill(ctx context.Context, billID string) error

	// GetMember looks up a roster profile by ID. The engine merges the
	// profile into a Participant read-only.
	GetMember(ctx context.Context, memberID string) (*models.MemberProfile, error)

	// PutMember inserts or updates a roster profile.
	PutMember(ctx context.Context, m *models.MemberProfile) error

	// Close releases any resources held by the store.
	Close() error
}
