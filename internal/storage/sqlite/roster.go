package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/nbbang/dutchpay/internal/models"
	"github.com/nbbang/dutchpay/internal/storage"
)

// GetMember looks up a roster profile by ID.
func (s *SQLiteStore) GetMember(ctx context.Context, memberID string) (*models.MemberProfile, error) {
	m := &models.MemberProfile{}
	var bank, account, qr sql.NullString

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, bank_name, account_number, qr_ref FROM members WHERE id = ?",
		memberID,
	).Scan(&m.ID, &m.Name, &bank, &account, &qr)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("member %s: %w", memberID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	m.Profile.BankName = bank.String
	m.Profile.AccountNumber = account.String
	m.Profile.QRRef = qr.String
	return m, nil
}

// PutMember inserts or updates a roster profile.
func (s *SQLiteStore) PutMember(ctx context.Context, m *models.MemberProfile) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO members (id, name, bank_name, account_number, qr_ref)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   bank_name = excluded.bank_name,
		   account_number = excluded.account_number,
		   qr_ref = excluded.qr_ref`,
		m.ID, m.Name, nullable(m.Profile.BankName), nullable(m.Profile.AccountNumber), nullable(m.Profile.QRRef),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert member: %w", err)
	}
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
