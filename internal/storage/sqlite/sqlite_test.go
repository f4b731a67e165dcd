package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nbbang/dutchpay/internal/models"
	"github.com/nbbang/dutchpay/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "dutchpay-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testBill(title string, names ...string) *models.Bill {
	b := &models.Bill{
		Title:    title,
		Settings: models.DefaultSettings(),
		Status:   models.StatusDraft,
	}
	for i, name := range names {
		b.Participants = append(b.Participants, models.Participant{
			ID:       name,
			Name:     name,
			Position: i,
			IsPayer:  i == 0,
		})
	}
	return b
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateBill generates ID and title", func(t *testing.T) {
		bill := testBill("", "Ara", "Bom")

		if err := store.CreateBill(ctx, bill); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		if bill.ID == "" {
			t.Error("Expected bill ID to be generated")
		}
		if bill.Title == "" {
			t.Error("Expected bill title to be generated")
		}
		if bill.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetBill round-trips the document", func(t *testing.T) {
		original := testBill("Friday dinner", "Ara", "Bom")
		original.Items = []models.Item{
			{
				ID:     "dinner",
				Name:   "Dinner",
				Type:   models.ItemNormal,
				Method: models.SplitEqual,
				Fee:    decimal.NewFromInt(49000),
				Shares: []models.Share{
					{ParticipantID: "Ara", Include: true, Amount: decimal.NewFromInt(24500)},
					{ParticipantID: "Bom", Include: true, Amount: decimal.NewFromInt(24500), Locked: true},
				},
			},
			{
				ID:   "discount",
				Name: "Coupon",
				Type: models.ItemSpecial,
				Fee:  decimal.NewFromInt(-6500),
				Shares: []models.Share{
					{ParticipantID: "Ara"},
					{ParticipantID: "Bom"},
				},
			},
		}

		if err := store.CreateBill(ctx, original); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		retrieved, err := store.GetBill(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}

		if retrieved.Title != original.Title {
			t.Errorf("Title mismatch: got %s, want %s", retrieved.Title, original.Title)
		}
		if retrieved.Settings.Currency != "KRW" {
			t.Errorf("Currency mismatch: got %s, want KRW", retrieved.Settings.Currency)
		}
		if len(retrieved.Items) != 2 {
			t.Fatalf("Items count mismatch: got %d, want 2", len(retrieved.Items))
		}
		if !retrieved.Items[0].Fee.Equal(decimal.NewFromInt(49000)) {
			t.Errorf("Fee mismatch: got %s, want 49000", retrieved.Items[0].Fee)
		}
		if !retrieved.Items[1].Fee.Equal(decimal.NewFromInt(-6500)) {
			t.Errorf("Adjustment fee mismatch: got %s, want -6500", retrieved.Items[1].Fee)
		}
		if !retrieved.Items[0].Shares[1].Locked {
			t.Error("Locked flag lost in round trip")
		}
	})

	t.Run("GetBill returns ErrNotFound for unknown ID", func(t *testing.T) {
		_, err := store.GetBill(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("SaveBill overwrites the document", func(t *testing.T) {
		bill := testBill("Before", "Ara", "Bom")
		if err := store.CreateBill(ctx, bill); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}

		bill.Title = "After"
		bill.Status = models.StatusActive
		if err := store.SaveBill(ctx, bill); err != nil {
			t.Fatalf("SaveBill failed: %v", err)
		}

		retrieved, err := store.GetBill(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if retrieved.Title != "After" {
			t.Errorf("Title not updated: got %s", retrieved.Title)
		}
		if retrieved.Status != models.StatusActive {
			t.Errorf("Status not updated: got %s", retrieved.Status)
		}
	})

	t.Run("SaveBill returns ErrNotFound for unknown ID", func(t *testing.T) {
		bill := testBill("Orphan", "Ara")
		bill.ID = "never-created"
		if err := store.SaveBill(ctx, bill); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListBills returns catalog rows", func(t *testing.T) {
		infos, err := store.ListBills(ctx)
		if err != nil {
			t.Fatalf("ListBills failed: %v", err)
		}
		if len(infos) == 0 {
			t.Fatal("Expected at least one bill in the catalog")
		}
		for _, info := range infos {
			if info.ID == "" || info.Title == "" {
				t.Errorf("Incomplete catalog row: %+v", info)
			}
		}
	})

	t.Run("DeleteBill removes the bill", func(t *testing.T) {
		bill := testBill("Doomed", "Ara", "Bom")
		if err := store.CreateBill(ctx, bill); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		if err := store.DeleteBill(ctx, bill.ID); err != nil {
			t.Fatalf("DeleteBill failed: %v", err)
		}
		if _, err := store.GetBill(ctx, bill.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeleteBill(ctx, bill.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on double delete, got %v", err)
		}
	})
}

func TestRoster(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("PutMember generates ID", func(t *testing.T) {
		m := &models.MemberProfile{Name: "Ara"}
		if err := store.PutMember(ctx, m); err != nil {
			t.Fatalf("PutMember failed: %v", err)
		}
		if m.ID == "" {
			t.Error("Expected member ID to be generated")
		}
	})

	t.Run("GetMember round-trips the profile", func(t *testing.T) {
		m := &models.MemberProfile{
			Name: "Bom",
			Profile: models.PaymentProfile{
				BankName:      "Kakao",
				AccountNumber: "3333-01-1234567",
			},
		}
		if err := store.PutMember(ctx, m); err != nil {
			t.Fatalf("PutMember failed: %v", err)
		}

		got, err := store.GetMember(ctx, m.ID)
		if err != nil {
			t.Fatalf("GetMember failed: %v", err)
		}
		if got.Name != "Bom" || got.Profile.BankName != "Kakao" || got.Profile.AccountNumber != "3333-01-1234567" {
			t.Errorf("Profile mismatch: %+v", got)
		}
		if got.Profile.QRRef != "" {
			t.Errorf("Expected empty QRRef, got %q", got.Profile.QRRef)
		}
	})

	t.Run("PutMember updates on conflict", func(t *testing.T) {
		m := &models.MemberProfile{Name: "Chul"}
		if err := store.PutMember(ctx, m); err != nil {
			t.Fatalf("PutMember failed: %v", err)
		}
		m.Profile.BankName = "Toss"
		if err := store.PutMember(ctx, m); err != nil {
			t.Fatalf("PutMember update failed: %v", err)
		}

		got, err := store.GetMember(ctx, m.ID)
		if err != nil {
			t.Fatalf("GetMember failed: %v", err)
		}
		if got.Profile.BankName != "Toss" {
			t.Errorf("BankName not updated: got %q", got.Profile.BankName)
		}
	})

	t.Run("GetMember returns ErrNotFound for unknown ID", func(t *testing.T) {
		if _, err := store.GetMember(ctx, "nonexistent-id"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}
