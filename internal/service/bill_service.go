// Package service orchestrates engine operations with persistence,
// logging, and metrics. The engine itself stays synchronous and
// side-effect free; everything asynchronous (debounced autosave) hangs
// off this layer.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nbbang/dutchpay/internal/autosave"
	"github.com/nbbang/dutchpay/internal/calculator"
	"github.com/nbbang/dutchpay/internal/engine"
	"github.com/nbbang/dutchpay/internal/metrics"
	"github.com/nbbang/dutchpay/internal/models"
	"github.com/nbbang/dutchpay/internal/storage"
)

// BillService exposes the bill operations to collaborators (UI, API
// layer). Every mutation returns the updated bill plus a list of
// validation warnings; rejections come back as typed engine errors with
// the bill unchanged.
type BillService struct {
	store storage.Store
	saver *autosave.Saver
}

// NewBillService creates a BillService. The saver is optional: when nil
// the caller is responsible for persisting bills itself.
func NewBillService(store storage.Store, saver *autosave.Saver) *BillService {
	return &BillService{store: store, saver: saver}
}

// CreateBill persists a fresh DRAFT bill. Zero-valued settings fall
// back to the defaults.
func (s *BillService) CreateBill(ctx context.Context, title string, settings models.Settings) (*models.Bill, error) {
	if settings == (models.Settings{}) {
		settings = models.DefaultSettings()
	}
	bill := &models.Bill{
		Title:    title,
		Settings: settings,
		Status:   models.StatusDraft,
	}
	if err := s.store.CreateBill(ctx, bill); err != nil {
		return nil, fmt.Errorf("create bill: %w", err)
	}
	slog.Info("bill created", "bill_id", bill.ID, "title", bill.Title)
	return bill, nil
}

// LoadBill fetches a bill and validates its shape. A bill whose share
// matrix is out of sync with its registry is malformed input and is
// rejected here, before any operation can run on it.
func (s *BillService) LoadBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("load bill: %w", err)
	}
	if err := engine.CheckStructure(bill); err != nil {
		return nil, fmt.Errorf("load bill %s: malformed document: %w", billID, err)
	}
	return bill, nil
}

// Flush forces any pending autosave to disk now.
func (s *BillService) Flush(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	return s.saver.Flush(ctx)
}

// apply runs one engine operation, records metrics, logs warnings, and
// marks the bill dirty on success.
func (s *BillService) apply(bill *models.Bill, op string, fn func() ([]engine.Warning, error)) (*models.Bill, []engine.Warning, error) {
	start := time.Now()
	warnings, err := fn()
	metrics.OperationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Operations.WithLabelValues(op, "rejected").Inc()
		slog.Warn("operation rejected", "op", op, "bill_id", bill.ID, "error", err)
		return bill, nil, err
	}
	metrics.Operations.WithLabelValues(op, "ok").Inc()
	s.reportWarnings(bill, op, warnings)
	if s.saver != nil {
		s.saver.MarkDirty(bill)
	}
	return bill, warnings, nil
}

// reportWarnings routes invariant violations to the error log (they
// mean an engine bug, no user action caused them) and everything else
// to the warning log.
func (s *BillService) reportWarnings(bill *models.Bill, op string, warnings []engine.Warning) {
	for _, w := range warnings {
		metrics.Warnings.WithLabelValues(string(w.Kind)).Inc()
		if w.Kind == engine.WarnInvariant {
			metrics.InvariantViolations.Inc()
			slog.Error("accounting invariant violated", "op", op, "bill_id", bill.ID, "detail", w.Message)
			continue
		}
		slog.Warn("validation warning", "op", op, "bill_id", bill.ID, "kind", w.Kind, "item_id", w.ItemID, "detail", w.Message)
	}
}

// AddParticipant adds a person by display name.
func (s *BillService) AddParticipant(ctx context.Context, bill *models.Bill, name string) (*models.Bill, []engine.Warning, error) {
	p := models.Participant{ID: uuid.New().String(), Name: name}
	return s.apply(bill, "addParticipant", func() ([]engine.Warning, error) {
		return nil, engine.AddParticipant(bill, p)
	})
}

// AddParticipantFromRoster adds a person from the stored roster,
// merging their payment profile read-only. The roster member's ID
// becomes the participant ID so later lookups correlate.
func (s *BillService) AddParticipantFromRoster(ctx context.Context, bill *models.Bill, memberID string) (*models.Bill, []engine.Warning, error) {
	m, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return bill, nil, fmt.Errorf("roster lookup: %w", err)
	}
	p := models.Participant{ID: m.ID, Name: m.Name, Profile: m.Profile}
	return s.apply(bill, "addParticipant", func() ([]engine.Warning, error) {
		return nil, engine.AddParticipant(bill, p)
	})
}

// RemoveParticipant removes a person and their shares from every item.
func (s *BillService) RemoveParticipant(ctx context.Context, bill *models.Bill, participantID string) (*models.Bill, []engine.Warning, error) {
	return s.apply(bill, "removeParticipant", func() ([]engine.Warning, error) {
		return nil, engine.RemoveParticipant(bill, participantID)
	})
}

// SetPayer reassigns the payer flag.
func (s *BillService) SetPayer(ctx context.Context, bill *models.Bill, participantID string) (*models.Bill, []engine.Warning, error) {
	return s.apply(bill, "setPayer", func() ([]engine.Warning, error) {
		return nil, engine.SetPayer(bill, participantID)
	})
}

// AddItem adds an entry with a zero fee and the bill's default split
// method.
func (s *BillService) AddItem(ctx context.Context, bill *models.Bill, name string, itemType models.ItemType) (*models.Bill, []engine.Warning, error) {
	it := models.Item{
		ID:   uuid.New().String(),
		Name: name,
		Type: itemType,
		Fee:  decimal.Zero,
	}
	return s.apply(bill, "addItem", func() ([]engine.Warning, error) {
		return nil, engine.AddItem(bill, it)
	})
}

// RemoveItem deletes an entry and its share row.
func (s *BillService) RemoveItem(ctx context.Context, bill *models.Bill, itemID string) (*models.Bill, []engine.Warning, error) {
	return s.apply(bill, "removeItem", func() ([]engine.Warning, error) {
		return nil, engine.RemoveItem(bill, itemID)
	})
}

// UpdateItemFee changes an item's fee and recomputes it.
func (s *BillService) UpdateItemFee(ctx context.Context, bill *models.Bill, itemID string, fee decimal.Decimal) (*models.Bill, []engine.Warning, error) {
	return s.apply(bill, "updateItemFee", func() ([]engine.Warning, error) {
		return engine.UpdateItemFee(bill, itemID, fee)
	})
}

// UpdateItemSplitMethod switches an item's split strategy.
func (s *BillService) UpdateItemSplitMethod(ctx context.Context, bill *models.Bill, itemID string, m models.SplitMethod) (*models.Bill, []engine.Warning, error) {
	return s.apply(bill, "updateItemSplitMethod", func() ([]engine.Warning, error) {
		return engine.UpdateItemSplitMethod(bill, itemID, m)
	})
}

// ToggleShareInclude flips a participant in or out of one item.
func (s *BillService) ToggleShareInclude(ctx context.Context, bill *models.Bill, itemID, participantID string) (*models.Bill, []engine.Warning, error) {
	return s.apply(bill, "toggleShareInclude", func() ([]engine.Warning, error) {
		return engine.ToggleShareInclude(bill, itemID, participantID)
	})
}

// ToggleShareLock pins or unpins a share against redistribution.
func (s *BillService) ToggleShareLock(ctx context.Context, bill *models.Bill, itemID, participantID string) (*models.Bill, []engine.Warning, error) {
	return s.apply(bill, "toggleShareLock", func() ([]engine.Warning, error) {
		return nil, engine.ToggleShareLock(bill, itemID, participantID)
	})
}

// ToggleSharePaid flips the payment flag on one share.
func (s *BillService) ToggleSharePaid(ctx context.Context, bill *models.Bill, itemID, participantID string) (*models.Bill, []engine.Warning, error) {
	return s.apply(bill, "toggleSharePaid", func() ([]engine.Warning, error) {
		return nil, engine.ToggleSharePaid(bill, itemID, participantID)
	})
}

// MarkParticipantPaid bulk-sets the payment flag on every included
// share of one participant.
func (s *BillService) MarkParticipantPaid(ctx context.Context, bill *models.Bill, participantID string, paid bool) (*models.Bill, []engine.Warning, error) {
	return s.apply(bill, "markParticipantPaid", func() ([]engine.Warning, error) {
		return nil, engine.MarkParticipantPaid(bill, participantID, paid)
	})
}

// SetSharePercent records a percentage entry with clamp-and-
// redistribute semantics.
func (s *BillService) SetSharePercent(ctx context.Context, bill *models.Bill, itemID, participantID, raw string) (*models.Bill, []engine.Warning, error) {
	return s.apply(bill, "setSharePercent", func() ([]engine.Warning, error) {
		return engine.SetSharePercent(bill, itemID, participantID, raw)
	})
}

// SetShareAmount enters a share amount directly (adjustment items, or
// manual overrides on split items).
func (s *BillService) SetShareAmount(ctx context.Context, bill *models.Bill, itemID, participantID string, amount decimal.Decimal) (*models.Bill, []engine.Warning, error) {
	return s.apply(bill, "setShareAmount", func() ([]engine.Warning, error) {
		return engine.SetShareAmount(bill, itemID, participantID, amount)
	})
}

// DistributeItem recomputes one item.
func (s *BillService) DistributeItem(ctx context.Context, bill *models.Bill, itemID string) (*models.Bill, []engine.Warning, error) {
	return s.apply(bill, "distributeItem", func() ([]engine.Warning, error) {
		return engine.DistributeItem(bill, itemID)
	})
}

// DistributeAll recomputes every NORMAL item in catalog order.
func (s *BillService) DistributeAll(ctx context.Context, bill *models.Bill) (*models.Bill, []engine.Warning, error) {
	return s.apply(bill, "distributeAll", func() ([]engine.Warning, error) {
		return engine.DistributeAll(bill)
	})
}

// AdvanceStatus moves the lifecycle one step forward.
func (s *BillService) AdvanceStatus(ctx context.Context, bill *models.Bill) (*models.Bill, []engine.Warning, error) {
	b, w, err := s.apply(bill, "advanceStatus", func() ([]engine.Warning, error) {
		return nil, engine.AdvanceStatus(bill)
	})
	if err == nil {
		slog.Info("bill advanced", "bill_id", bill.ID, "status", bill.Status)
	}
	return b, w, err
}

// Summarize derives the settlement view. Read-only: nothing is marked
// dirty.
func (s *BillService) Summarize(ctx context.Context, bill *models.Bill) (*calculator.Summary, []engine.Warning, error) {
	sum, warnings, err := engine.Summarize(bill)
	if err != nil {
		metrics.Operations.WithLabelValues("summarize", "rejected").Inc()
		slog.Warn("operation rejected", "op", "summarize", "bill_id", bill.ID, "error", err)
		return nil, nil, err
	}
	metrics.Operations.WithLabelValues("summarize", "ok").Inc()
	s.reportWarnings(bill, "summarize", warnings)
	return sum, warnings, nil
}
