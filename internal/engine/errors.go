// Package engine is the bill reducer: every operation the application
// exposes takes the Bill aggregate, mutates it in place, and reports
// validation warnings alongside the result. Expected business
// conditions (an unallocated item, a percent sum off 100, an illegal
// status transition) come back as values; only malformed input rejects
// the operation outright.
package engine

import (
	"fmt"

	"github.com/nbbang/dutchpay/internal/models"
)

// StructuralError rejects an operation that would corrupt the bill's
// structure: an unknown item or participant id, allocation without a
// payer, direct amounts on a split item. The bill is left unchanged.
type StructuralError struct {
	Op     string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func structuralf(op, format string, args ...any) *StructuralError {
	return &StructuralError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// LifecycleError rejects an illegal or precondition-failing status
// transition, or a mutation the current status forbids. The status is
// never changed; Reason explains what is blocking.
type LifecycleError struct {
	From   models.BillStatus
	To     models.BillStatus
	Reason string
}

func (e *LifecycleError) Error() string {
	if e.To == "" {
		return fmt.Sprintf("bill is %s: %s", e.From, e.Reason)
	}
	return fmt.Sprintf("cannot advance %s to %s: %s", e.From, e.To, e.Reason)
}

// WarningKind classifies a non-fatal validation finding.
type WarningKind string

const (
	// WarnUnallocated flags an EQUAL item with no included, unlocked
	// shares. The recompute no-ops and the item stays unallocated.
	WarnUnallocated WarningKind = "UNALLOCATED"

	// WarnPercentSum flags a PERCENT item whose included percentages do
	// not sum to 100 within tolerance.
	WarnPercentSum WarningKind = "PERCENT_SUM"

	// WarnPercentClamped flags a percentage entry that was reduced to
	// the remaining headroom to keep the item's total at 100.
	WarnPercentClamped WarningKind = "PERCENT_CLAMPED"

	// WarnInvariant flags a deviation between the sum of participant
	// totals and the grand total beyond the rounding tolerance. No user
	// action causes this; it means an allocation bug and is reported on
	// a separate channel from user-facing warnings.
	WarnInvariant WarningKind = "INVARIANT_VIOLATION"
)

// Warning is a user-visible validation finding attached to an
// operation's result.
type Warning struct {
	Kind          WarningKind
	ItemID        string
	ParticipantID string
	Message       string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// ensureEditable gates structural and allocation mutations: they are
// legal while the bill is DRAFT or ACTIVE.
func ensureEditable(b *models.Bill, op string) error {
	switch b.Status {
	case models.StatusCompleted, models.StatusSettled:
		return &LifecycleError{From: b.Status, Reason: op + " requires DRAFT or ACTIVE status"}
	}
	return nil
}

// ensurePayable gates payment toggles: legal until the bill is SETTLED.
func ensurePayable(b *models.Bill, op string) error {
	if b.Status == models.StatusSettled {
		return &LifecycleError{From: b.Status, Reason: op + " is not allowed on a settled bill"}
	}
	return nil
}

// ensureAllocatable additionally requires a payer: after the payer is
// removed, allocation and settlement stay blocked until a new payer is
// assigned.
func ensureAllocatable(b *models.Bill, op string) error {
	if err := ensureEditable(b, op); err != nil {
		return err
	}
	if b.Payer() == nil {
		return structuralf(op, "bill has no payer; assign one before allocating")
	}
	return nil
}
