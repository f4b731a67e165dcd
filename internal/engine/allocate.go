package engine

import (
	"github.com/shopspring/decimal"

	"github.com/nbbang/dutchpay/internal/calculator"
	"github.com/nbbang/dutchpay/internal/models"
)

// DistributeItem recomputes share amounts for one item from its fee and
// split method. Recompute is idempotent: with no intervening mutation a
// second run produces the same amounts.
func DistributeItem(b *models.Bill, itemID string) ([]Warning, error) {
	const op = "distributeItem"
	if err := ensureAllocatable(b, op); err != nil {
		return nil, err
	}
	it := b.Item(itemID)
	if it == nil {
		return nil, structuralf(op, "item %s not found", itemID)
	}
	return distribute(b, it), nil
}

// DistributeAll recomputes every NORMAL item in catalog order.
// Adjustment items are untouched.
func DistributeAll(b *models.Bill) ([]Warning, error) {
	const op = "distributeAll"
	if err := ensureAllocatable(b, op); err != nil {
		return nil, err
	}
	var warnings []Warning
	for i := range b.Items {
		it := &b.Items[i]
		if it.IsAdjustment() {
			continue
		}
		warnings = append(warnings, distribute(b, it)...)
	}
	return warnings, nil
}

// distribute is the single recompute path for one item. For adjustment
// items it only re-derives inclusion from the directly entered amounts.
func distribute(b *models.Bill, it *models.Item) []Warning {
	if it.IsAdjustment() {
		for i := range it.Shares {
			it.Shares[i].Include = !it.Shares[i].Amount.IsZero()
		}
		return nil
	}

	places := calculator.MinorUnit(b.Settings.Currency)
	switch it.Method {
	case models.SplitPercent:
		sum := calculator.PercentSum(it)
		if sum.Sub(calculator.Hundred).Abs().GreaterThan(calculator.PercentTolerance) {
			w := Warning{
				Kind:    WarnPercentSum,
				ItemID:  it.ID,
				Message: "included percentages sum to " + sum.String() + ", expected 100",
			}
			if b.Settings.AutoValidatePercentages {
				// Rejected for this item only: no partial allocation.
				return []Warning{w}
			}
			calculator.AllocatePercent(it, b.Settings.Rounding, places)
			return []Warning{w}
		}
		calculator.AllocatePercent(it, b.Settings.Rounding, places)
		return nil

	default: // EQUAL
		if n := calculator.AllocateEqual(it, b.Settings.Rounding, places); n == 0 {
			return []Warning{{
				Kind:    WarnUnallocated,
				ItemID:  it.ID,
				Message: "no included, unlocked shares; item left unallocated",
			}}
		}
		return nil
	}
}

// UpdateItemFee sets the item's fee and recomputes its shares. For
// adjustment items the fee is informational and nothing is recomputed:
// their amounts are entered directly.
func UpdateItemFee(b *models.Bill, itemID string, fee decimal.Decimal) ([]Warning, error) {
	const op = "updateItemFee"
	if err := ensureAllocatable(b, op); err != nil {
		return nil, err
	}
	it := b.Item(itemID)
	if it == nil {
		return nil, structuralf(op, "item %s not found", itemID)
	}
	it.Fee = fee
	if it.IsAdjustment() {
		return nil, nil
	}
	return distribute(b, it), nil
}

// UpdateItemSplitMethod switches a NORMAL item between EQUAL and
// PERCENT and recomputes. Raw percentage entries survive a round-trip
// through EQUAL.
func UpdateItemSplitMethod(b *models.Bill, itemID string, m models.SplitMethod) ([]Warning, error) {
	const op = "updateItemSplitMethod"
	if err := ensureAllocatable(b, op); err != nil {
		return nil, err
	}
	it := b.Item(itemID)
	if it == nil {
		return nil, structuralf(op, "item %s not found", itemID)
	}
	if it.IsAdjustment() {
		return nil, structuralf(op, "item %s takes direct amounts, not a split method", itemID)
	}
	if m != models.SplitEqual && m != models.SplitPercent {
		return nil, structuralf(op, "unknown split method %q", m)
	}
	it.Method = m
	return distribute(b, it), nil
}

// ToggleShareInclude flips a participant in or out of a NORMAL item. An
// excluded share always drops to zero; flipping back in feeds the share
// into the recompute, which runs immediately. Adjustment items derive
// inclusion from their entered amounts, so the toggle is rejected there:
// excluding someone from an adjustment means zeroing their amount.
func ToggleShareInclude(b *models.Bill, itemID, participantID string) ([]Warning, error) {
	const op = "toggleShareInclude"
	if err := ensureAllocatable(b, op); err != nil {
		return nil, err
	}
	it, sh, err := findShare(b, op, itemID, participantID)
	if err != nil {
		return nil, err
	}
	if it.IsAdjustment() {
		return nil, structuralf(op, "item %s derives inclusion from its amounts; set the amount instead", itemID)
	}
	sh.Include = !sh.Include
	if !sh.Include {
		sh.Amount = decimal.Zero
	}
	return distribute(b, it), nil
}

// ToggleShareLock pins or unpins a share's amount against EQUAL
// redistribution. The current amount is kept either way.
func ToggleShareLock(b *models.Bill, itemID, participantID string) error {
	const op = "toggleShareLock"
	if err := ensureEditable(b, op); err != nil {
		return err
	}
	_, sh, err := findShare(b, op, itemID, participantID)
	if err != nil {
		return err
	}
	sh.Locked = !sh.Locked
	return nil
}

// ToggleSharePaid flips the payment-received flag on one share.
func ToggleSharePaid(b *models.Bill, itemID, participantID string) error {
	const op = "toggleSharePaid"
	if err := ensurePayable(b, op); err != nil {
		return err
	}
	_, sh, err := findShare(b, op, itemID, participantID)
	if err != nil {
		return err
	}
	sh.Paid = !sh.Paid
	return nil
}

// MarkParticipantPaid sets the paid flag on every included share of one
// participant, across all items.
func MarkParticipantPaid(b *models.Bill, participantID string, paid bool) error {
	const op = "markParticipantPaid"
	if err := ensurePayable(b, op); err != nil {
		return err
	}
	if b.Participant(participantID) == nil {
		return structuralf(op, "participant %s not found", participantID)
	}
	for i := range b.Items {
		for j := range b.Items[i].Shares {
			sh := &b.Items[i].Shares[j]
			if sh.ParticipantID == participantID && sh.Include {
				sh.Paid = paid
			}
		}
	}
	return nil
}

// SetShareAmount enters a share amount directly. On adjustment items
// this is the normal data path and inclusion is derived from the
// amount. On NORMAL items it is a manual override: the share is locked
// so the amount survives later EQUAL recomputes.
func SetShareAmount(b *models.Bill, itemID, participantID string, amount decimal.Decimal) ([]Warning, error) {
	const op = "setShareAmount"
	if err := ensureAllocatable(b, op); err != nil {
		return nil, err
	}
	it, sh, err := findShare(b, op, itemID, participantID)
	if err != nil {
		return nil, err
	}

	amount = calculator.Round(amount, b.Settings.Rounding, calculator.MinorUnit(b.Settings.Currency))
	if it.IsAdjustment() {
		sh.Amount = amount
		sh.Include = !amount.IsZero()
		return nil, nil
	}

	sh.Amount = amount
	sh.Include = true
	sh.Locked = true
	return nil, nil
}

func findShare(b *models.Bill, op, itemID, participantID string) (*models.Item, *models.Share, error) {
	it := b.Item(itemID)
	if it == nil {
		return nil, nil, structuralf(op, "item %s not found", itemID)
	}
	sh := it.Share(participantID)
	if sh == nil {
		return nil, nil, structuralf(op, "no share for participant %s on item %s", participantID, itemID)
	}
	return it, sh, nil
}
