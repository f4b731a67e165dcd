package engine

import (
	"github.com/shopspring/decimal"

	"github.com/nbbang/dutchpay/internal/calculator"
	"github.com/nbbang/dutchpay/internal/models"
)

// SetSharePercent records a manually entered percentage for one share
// of a PERCENT item and recomputes the item.
//
// Two live-editing policies apply, in order:
//
//  1. Clamp: an entry that would push the item's total over 100 is
//     reduced to the remaining headroom (100 minus the other manually
//     pinned percentages) instead of being rejected, with a warning.
//  2. Redistribute: any percentage left unclaimed after the manual
//     entries is spread equally across the included shares that were
//     not entered by hand, half-up to one decimal place. Manual shares
//     are never touched.
//
// RawInput always keeps what the user typed: an unparseable entry stays
// verbatim (never coerced) and allocates as zero until corrected, and a
// valid entry keeps its typed form ("25%", " 33.4 "). Only a clamp
// rewrites the entry, to the clamped value.
func SetSharePercent(b *models.Bill, itemID, participantID, raw string) ([]Warning, error) {
	const op = "setSharePercent"
	if err := ensureAllocatable(b, op); err != nil {
		return nil, err
	}
	it, sh, err := findShare(b, op, itemID, participantID)
	if err != nil {
		return nil, err
	}
	if it.IsAdjustment() {
		return nil, structuralf(op, "item %s takes direct amounts, not percentages", itemID)
	}
	if it.Method != models.SplitPercent {
		return nil, structuralf(op, "item %s is not split by percentage", itemID)
	}
	if !sh.Include {
		return nil, structuralf(op, "participant %s is excluded from item %s", participantID, itemID)
	}

	pct, ok := calculator.ParsePercent(raw)
	if !ok {
		sh.RawInput = raw
		sh.Manual = true
		return distribute(b, it), nil
	}

	var warnings []Warning
	entry := raw
	if pct.IsNegative() {
		pct = decimal.Zero
		entry = pct.String()
		warnings = append(warnings, Warning{
			Kind:          WarnPercentClamped,
			ItemID:        itemID,
			ParticipantID: participantID,
			Message:       "negative percentage clamped to 0",
		})
	}
	headroom := calculator.Hundred.Sub(manualOthersSum(it, participantID))
	if headroom.IsNegative() {
		headroom = decimal.Zero
	}
	if pct.GreaterThan(headroom) {
		pct = headroom
		entry = pct.String()
		warnings = append(warnings, Warning{
			Kind:          WarnPercentClamped,
			ItemID:        itemID,
			ParticipantID: participantID,
			Message:       "percentage clamped to remaining " + headroom.String() + "%",
		})
	}

	sh.RawInput = entry
	sh.Manual = true
	redistributeRemainder(it)

	return append(warnings, distribute(b, it)...), nil
}

// manualOthersSum sums the parsed percentages of every included,
// manually entered share except the one being edited. Auto-filled
// shares are not headroom: they get re-derived from whatever the manual
// entries leave over.
func manualOthersSum(it *models.Item, exceptID string) decimal.Decimal {
	sum := decimal.Zero
	for i := range it.Shares {
		sh := &it.Shares[i]
		if !sh.Include || !sh.Manual || sh.ParticipantID == exceptID {
			continue
		}
		pct, _ := calculator.ParsePercent(sh.RawInput)
		sum = sum.Add(pct)
	}
	return sum
}

// redistributeRemainder rewrites the non-manual, included shares so the
// item's percentages land exactly on 100. Each target gets an equal cut
// of the unclaimed percentage rounded half-up to one decimal place; the
// last target absorbs the rounding difference.
func redistributeRemainder(it *models.Item) {
	var targets []*models.Share
	manualSum := decimal.Zero
	for i := range it.Shares {
		sh := &it.Shares[i]
		if !sh.Include {
			continue
		}
		if sh.Manual {
			pct, _ := calculator.ParsePercent(sh.RawInput)
			manualSum = manualSum.Add(pct)
			continue
		}
		targets = append(targets, sh)
	}

	remainder := calculator.Hundred.Sub(manualSum)
	if len(targets) == 0 || remainder.IsNegative() {
		return
	}

	n := decimal.NewFromInt(int64(len(targets)))
	per := remainder.Div(n).Round(1)
	for i, sh := range targets {
		v := per
		if i == len(targets)-1 {
			v = remainder.Sub(per.Mul(n.Sub(decimal.NewFromInt(1))))
		}
		sh.RawInput = v.String()
	}
}
