package models

import "github.com/shopspring/decimal"

// ItemType distinguishes normal purchases from adjustment entries.
type ItemType string

const (
	// ItemNormal is a regular purchase. Its fee counts toward the bill
	// subtotal and is split across shares by the item's split method.
	ItemNormal ItemType = "NORMAL"

	// ItemCarryOver is debt carried over from a previous bill. Share
	// amounts are entered directly per participant.
	ItemCarryOver ItemType = "CARRY_OVER"

	// ItemSpecial is any other adjustment (discount, service charge
	// assigned by hand). Share amounts are entered directly.
	ItemSpecial ItemType = "SPECIAL"
)

// SplitMethod selects how a normal item's fee is allocated.
type SplitMethod string

const (
	// SplitEqual divides the fee evenly across included, unlocked shares.
	SplitEqual SplitMethod = "EQUAL"

	// SplitPercent allocates by per-share percentages entered by users.
	SplitPercent SplitMethod = "PERCENT"
)

// Item is one chargeable or adjustment entry on a bill.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string `json:"id"`

	// Name is the display name (e.g. "Dinner", "Last month carry-over").
	Name string `json:"name"`

	// Position is the ordinal position in the catalog.
	Position int `json:"position"`

	// Fee is the item's total amount. Signed: adjustments such as
	// discounts are negative.
	Fee decimal.Decimal `json:"fee"`

	// Type classifies the item. Adjustment items (CARRY_OVER, SPECIAL)
	// bypass split-method allocation entirely.
	Type ItemType `json:"type"`

	// Method is the split strategy for NORMAL items. Ignored for
	// adjustment items.
	Method SplitMethod `json:"split_method"`

	// Shares holds exactly one entry per current participant, in
	// registry order. Structural sync keeps this bijection intact.
	Shares []Share `json:"shares"`
}

// IsAdjustment reports whether share amounts are entered directly
// instead of being computed from the fee.
func (it *Item) IsAdjustment() bool {
	return it.Type == ItemCarryOver || it.Type == ItemSpecial
}

// Share returns this item's share for the given participant, or nil.
func (it *Item) Share(participantID string) *Share {
	for i := range it.Shares {
		if it.Shares[i].ParticipantID == participantID {
			return &it.Shares[i]
		}
	}
	return nil
}
