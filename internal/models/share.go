package models

import "github.com/shopspring/decimal"

// Share is one participant's slice of one item: whether they are in on
// it, what they owe for it, and whether they have paid.
type Share struct {
	// ParticipantID links the share to the participant registry.
	ParticipantID string `json:"participant_id"`

	// Include marks the participant as taking part in this item.
	// An excluded share always has a zero amount and never counts
	// toward any total.
	Include bool `json:"include"`

	// Locked pins the amount against EQUAL redistribution, so a manual
	// override survives recomputes. The engine still zeroes a locked
	// share if it is excluded.
	Locked bool `json:"locked"`

	// Paid records that payment for this share has been received.
	Paid bool `json:"paid"`

	// RawInput is the percentage exactly as the user typed it, for
	// PERCENT items. It is kept verbatim so a partially-typed value is
	// never silently coerced; an unparseable value allocates as zero.
	RawInput string `json:"raw_input,omitempty"`

	// Manual marks a percentage that was entered by hand. Manual shares
	// are never touched when leftover percentage is redistributed.
	Manual bool `json:"manual,omitempty"`

	// Amount is what this participant owes for this item: computed by
	// the allocation engine for NORMAL items, entered directly for
	// adjustment items.
	Amount decimal.Decimal `json:"amount"`
}
