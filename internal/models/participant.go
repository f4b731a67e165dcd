package models

// Participant is one person on a bill.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Position is the ordinal position in the registry. Positions are
	// contiguous from 0 and maintained by the structural-sync code.
	Position int `json:"position"`

	// IsPayer marks the participant who fronted the money. Exactly one
	// participant per bill has this set; assigning a new payer clears
	// the previous one.
	IsPayer bool `json:"is_payer"`

	// Profile is opaque payment metadata merged from the roster. The
	// engine never reads or computes it.
	Profile PaymentProfile `json:"profile"`
}

// PaymentProfile is pass-through account metadata for a participant.
// It comes from the roster lookup and is carried for export/display only.
type PaymentProfile struct {
	BankName      string `json:"bank_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	QRRef         string `json:"qr_ref,omitempty"`
}

// MemberProfile is a roster record: a reusable identity that bills can
// pull participants from.
type MemberProfile struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Profile PaymentProfile `json:"profile"`
}
