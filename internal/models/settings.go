package models

// RoundingRule selects how per-share amounts are rounded to the
// currency's minor unit during allocation.
type RoundingRule string

const (
	// RoundUp rounds away from zero.
	RoundUp RoundingRule = "UP"

	// RoundDown rounds toward zero.
	RoundDown RoundingRule = "DOWN"

	// RoundNearest rounds half away from zero.
	RoundNearest RoundingRule = "NEAREST"
)

// Settings are the per-bill policy knobs. The allocation engine reads
// the split method, rounding rule, and currency; the remaining toggles
// are carried for UI gating and export and are opaque to the engine.
type Settings struct {
	// DefaultSplitMethod is applied to newly added items.
	DefaultSplitMethod SplitMethod `json:"default_split_method"`

	// Rounding is applied to every computed per-share amount. Any
	// resulting discrepancy between the sum of shares and the item fee
	// is left visible, never absorbed.
	Rounding RoundingRule `json:"rounding_rule"`

	// Currency is the ISO 4217 code. Its minor unit drives rounding
	// precision and the accounting-invariant tolerance.
	Currency string `json:"currency"`

	// AllowPartialParticipation permits excluding participants from
	// individual items.
	AllowPartialParticipation bool `json:"allow_partial_participation"`

	// MinParticipantsPerItem is a UI-gating hint, not enforced by the
	// engine.
	MinParticipantsPerItem int `json:"min_participants_per_item,omitempty"`

	// AutoValidatePercentages makes the engine reject a PERCENT
	// recompute whose included percentages do not sum to 100 (within
	// 0.01) instead of applying it with a warning.
	AutoValidatePercentages bool `json:"auto_validate_percentages,omitempty"`

	// RequirePaymentConfirmation and ExportQR are pass-through policy
	// toggles for the surrounding application.
	RequirePaymentConfirmation bool `json:"require_payment_confirmation,omitempty"`
	ExportQR                   bool `json:"export_qr,omitempty"`
}

// DefaultSettings returns the settings a fresh bill starts with.
func DefaultSettings() Settings {
	return Settings{
		DefaultSplitMethod:        SplitEqual,
		Rounding:                  RoundNearest,
		Currency:                  "KRW",
		AllowPartialParticipation: true,
	}
}
