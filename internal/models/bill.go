package models

// BillStatus is the lifecycle state of a bill. Transitions are
// forward-only and single-step, gated by the lifecycle controller.
type BillStatus string

const (
	// StatusDraft is the initial state: the bill is being set up.
	StatusDraft BillStatus = "DRAFT"

	// StatusActive means the bill is live and shares are being allocated.
	StatusActive BillStatus = "ACTIVE"

	// StatusCompleted means every normal item is properly allocated and
	// the bill is waiting on payments.
	StatusCompleted BillStatus = "COMPLETED"

	// StatusSettled means every included share has been paid.
	StatusSettled BillStatus = "SETTLED"
)

// Next returns the status one step forward, or "" when the status is
// terminal (or unknown).
func (s BillStatus) Next() BillStatus {
	switch s {
	case StatusDraft:
		return StatusActive
	case StatusActive:
		return StatusCompleted
	case StatusCompleted:
		return StatusSettled
	default:
		return ""
	}
}

// Bill represents a shared bill: who is on it, what was bought, how each
// item is split, and how far along payment is.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string `json:"id"`

	// Title is the human-readable name for the bill.
	Title string `json:"title"`

	// Settings holds the per-bill policy knobs (default split method,
	// rounding rule, currency, participation policy).
	Settings Settings `json:"settings"`

	// Participants is the ordered registry of people on the bill.
	// Exactly one participant has IsPayer set.
	Participants []Participant `json:"participants"`

	// Items is the ordered catalog of entries on the bill. Each item
	// carries one Share per current participant.
	Items []Item `json:"items"`

	// Status is the lifecycle state. Only the lifecycle controller
	// advances it.
	Status BillStatus `json:"status"`

	// CreatedAt and UpdatedAt are Unix timestamps maintained by the
	// store, not by the engine.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// Participant returns the participant with the given id, or nil.
func (b *Bill) Participant(id string) *Participant {
	for i := range b.Participants {
		if b.Participants[i].ID == id {
			return &b.Participants[i]
		}
	}
	return nil
}

// Item returns the item with the given id, or nil.
func (b *Bill) Item(id string) *Item {
	for i := range b.Items {
		if b.Items[i].ID == id {
			return &b.Items[i]
		}
	}
	return nil
}

// Payer returns the participant flagged as payer, or nil when the payer
// has been removed and not yet reassigned.
func (b *Bill) Payer() *Participant {
	for i := range b.Participants {
		if b.Participants[i].IsPayer {
			return &b.Participants[i]
		}
	}
	return nil
}

// NormalItemCount counts the items that make up the bill subtotal.
func (b *Bill) NormalItemCount() int {
	n := 0
	for i := range b.Items {
		if b.Items[i].Type == ItemNormal {
			n++
		}
	}
	return n
}
