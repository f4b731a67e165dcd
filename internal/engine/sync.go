package engine

import (
	"github.com/shopspring/decimal"

	"github.com/nbbang/dutchpay/internal/models"
)

// defaultInclude is the inclusion policy for a freshly created share:
// everyone is in on a normal purchase, nobody is in on an adjustment
// until an amount is entered for them.
func defaultInclude(it *models.Item) bool {
	return it.Type == models.ItemNormal
}

// AddParticipant appends p to the registry and creates one share on
// every existing item. The first participant on a bill becomes the
// payer so the exactly-one-payer invariant holds as soon as anyone is
// registered.
func AddParticipant(b *models.Bill, p models.Participant) error {
	const op = "addParticipant"
	if err := ensureEditable(b, op); err != nil {
		return err
	}
	if p.ID == "" {
		return structuralf(op, "participant id is required")
	}
	if b.Participant(p.ID) != nil {
		return structuralf(op, "participant %s is already on the bill", p.ID)
	}

	p.Position = len(b.Participants)
	if len(b.Participants) == 0 {
		p.IsPayer = true
	} else if p.IsPayer {
		clearPayer(b)
	}
	b.Participants = append(b.Participants, p)

	for i := range b.Items {
		it := &b.Items[i]
		it.Shares = append(it.Shares, models.Share{
			ParticipantID: p.ID,
			Include:       defaultInclude(it),
			Amount:        decimal.Zero,
		})
	}
	return CheckStructure(b)
}

// RemoveParticipant deletes the participant and cascades the deletion
// to their share on every item. Removing the payer is allowed, but the
// bill stays blocked for allocation and settlement until a new payer is
// assigned.
func RemoveParticipant(b *models.Bill, participantID string) error {
	const op = "removeParticipant"
	if err := ensureEditable(b, op); err != nil {
		return err
	}
	idx := -1
	for i := range b.Participants {
		if b.Participants[i].ID == participantID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return structuralf(op, "participant %s not found", participantID)
	}

	b.Participants = append(b.Participants[:idx], b.Participants[idx+1:]...)
	for i := range b.Participants {
		b.Participants[i].Position = i
	}

	for i := range b.Items {
		it := &b.Items[i]
		for j := range it.Shares {
			if it.Shares[j].ParticipantID == participantID {
				it.Shares = append(it.Shares[:j], it.Shares[j+1:]...)
				break
			}
		}
	}
	return CheckStructure(b)
}

// SetPayer flags the given participant as payer, unassigning the
// previous one.
func SetPayer(b *models.Bill, participantID string) error {
	const op = "setPayer"
	if err := ensureEditable(b, op); err != nil {
		return err
	}
	p := b.Participant(participantID)
	if p == nil {
		return structuralf(op, "participant %s not found", participantID)
	}
	clearPayer(b)
	p.IsPayer = true
	return nil
}

func clearPayer(b *models.Bill) {
	for i := range b.Participants {
		b.Participants[i].IsPayer = false
	}
}

// AddItem appends the item to the catalog and builds its share row, one
// share per current participant. The caller supplies identity, type and
// fee; the share matrix shape is owned here, so any shares on the
// passed-in value are discarded.
func AddItem(b *models.Bill, it models.Item) error {
	const op = "addItem"
	if err := ensureEditable(b, op); err != nil {
		return err
	}
	if it.ID == "" {
		return structuralf(op, "item id is required")
	}
	if b.Item(it.ID) != nil {
		return structuralf(op, "item %s is already on the bill", it.ID)
	}

	if it.Type == "" {
		it.Type = models.ItemNormal
	}
	if it.Method == "" {
		it.Method = b.Settings.DefaultSplitMethod
	}
	it.Position = len(b.Items)

	it.Shares = make([]models.Share, 0, len(b.Participants))
	for i := range b.Participants {
		it.Shares = append(it.Shares, models.Share{
			ParticipantID: b.Participants[i].ID,
			Include:       defaultInclude(&it),
			Amount:        decimal.Zero,
		})
	}
	b.Items = append(b.Items, it)
	return CheckStructure(b)
}

// RemoveItem deletes the item and its entire share row.
func RemoveItem(b *models.Bill, itemID string) error {
	const op = "removeItem"
	if err := ensureEditable(b, op); err != nil {
		return err
	}
	idx := -1
	for i := range b.Items {
		if b.Items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return structuralf(op, "item %s not found", itemID)
	}
	b.Items = append(b.Items[:idx], b.Items[idx+1:]...)
	for i := range b.Items {
		b.Items[i].Position = i
	}
	return CheckStructure(b)
}

// CheckStructure verifies the share-matrix bijection: every item
// carries exactly one share per registered participant, no orphans, no
// gaps, no duplicates. Structural mutations run this before returning;
// a failure here means an engine bug, not bad input.
func CheckStructure(b *models.Bill) error {
	const op = "checkStructure"
	ids := make(map[string]bool, len(b.Participants))
	for i := range b.Participants {
		id := b.Participants[i].ID
		if ids[id] {
			return structuralf(op, "duplicate participant %s in registry", id)
		}
		ids[id] = true
	}

	for i := range b.Items {
		it := &b.Items[i]
		if len(it.Shares) != len(ids) {
			return structuralf(op, "item %s has %d shares for %d participants", it.ID, len(it.Shares), len(ids))
		}
		seen := make(map[string]bool, len(it.Shares))
		for j := range it.Shares {
			pid := it.Shares[j].ParticipantID
			if !ids[pid] {
				return structuralf(op, "item %s has orphan share for %s", it.ID, pid)
			}
			if seen[pid] {
				return structuralf(op, "item %s has duplicate share for %s", it.ID, pid)
			}
			seen[pid] = true
		}
	}
	return nil
}
