package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/nbbang/dutchpay/internal/models"
)

// ParticipantSummary is one participant's settlement position.
type ParticipantSummary struct {
	ParticipantID string
	Name          string
	IsPayer       bool

	// Total is the sum of this participant's included share amounts
	// across all items.
	Total decimal.Decimal

	// Paid is the portion of Total whose shares are marked paid.
	Paid decimal.Decimal

	// Outstanding is Total minus Paid.
	Outstanding decimal.Decimal

	// Settled is true when the participant has at least one included
	// share and every one of them is paid.
	Settled bool
}

// Summary is the read-only settlement view of a bill, derived entirely
// from the share matrix. It is invalidated by any mutation and must be
// recomputed rather than cached across edits.
type Summary struct {
	// ItemSubtotal is the sum of fees over NORMAL items.
	ItemSubtotal decimal.Decimal

	// AdjustmentTotal is the sum of per-participant amounts over
	// adjustment items. It comes from actual share amounts, not item
	// fees, because adjustments never split their fee.
	AdjustmentTotal decimal.Decimal

	// GrandTotal is ItemSubtotal + AdjustmentTotal.
	GrandTotal decimal.Decimal

	// ParticipantTotal is the sum of Participants[i].Total. It differs
	// from GrandTotal by at most the rounding residual.
	ParticipantTotal decimal.Decimal

	// Participants holds per-participant positions in registry order.
	Participants []ParticipantSummary

	// SettledAmount and OutstandingAmount aggregate the per-participant
	// Paid and Outstanding columns.
	SettledAmount     decimal.Decimal
	OutstandingAmount decimal.Decimal

	// SettledCount is the number of fully-settled participants.
	SettledCount int

	// CompletionPercent is SettledAmount over ParticipantTotal, as a
	// percentage. Zero when nothing has been allocated.
	CompletionPercent float64
}

// Deviation returns ParticipantTotal minus GrandTotal. Outside the
// rounding tolerance this indicates an allocation bug, never user
// error.
func (s *Summary) Deviation() decimal.Decimal {
	return s.ParticipantTotal.Sub(s.GrandTotal)
}

// InvariantTolerance is the allowed accounting deviation: one smallest
// currency unit of rounding slack per NORMAL item.
func InvariantTolerance(b *models.Bill) decimal.Decimal {
	return SmallestUnit(b.Settings.Currency).Mul(decimal.NewFromInt(int64(b.NormalItemCount())))
}

// Summarize derives the settlement aggregates for a bill. It never
// mutates share amounts.
func Summarize(b *models.Bill) *Summary {
	s := &Summary{
		ItemSubtotal:      decimal.Zero,
		AdjustmentTotal:   decimal.Zero,
		GrandTotal:        decimal.Zero,
		ParticipantTotal:  decimal.Zero,
		SettledAmount:     decimal.Zero,
		OutstandingAmount: decimal.Zero,
	}

	for i := range b.Items {
		it := &b.Items[i]
		if it.IsAdjustment() {
			for j := range it.Shares {
				if it.Shares[j].Include {
					s.AdjustmentTotal = s.AdjustmentTotal.Add(it.Shares[j].Amount)
				}
			}
		} else {
			s.ItemSubtotal = s.ItemSubtotal.Add(it.Fee)
		}
	}
	s.GrandTotal = s.ItemSubtotal.Add(s.AdjustmentTotal)

	for i := range b.Participants {
		p := &b.Participants[i]
		ps := ParticipantSummary{
			ParticipantID: p.ID,
			Name:          p.Name,
			IsPayer:       p.IsPayer,
			Total:         decimal.Zero,
			Paid:          decimal.Zero,
		}
		included, unpaid := 0, 0
		for j := range b.Items {
			sh := b.Items[j].Share(p.ID)
			if sh == nil || !sh.Include {
				continue
			}
			included++
			ps.Total = ps.Total.Add(sh.Amount)
			if sh.Paid {
				ps.Paid = ps.Paid.Add(sh.Amount)
			} else {
				unpaid++
			}
		}
		ps.Outstanding = ps.Total.Sub(ps.Paid)
		ps.Settled = included > 0 && unpaid == 0

		s.ParticipantTotal = s.ParticipantTotal.Add(ps.Total)
		s.SettledAmount = s.SettledAmount.Add(ps.Paid)
		s.OutstandingAmount = s.OutstandingAmount.Add(ps.Outstanding)
		if ps.Settled {
			s.SettledCount++
		}
		s.Participants = append(s.Participants, ps)
	}

	if s.ParticipantTotal.Sign() != 0 {
		pct, _ := s.SettledAmount.Div(s.ParticipantTotal).Mul(Hundred).Round(1).Float64()
		s.CompletionPercent = pct
	}
	return s
}
