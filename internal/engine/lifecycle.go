package engine

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nbbang/dutchpay/internal/calculator"
	"github.com/nbbang/dutchpay/internal/models"
)

// completionTolerance is how far a PERCENT item's sum may sit from 100
// and still count as properly allocated for ACTIVE -> COMPLETED. It is
// looser than the recompute tolerance because equal redistribution
// works at one decimal place.
var completionTolerance = decimal.NewFromFloat(0.1)

// AdvanceStatus moves the bill exactly one step forward
// (DRAFT -> ACTIVE -> COMPLETED -> SETTLED) after checking the
// transition's precondition. On failure the status is untouched and the
// returned LifecycleError names what is blocking.
func AdvanceStatus(b *models.Bill) error {
	next := b.Status.Next()
	if next == "" {
		return &LifecycleError{From: b.Status, Reason: "no further transition"}
	}

	var reason string
	switch next {
	case models.StatusActive:
		reason = checkActivate(b)
	case models.StatusCompleted:
		reason = checkComplete(b)
	case models.StatusSettled:
		reason = checkSettle(b)
	}
	if reason != "" {
		return &LifecycleError{From: b.Status, To: next, Reason: reason}
	}
	b.Status = next
	return nil
}

// checkActivate: at least two participants and one NORMAL item with a
// positive fee.
func checkActivate(b *models.Bill) string {
	if len(b.Participants) < 2 {
		return "need at least 2 participants"
	}
	for i := range b.Items {
		it := &b.Items[i]
		if it.Type == models.ItemNormal && it.Fee.Sign() > 0 {
			return ""
		}
	}
	return "need at least one NORMAL item with a positive fee"
}

// checkComplete: every NORMAL item is properly allocated. EQUAL needs
// at least one included share; PERCENT needs included percentages
// summing to 100 within tolerance.
func checkComplete(b *models.Bill) string {
	var blocking []string
	for i := range b.Items {
		it := &b.Items[i]
		if it.IsAdjustment() {
			continue
		}
		if !properlyAllocated(it) {
			blocking = append(blocking, it.Name)
		}
	}
	if len(blocking) > 0 {
		return "items not properly allocated: " + strings.Join(blocking, ", ")
	}
	return ""
}

func properlyAllocated(it *models.Item) bool {
	switch it.Method {
	case models.SplitPercent:
		return calculator.PercentSum(it).Sub(calculator.Hundred).Abs().LessThanOrEqual(completionTolerance)
	default:
		for i := range it.Shares {
			if it.Shares[i].Include {
				return true
			}
		}
		return false
	}
}

// checkSettle: every included share across every item is paid.
func checkSettle(b *models.Bill) string {
	unpaid := 0
	for i := range b.Items {
		for j := range b.Items[i].Shares {
			sh := &b.Items[i].Shares[j]
			if sh.Include && !sh.Paid {
				unpaid++
			}
		}
	}
	if unpaid > 0 {
		return "unpaid shares remain: " + strconv.Itoa(unpaid)
	}
	return ""
}
