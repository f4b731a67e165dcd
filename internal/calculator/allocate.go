package calculator

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nbbang/dutchpay/internal/models"
)

// Hundred is the full percentage pie.
var Hundred = decimal.NewFromInt(100)

// PercentTolerance is how far the included percentages of a PERCENT
// item may deviate from 100 before the sum is considered invalid.
var PercentTolerance = decimal.NewFromFloat(0.01)

// ParsePercent parses a raw percentage entry. The second return is
// false for empty or partially-typed input, which allocates as zero but
// is never rewritten. A trailing dot is a keystroke in progress, not a
// value, even though the decimal parser would accept it.
func ParsePercent(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if s == "" || strings.HasSuffix(s, ".") {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// PercentSum returns the sum of parsed percentages over the item's
// included shares.
func PercentSum(it *models.Item) decimal.Decimal {
	sum := decimal.Zero
	for i := range it.Shares {
		sh := &it.Shares[i]
		if !sh.Include {
			continue
		}
		pct, _ := ParsePercent(sh.RawInput)
		sum = sum.Add(pct)
	}
	return sum
}

// AllocateEqual divides the item's fee evenly across its included,
// unlocked shares, rounding each per-share amount by the given rule.
// Locked shares keep their amounts; excluded shares are zeroed.
//
// The return value is the number of shares that received an amount.
// Zero means the item was left unallocated: the fee had nowhere to go
// and nothing was touched beyond zeroing excluded shares. Any
// difference between the sum of rounded shares and the fee is left
// visible; it is a rounding artifact, not something to absorb.
func AllocateEqual(it *models.Item, rule models.RoundingRule, places int32) int {
	var eligible []*models.Share
	for i := range it.Shares {
		sh := &it.Shares[i]
		if !sh.Include {
			sh.Amount = decimal.Zero
			continue
		}
		if sh.Locked {
			continue
		}
		eligible = append(eligible, sh)
	}
	if len(eligible) == 0 {
		return 0
	}

	per := Round(it.Fee.Div(decimal.NewFromInt(int64(len(eligible)))), rule, places)
	for _, sh := range eligible {
		sh.Amount = per
	}
	return len(eligible)
}

// AllocatePercent computes each included share's amount from its raw
// percentage entry. It does not validate the sum; the caller decides
// whether a deviating sum rejects the recompute or merely warns.
func AllocatePercent(it *models.Item, rule models.RoundingRule, places int32) {
	for i := range it.Shares {
		sh := &it.Shares[i]
		if !sh.Include {
			sh.Amount = decimal.Zero
			continue
		}
		pct, _ := ParsePercent(sh.RawInput)
		sh.Amount = Round(it.Fee.Mul(pct).Div(Hundred), rule, places)
	}
}
