package engine

import (
	"github.com/nbbang/dutchpay/internal/calculator"
	"github.com/nbbang/dutchpay/internal/models"
)

// Summarize derives the settlement aggregates for the bill. It fails
// with a StructuralError when the payer is missing or the share matrix
// is out of sync; the grand total is not computed in that state.
//
// When the sum of participant totals deviates from the grand total
// beyond the rounding tolerance, the summary is still returned together
// with an INVARIANT_VIOLATION warning. That warning means an allocation
// bug and callers are expected to report it on a different channel than
// user-facing validation warnings.
func Summarize(b *models.Bill) (*calculator.Summary, []Warning, error) {
	const op = "summarize"
	if b.Payer() == nil {
		return nil, nil, structuralf(op, "bill has no payer; assign one before settling")
	}
	if err := CheckStructure(b); err != nil {
		return nil, nil, err
	}

	s := calculator.Summarize(b)
	dev := s.Deviation()
	if dev.Abs().GreaterThan(calculator.InvariantTolerance(b)) {
		return s, []Warning{{
			Kind: WarnInvariant,
			Message: "participant totals deviate from grand total by " + dev.String() +
				" (tolerance " + calculator.InvariantTolerance(b).String() + ")",
		}}, nil
	}
	return s, nil, nil
}
